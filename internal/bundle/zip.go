package bundle

import (
	"archive/zip"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/flate"
)

// deterministicEpoch is the fixed member timestamp for deterministic
// exports. ZIP cannot represent times before 1980.
var deterministicEpoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// WriteZip streams the archive as a ZIP. Members are written in the
// archive's order (manifest path order, MANIFEST.json last); in
// deterministic mode every member carries the fixed epoch timestamp so
// repeated exports of unchanged state are byte-identical.
func WriteZip(w io.Writer, a *Archive, opts Options) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	modified := a.Manifest.GeneratedAt
	for _, f := range a.Files {
		header := &zip.FileHeader{
			Name:   f.Path,
			Method: zip.Deflate,
		}
		if opts.Deterministic || modified == nil {
			header.Modified = deterministicEpoch
		} else {
			header.Modified = modified.UTC()
		}

		member, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("create zip member %s: %w", f.Path, err)
		}
		if _, err := member.Write(f.Data); err != nil {
			return fmt.Errorf("write zip member %s: %w", f.Path, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return nil
}
