package bundle

import (
	"archive/zip"
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/tmoresby/veracity/pkg/canonical"
)

// Verify checks a bundle ZIP against its own manifest: every listed
// file's SHA-256 is recomputed from the zip bytes, and the manifest hash
// is recomputed from the listed entries. Strict mode additionally fails
// on manifest-listed files missing from the zip and on unlisted extras.
// Hash disagreement is reported in the result, never as an error; only an
// unreadable zip or manifest errors.
func Verify(ctx context.Context, data []byte, strict bool) (*VerifyResult, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}

	members := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		members[f.Name] = f
	}

	manifestFile, ok := members[ManifestName]
	if !ok {
		return nil, fmt.Errorf("%w: no %s", ErrInvalidBundle, ManifestName)
	}

	manifestRaw, err := readMember(manifestFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}

	var manifest Manifest
	if err := json.Unmarshal(manifestRaw, &manifest); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}

	results := make([]VerifyFileResult, len(manifest.Files))

	// Hashing fans out: verification is pure, so every file can be
	// checked concurrently.
	g, ctx := errgroup.WithContext(ctx)
	for i, entry := range manifest.Files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			member, present := members[entry.Path]
			if !present {
				results[i] = VerifyFileResult{
					Path:     entry.Path,
					OK:       false,
					Expected: entry.SHA256Hex,
				}
				return nil
			}

			content, err := readMember(member)
			if err != nil {
				return fmt.Errorf("read %s: %w", entry.Path, err)
			}

			actual := canonical.DigestBytes(content)
			results[i] = VerifyFileResult{
				Path:     entry.Path,
				OK:       actual == entry.SHA256Hex,
				Expected: entry.SHA256Hex,
				Actual:   actual,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	recomputedManifestHash, err := ManifestHash(manifest.Files)
	if err != nil {
		return nil, err
	}
	manifestOK := recomputedManifestHash == manifest.ManifestHashHex

	listed := make(map[string]bool, len(manifest.Files))
	for _, entry := range manifest.Files {
		listed[entry.Path] = true
	}

	bundleOK := manifestOK
	for _, r := range results {
		if r.Actual == "" && !strict {
			// Missing listed file: only a failure in strict mode.
			continue
		}
		if !r.OK {
			bundleOK = false
		}
	}

	if strict {
		for name := range members {
			if name == ManifestName || listed[name] {
				continue
			}
			member := members[name]
			content, err := readMember(member)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", name, err)
			}
			results = append(results, VerifyFileResult{
				Path:   name,
				OK:     false,
				Actual: canonical.DigestBytes(content),
			})
			bundleOK = false
		}
	}

	slices.SortFunc(results, func(a, b VerifyFileResult) int { return cmp.Compare(a.Path, b.Path) })

	return &VerifyResult{
		BundleOK:    bundleOK,
		ManifestOK:  manifestOK,
		FileResults: results,
	}, nil
}

func readMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
