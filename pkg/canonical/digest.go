package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// DigestBytes returns the lowercase hex SHA-256 of raw.
func DigestBytes(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// DigestString returns the lowercase hex SHA-256 of the UTF-8 bytes of s.
func DigestString(s string) string {
	return DigestBytes([]byte(s))
}

// DigestReader consumes r and returns its lowercase hex SHA-256 and the
// number of bytes read.
func DigestReader(r io.Reader) (string, int64, error) {
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
