package base

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
)

// HashingReader wraps r so every byte read is also fed to a sha256 sum.
type HashingReader struct {
	r io.Reader
	h interface {
		io.Writer
		Sum(b []byte) []byte
	}
}

func NewHashingReader(r io.Reader) *HashingReader {
	return &HashingReader{r: r, h: sha256.New()}
}

func (hr *HashingReader) Read(p []byte) (int, error) {
	n, err := hr.r.Read(p)
	if n > 0 {
		_, _ = hr.h.Write(p[:n])
	}
	return n, err
}

// Sum returns the lowercase hex digest of everything read so far.
func (hr *HashingReader) Sum() string {
	return hex.EncodeToString(hr.h.Sum(nil))
}

// SameChecksum compares two hex digests ignoring case.
func SameChecksum(a, b string) bool {
	return strings.EqualFold(a, b)
}
