package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// HashingReader accumulates a SHA-256 digest and byte count over everything
// read through it, letting an upload be streamed to storage and checksummed
// in a single pass with no intermediate buffering.
type HashingReader struct {
	r io.Reader
	h hash.Hash
	n int64
}

// NewHashingReader wraps r with digest accumulation.
func NewHashingReader(r io.Reader) *HashingReader {
	return &HashingReader{r: r, h: sha256.New()}
}

func (hr *HashingReader) Read(p []byte) (int, error) {
	n, err := hr.r.Read(p)
	if n > 0 {
		hr.h.Write(p[:n])
		hr.n += int64(n)
	}
	return n, err
}

// Sum returns the hex-encoded SHA-256 digest of the bytes read so far.
func (hr *HashingReader) Sum() string {
	return hex.EncodeToString(hr.h.Sum(nil))
}

// Size returns the number of bytes read so far.
func (hr *HashingReader) Size() int64 {
	return hr.n
}
