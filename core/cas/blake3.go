// Package cas computes content fingerprints for source documents. A
// fingerprint identifies a document by its bytes, so derived results cached
// under it can never be confused with results from another document.
package cas

import (
	"encoding/hex"
	"hash"
	"io"
	"regexp"

	"github.com/zeebo/blake3"
)

// blake3Pattern matches a lowercase BLAKE3-256 hex digest.
var blake3Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Blake3Hash computes the BLAKE3 hash of the given data.
func Blake3Hash(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// IsValidHash reports whether s looks like a digest produced by this package.
func IsValidHash(s string) bool {
	return blake3Pattern.MatchString(s)
}

// Fingerprinter hashes everything read through it.
type Fingerprinter struct {
	r io.Reader
	h hash.Hash
}

// NewFingerprinter wraps r so that the document can be parsed and hashed in
// one pass.
func NewFingerprinter(r io.Reader) *Fingerprinter {
	h := blake3.New()
	return &Fingerprinter{r: io.TeeReader(r, h), h: h}
}

// Read implements io.Reader.
func (f *Fingerprinter) Read(p []byte) (int, error) {
	return f.r.Read(p)
}

// Sum returns the hex digest of the bytes read so far.
func (f *Fingerprinter) Sum() string {
	return hex.EncodeToString(f.h.Sum(nil))
}
