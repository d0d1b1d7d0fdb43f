package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"sort"
	"strings"
)

// HashAlgorithm represents the hashing algorithm to use
type HashAlgorithm string

const (
	SHA256 HashAlgorithm = "sha256"
)

// Hasher provides content hashing for stored blobs and snapshots
type Hasher struct {
	algorithm HashAlgorithm
}

// NewHasher creates a new hasher with the specified algorithm
func NewHasher(algorithm HashAlgorithm) *Hasher {
	return &Hasher{algorithm: algorithm}
}

// DefaultHasher returns a hasher with the default algorithm
func DefaultHasher() *Hasher {
	return NewHasher(SHA256)
}

func (h *Hasher) new() hash.Hash {
	switch h.algorithm {
	case SHA256:
		return sha256.New()
	default:
		return sha256.New()
	}
}

// Hash computes a hash of the input data
func (h *Hasher) Hash(data []byte) string {
	d := h.new()
	d.Write(data)
	return hex.EncodeToString(d.Sum(nil))
}

// HashString computes a hash of a string
func (h *Hasher) HashString(s string) string {
	return h.Hash([]byte(s))
}

// HashFields computes an order-independent hash from multiple fields
func (h *Hasher) HashFields(fields ...string) string {
	sorted := make([]string, len(fields))
	copy(sorted, fields)
	sort.Strings(sorted)

	return h.HashString(strings.Join(sorted, "|"))
}

// TeeReader wraps r so that everything read from it is hashed.
// Call the returned sum function after r is drained.
func (h *Hasher) TeeReader(r io.Reader) (io.Reader, func() string) {
	d := h.new()
	return io.TeeReader(r, d), func() string {
		return hex.EncodeToString(d.Sum(nil))
	}
}
