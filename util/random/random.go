package random

import (
	crypto_rand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

// NewSeed returns a seed for math/rand read from crypto/rand.
func NewSeed() int64 {
	var b [8]byte
	if _, err := crypto_rand.Read(b[:]); err != nil {
		panic("cannot seed math/rand package with cryptographically secure random number generator")
	}
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1)
}

// NewSource returns a math/rand source seeded by NewSeed. Sources are not
// safe for concurrent use; each shuffler or seat picker owns its own.
func NewSource() rand.Source {
	return rand.NewSource(NewSeed())
}
