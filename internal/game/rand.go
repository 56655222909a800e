package game

import (
	"crypto/rand"
	"math/big"
)

// Source yields uniformly distributed integers in [0, n).
type Source interface {
	Intn(n int) int
}

// CryptoSource draws from crypto/rand.
type CryptoSource struct{}

// Intn returns a uniform value in [0, n). It panics if n <= 0.
func (CryptoSource) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("game: crypto/rand failed: " + err.Error())
	}
	return int(v.Int64())
}

// FixedSource always returns the same value (clamped into range).
// Useful for deterministic tests and local debugging.
type FixedSource int

// Intn returns the fixed value modulo n.
func (f FixedSource) Intn(n int) int {
	v := int(f) % n
	if v < 0 {
		v += n
	}
	return v
}
