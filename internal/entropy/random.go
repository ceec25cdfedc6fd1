// Package entropy supplies seeds for a run. A run is fully reproducible from
// its seed; only seed 0 reaches for crypto/rand.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"log/slog"
	mrand "math/rand"
)

// Stream offsets keep each consumer on its own deterministic sequence.
const (
	OffsetGenerator = 100
	OffsetSpawner   = 300
	OffsetAutopilot = 500
)

// cryptoUint64 reads 8 bytes from crypto/rand.
func cryptoUint64() (uint64, bool) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		slog.Debug("crypto/rand read failed", "error", err)
		return 0, false
	}
	return binary.LittleEndian.Uint64(buf[:]), true
}

// CryptoFloat returns a random float64 in [0, 1) from crypto/rand.
func CryptoFloat() float64 {
	n, ok := cryptoUint64()
	if !ok {
		// This should never happen but return 0.5 as a safe default.
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	return float64(n>>11) / float64(1<<53)
}

// CryptoSeed returns a positive non-zero seed from crypto/rand, falling back
// to math/rand if crypto/rand is unavailable.
func CryptoSeed() int64 {
	n, ok := cryptoUint64()
	seed := int64(n >> 1)
	if !ok {
		seed = mrand.Int63()
	}
	if seed == 0 {
		seed = 1
	}
	return seed
}

// ResolveSeed returns seed unchanged unless it is 0, in which case a fresh
// random seed is drawn.
func ResolveSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return CryptoSeed()
}

// New returns a math/rand source for the stream at offset from seed.
func New(seed, offset int64) *mrand.Rand {
	return mrand.New(mrand.NewSource(seed + offset))
}
