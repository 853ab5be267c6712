package seeded

import (
	crand "crypto/rand"
	"fmt"
)

const seedAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomSeed generates a fresh session seed using crypto/rand. Only seed
// generation is non-deterministic; everything derived from the seed is not.
func RandomSeed(n int) (string, error) {
	b := make([]byte, n)
	if _, err := crand.Read(b); err != nil {
		return "", fmt.Errorf("read random seed: %w", err)
	}
	for i := range b {
		b[i] = seedAlphabet[int(b[i])%len(seedAlphabet)]
	}
	return string(b), nil
}
