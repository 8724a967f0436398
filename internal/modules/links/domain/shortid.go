package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// DefaultShortIDDigits keeps ids the same width as links already in circulation.
const DefaultShortIDDigits = 8

// ShortIDGenerator produces fixed-width numeric ids, uniform over [10^(n-1), 10^n).
type ShortIDGenerator struct {
	digits int
	low    *big.Int
	span   *big.Int
}

// NewShortIDGenerator creates a generator for ids of the given width.
// Widths outside 4..18 fall back to DefaultShortIDDigits.
func NewShortIDGenerator(digits int) *ShortIDGenerator {
	if digits < 4 || digits > 18 {
		digits = DefaultShortIDDigits
	}
	low := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits-1)), nil)
	high := new(big.Int).Mul(low, big.NewInt(10))
	return &ShortIDGenerator{
		digits: digits,
		low:    low,
		span:   new(big.Int).Sub(high, low),
	}
}

// Digits returns the id width.
func (g *ShortIDGenerator) Digits() int {
	return g.digits
}

// New draws a fresh id. It does not check for collisions.
func (g *ShortIDGenerator) New() (string, error) {
	n, err := rand.Int(rand.Reader, g.span)
	if err != nil {
		return "", fmt.Errorf("failed to draw short id: %w", err)
	}
	return n.Add(n, g.low).String(), nil
}
