package common

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// RandomDigits draws a number uniformly from [0, 10^digits) using r and
// renders it zero-padded to exactly digits characters. Pass crypto/rand.Reader
// (or nil, which means the same) in production.
func RandomDigits(r io.Reader, digits int) (string, error) {
	if digits <= 0 {
		return "", fmt.Errorf("digits must be positive, got %d", digits)
	}
	if r == nil {
		r = rand.Reader
	}

	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(r, max)
	if err != nil {
		return "", fmt.Errorf("error reading random source: %w", err)
	}

	return fmt.Sprintf("%0*d", digits, n), nil
}
