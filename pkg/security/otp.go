package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateOTP produces a zero-padded numeric one-time code of the given length.
func GenerateOTP(length int) (string, error) {
	if length <= 0 || length > 10 {
		return "", fmt.Errorf("otp length must be between 1 and 10")
	}

	max := big.NewInt(1)
	for i := 0; i < length; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
