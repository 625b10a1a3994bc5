package internal

import (
	"crypto/rand"
	"errors"
	"fmt"
)

// Alphabets for the two code instantiations the engine mints. OTPs are
// lowercase so comparisons stay case-insensitive after normalization;
// API keys use the full unambiguous alphanumeric+underscore set the
// downstream analyzer accepts.
const (
	OTPAlphabet    = "abcdefghijklmnopqrstuvwxyz0123456789"
	APIKeyAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_"
)

// Code returns a random string of the given length where every character
// is drawn from alphabet via the cryptographically secure source. Each
// output character is alphabet[b mod len(alphabet)] for a fresh random
// byte b. The only error path is exhaustion of the random source, which
// callers treat as fatal.
func Code(length int, alphabet string) (string, error) {
	if length <= 0 {
		return "", errors.New("code length must be positive")
	}
	if len(alphabet) == 0 || len(alphabet) > 256 {
		return "", errors.New("alphabet must contain between 1 and 256 symbols")
	}

	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("random source exhausted: %v", err)
	}

	out := make([]byte, length)
	for i, b := range raw {
		out[i] = alphabet[int(b)%len(alphabet)]
	}

	return string(out), nil
}
