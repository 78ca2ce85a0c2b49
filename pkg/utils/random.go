package utils

import (
	"crypto/rand"
	"math/big"
)

const base36Upper = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// PlaceholderPrefix marks handles handed out before the owner claims one.
const PlaceholderPrefix = "TEMP"

// GenerateRandomID generates a random string of length n drawn from charset.
func GenerateRandomID(n int, charset string) string {
	b := make([]byte, n)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return ""
		}
		b[i] = charset[num.Int64()]
	}
	return string(b)
}

// GeneratePlaceholderHandle returns TEMP followed by three uppercase base-36
// characters. It does not satisfy the AAA999 handle format.
func GeneratePlaceholderHandle() string {
	return PlaceholderPrefix + GenerateRandomID(3, base36Upper)
}
