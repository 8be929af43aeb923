package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// NewToken returns n random bytes encoded as URL-safe base64.
func NewToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
