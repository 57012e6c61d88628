package common

import (
	"crypto/rand"
	"fmt"
)

// RandomBytes returns n bytes read from the system CSPRNG.
//
// It returns an error if the random number generator fails; callers must not
// fall back to a weaker source.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return b, nil
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// It is used to clear PINs read from the terminal once they were hashed.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
