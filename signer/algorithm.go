package signer

import (
	"fmt"
	"strings"
)

// Algorithm names a JWS signing algorithm from the fixed supported set.
type Algorithm string

const (
	HS256 Algorithm = "HS256"
	HS384 Algorithm = "HS384"
	HS512 Algorithm = "HS512"
	RS256 Algorithm = "RS256"
	ES256 Algorithm = "ES256"
)

var supported = []Algorithm{HS256, HS384, HS512, RS256, ES256}

// Algorithms returns the supported algorithms in display order.
func Algorithms() []Algorithm {
	out := make([]Algorithm, len(supported))
	copy(out, supported)
	return out
}

// Valid reports whether a is in the supported set.
func (a Algorithm) Valid() bool {
	for _, s := range supported {
		if a == s {
			return true
		}
	}
	return false
}

// Symmetric reports whether a uses the raw secret as an HMAC key.
func (a Algorithm) Symmetric() bool {
	return strings.HasPrefix(string(a), "HS")
}

func (a Algorithm) String() string {
	return string(a)
}

// ParseAlgorithm resolves a case-insensitive algorithm name.
func ParseAlgorithm(name string) (Algorithm, error) {
	a := Algorithm(strings.ToUpper(strings.TrimSpace(name)))
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
	}
	return a, nil
}
