package signer

import (
	"fmt"
	"strings"
)

const (
	// BackendJWT selects [JWT].
	BackendJWT = "jwt"
	// BackendJWX selects [JWX].
	BackendJWX = "jwx"
)

// Signer is implemented by every backend in this package.
type Signer interface {
	Sign(header map[string]any, claims map[string]any, key []byte, alg Algorithm) (string, error)
}

var (
	_ Signer = (*JWT)(nil)
	_ Signer = (*JWX)(nil)
)

// New returns the backend registered under name. An empty name selects
// golang-jwt.
func New(name string) (Signer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendJWT:
		return NewJWT(), nil
	case BackendJWX:
		return NewJWX(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}
