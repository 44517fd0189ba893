package signer

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// JWT signs tokens with github.com/golang-jwt/jwt/v5.
//
// The library writes "alg" and "typ" first; caller header entries are layered
// on top unchanged, so a caller-supplied "alg" wins in the encoded header.
type JWT struct{}

// NewJWT returns the golang-jwt backed signer.
func NewJWT() *JWT {
	return &JWT{}
}

// Sign encodes claims under header and signs them with key using alg.
func (s *JWT) Sign(header map[string]any, claims map[string]any, key []byte, alg Algorithm) (string, error) {
	method, err := jwtMethod(alg)
	if err != nil {
		return "", err
	}
	signKey, err := jwtSignKey(alg, key)
	if err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(method, jwt.MapClaims(claims))
	for k, v := range header {
		token.Header[k] = v
	}

	return token.SignedString(signKey)
}

func jwtMethod(alg Algorithm) (jwt.SigningMethod, error) {
	switch alg {
	case HS256:
		return jwt.SigningMethodHS256, nil
	case HS384:
		return jwt.SigningMethodHS384, nil
	case HS512:
		return jwt.SigningMethodHS512, nil
	case RS256:
		return jwt.SigningMethodRS256, nil
	case ES256:
		return jwt.SigningMethodES256, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, string(alg))
	}
}

func jwtSignKey(alg Algorithm, key []byte) (interface{}, error) {
	switch alg {
	case HS256, HS384, HS512:
		if len(key) == 0 {
			return nil, fmt.Errorf("%w: empty hmac secret", ErrInvalidKey)
		}
		return key, nil
	case RS256:
		return parseRSAPrivateKey(key)
	case ES256:
		return parseECPrivateKey(key)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, string(alg))
	}
}

func parseRSAPrivateKey(key []byte) (*rsa.PrivateKey, error) {
	parsed, err := jwt.ParseRSAPrivateKeyFromPEM(key)
	if err != nil {
		return nil, fmt.Errorf("%w: rs256 expects a PEM encoded RSA private key: %v", ErrInvalidKey, err)
	}
	return parsed, nil
}

func parseECPrivateKey(key []byte) (*ecdsa.PrivateKey, error) {
	parsed, err := jwt.ParseECPrivateKeyFromPEM(key)
	if err != nil {
		return nil, fmt.Errorf("%w: es256 expects a PEM encoded EC private key: %v", ErrInvalidKey, err)
	}
	if parsed.Curve.Params().BitSize != 256 {
		return nil, fmt.Errorf("%w: es256 requires a P-256 key", ErrInvalidKey)
	}
	return parsed, nil
}
