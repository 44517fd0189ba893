package signer

import (
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// JWX signs tokens with github.com/lestrrat-go/jwx/v2.
//
// jwx type-checks registered claims (a non-string "sub" is rejected) and always
// stamps "alg" from the signing key, regardless of the caller header.
type JWX struct{}

// NewJWX returns the jwx backed signer.
func NewJWX() *JWX {
	return &JWX{}
}

// Sign encodes claims under header and signs them with key using alg.
func (s *JWX) Sign(header map[string]any, claims map[string]any, key []byte, alg Algorithm) (string, error) {
	sigAlg, err := jwxAlgorithm(alg)
	if err != nil {
		return "", err
	}
	signKey, err := jwxSignKey(alg, key)
	if err != nil {
		return "", err
	}

	tok := jwt.New()
	for k, v := range claims {
		if err := tok.Set(k, v); err != nil {
			return "", fmt.Errorf("claim %q: %w", k, err)
		}
	}

	hdrs := jws.NewHeaders()
	for k, v := range header {
		if err := hdrs.Set(k, v); err != nil {
			return "", fmt.Errorf("header %q: %w", k, err)
		}
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(sigAlg, signKey, jws.WithProtectedHeaders(hdrs)))
	if err != nil {
		return "", err
	}
	return string(signed), nil
}

func jwxAlgorithm(alg Algorithm) (jwa.SignatureAlgorithm, error) {
	switch alg {
	case HS256:
		return jwa.HS256, nil
	case HS384:
		return jwa.HS384, nil
	case HS512:
		return jwa.HS512, nil
	case RS256:
		return jwa.RS256, nil
	case ES256:
		return jwa.ES256, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, string(alg))
	}
}

func jwxSignKey(alg Algorithm, key []byte) (interface{}, error) {
	if alg.Symmetric() {
		if len(key) == 0 {
			return nil, fmt.Errorf("%w: empty hmac secret", ErrInvalidKey)
		}
		return key, nil
	}

	parsed, err := jwk.ParseKey(key, jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s expects a PEM encoded private key: %v", ErrInvalidKey, alg, err)
	}
	if !jwxKeyMatches(alg, parsed) {
		return nil, fmt.Errorf("%w: %s cannot sign with a %s key", ErrInvalidKey, alg, parsed.KeyType())
	}
	return parsed, nil
}

func jwxKeyMatches(alg Algorithm, key jwk.Key) bool {
	switch alg {
	case RS256:
		_, ok := key.(jwk.RSAPrivateKey)
		return ok
	case ES256:
		ec, ok := key.(jwk.ECDSAPrivateKey)
		return ok && ec.Crv() == jwa.P256
	default:
		return false
	}
}
