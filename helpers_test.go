package jwtgen

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{"user_id": 123, "username": "testuser", "roles": ["admin", "user"]}`

// fixedNow carries sub-second precision so truncation is exercised.
var fixedNow = time.Date(2026, time.October, 15, 12, 30, 45, 987654321, time.UTC)

func validRequest() TokenRequest {
	return TokenRequest{
		Secret:        "k",
		Algorithm:     HS256,
		ExpiryMinutes: "60",
		Payload:       samplePayload,
		Header:        `{"typ": "JWT"}`,
	}
}

func newTestIssuer(t *testing.T, b *Builder) *Issuer {
	t.Helper()
	if b == nil {
		b = New()
	}
	issuer, err := b.Build()
	require.NoError(t, err)
	t.Cleanup(issuer.Close)
	return issuer
}

// decodeHS parses an HMAC token without time validation and returns its
// claims with numbers as json.Number.
func decodeHS(t *testing.T, token string, secret []byte) (jwt.MapClaims, map[string]any) {
	t.Helper()
	parser := jwt.NewParser(jwt.WithoutClaimsValidation(), jwt.WithJSONNumber())
	claims := jwt.MapClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	return claims, parsed.Header
}

func numericClaim(t *testing.T, claims map[string]any, name string) int64 {
	t.Helper()
	switch v := claims[name].(type) {
	case json.Number:
		n, err := v.Int64()
		require.NoError(t, err)
		return n
	case int64:
		return v
	default:
		t.Fatalf("claim %s has unexpected type %T", name, claims[name])
		return 0
	}
}

type signCall struct {
	header map[string]any
	claims map[string]any
	key    []byte
	alg    Algorithm
}

type stubSigner struct {
	mu    sync.Mutex
	calls []signCall
	token string
	err   error
}

func (s *stubSigner) Sign(header map[string]any, claims map[string]any, key []byte, alg Algorithm) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, signCall{header: header, claims: claims, key: key, alg: alg})
	if s.err != nil {
		return "", s.err
	}
	if s.token == "" {
		return "stub.token.value", nil
	}
	return s.token, nil
}

func (s *stubSigner) lastCall(t *testing.T) signCall {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.calls, "signer was not called")
	return s.calls[len(s.calls)-1]
}

func (s *stubSigner) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func rsaPEM(t *testing.T) []byte {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
}

func ecPEM(t *testing.T, curve elliptic.Curve) []byte {
	t.Helper()
	key, err := ecdsa.GenerateKey(curve, rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})
}
