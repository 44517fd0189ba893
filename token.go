package jwtgen

import (
	"fmt"
	"time"
)

// ExpiryLayout formats expiry instants in status messages.
const ExpiryLayout = "2006-01-02 15:04:05"

// Token is a successfully signed JWT together with the values that went into it.
type Token struct {
	Value     string
	Algorithm Algorithm
	ID        string
	Header    map[string]any
	Claims    ClaimSet
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// String returns the encoded token.
func (t *Token) String() string {
	if t == nil {
		return ""
	}
	return t.Value
}

// StatusMessage renders the one-line success summary shown next to the token.
func (t *Token) StatusMessage() string {
	return fmt.Sprintf("JWT generated successfully (%s). Expires: %s UTC",
		t.Algorithm, t.ExpiresAt.UTC().Format(ExpiryLayout))
}
