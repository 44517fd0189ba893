package jwtgen

import (
	"time"
)

const (
	// DefaultIssuer is written to "iss" when the payload does not carry one.
	DefaultIssuer = "ManusJWTGenerator"
	// DefaultSubject is written to "sub" when the payload has none of
	// "sub", "username" or "user_id".
	DefaultSubject = "generic_subject"
	// NotBeforeSkew is how far "nbf" is backdated from "iat".
	NotBeforeSkew = 5 * time.Second
)

// Registered claim names managed by the issuer.
const (
	ClaimIssuedAt  = "iat"
	ClaimExpiresAt = "exp"
	ClaimNotBefore = "nbf"
	ClaimID        = "jti"
	ClaimIssuer    = "iss"
	ClaimSubject   = "sub"

	claimUsername = "username"
	claimUserID   = "user_id"
)

// ClaimSet is the final JWT payload handed to the signer.
type ClaimSet map[string]any

// Subject returns the "sub" claim, or nil when absent.
func (c ClaimSet) Subject() any {
	return c[ClaimSubject]
}

type claimTimes struct {
	issuedAt  time.Time
	expiresAt time.Time
	notBefore time.Time
}

// computeTimes works in whole Unix seconds so exp-iat is exactly
// expiryMinutes*60. Callers bound expiryMinutes by MaxExpiryMinutes.
func computeTimes(now time.Time, expiryMinutes int) claimTimes {
	iat := now.Unix()
	return claimTimes{
		issuedAt:  time.Unix(iat, 0).UTC(),
		expiresAt: time.Unix(iat+int64(expiryMinutes)*60, 0).UTC(),
		notBefore: time.Unix(iat-int64(NotBeforeSkew/time.Second), 0).UTC(),
	}
}

// deriveClaims copies payload and overlays the computed claims. Time claims and
// jti always win; iss and sub only fill gaps.
func deriveClaims(payload map[string]any, times claimTimes, jti string, defaults ClaimsConfig) ClaimSet {
	claims := make(ClaimSet, len(payload)+6)
	for k, v := range payload {
		claims[k] = v
	}

	claims[ClaimIssuedAt] = times.issuedAt.Unix()
	claims[ClaimExpiresAt] = times.expiresAt.Unix()
	claims[ClaimNotBefore] = times.notBefore.Unix()
	claims[ClaimID] = jti

	if _, ok := payload[ClaimIssuer]; !ok {
		claims[ClaimIssuer] = defaults.DefaultIssuer
	}
	if _, ok := payload[ClaimSubject]; !ok {
		claims[ClaimSubject] = defaultSubject(payload, defaults.DefaultSubject)
	}

	return claims
}

func defaultSubject(payload map[string]any, placeholder string) any {
	if v, ok := payload[claimUsername]; ok {
		return v
	}
	if v, ok := payload[claimUserID]; ok {
		return v
	}
	return placeholder
}
