package jwtgen

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an issuance attempt failed.
type ErrorKind string

const (
	KindMissingSecret        ErrorKind = "missing_secret"
	KindInvalidExpiry        ErrorKind = "invalid_expiry"
	KindMalformedPayload     ErrorKind = "malformed_payload"
	KindMalformedHeader      ErrorKind = "malformed_header"
	KindSigning              ErrorKind = "signing_failed"
	KindRateLimited          ErrorKind = "rate_limited"
	KindRateLimitUnavailable ErrorKind = "rate_limit_unavailable"
)

var (
	// ErrMissingSecret is returned when the request carries an empty secret.
	ErrMissingSecret = errors.New("missing secret")
	// ErrInvalidExpiry is returned when the expiry is not a positive integer number of minutes.
	ErrInvalidExpiry = errors.New("invalid expiry")
	// ErrMalformedPayload is returned when the payload text is not a JSON object.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrMalformedHeader is returned when the header text is not a JSON object,
	// or when the hardened header policy rejects it.
	ErrMalformedHeader = errors.New("malformed header")
	// ErrSigning is returned when the signer rejects the key, algorithm or claims.
	ErrSigning = errors.New("signing failed")
	// ErrRateLimited is returned when the subject exhausted its issuance budget.
	ErrRateLimited = errors.New("issuance rate limited")
	// ErrRateLimitUnavailable is returned when the throttle backend cannot be reached.
	ErrRateLimitUnavailable = errors.New("issuance rate limit backend unavailable")
)

var kindSentinels = map[ErrorKind]error{
	KindMissingSecret:        ErrMissingSecret,
	KindInvalidExpiry:        ErrInvalidExpiry,
	KindMalformedPayload:     ErrMalformedPayload,
	KindMalformedHeader:      ErrMalformedHeader,
	KindSigning:              ErrSigning,
	KindRateLimited:          ErrRateLimited,
	KindRateLimitUnavailable: ErrRateLimitUnavailable,
}

var kindMessages = map[ErrorKind]string{
	KindMissingSecret:        "Secret Key is required.",
	KindInvalidExpiry:        "Invalid Expiry Minutes.",
	KindMalformedPayload:     "Invalid Payload JSON format.",
	KindMalformedHeader:      "Invalid Custom Header JSON format.",
	KindSigning:              "JWT Encoding Error:",
	KindRateLimited:          "Issuance rate limit exceeded.",
	KindRateLimitUnavailable: "Issuance rate limit backend unavailable.",
}

// Error is the classified failure returned by [Issuer.Issue].
//
// Message is meant for display. Err keeps the underlying cause, if any.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	base := e.Message
	if base == "" {
		base = string(e.Kind)
	}
	if e.Err == nil {
		return base
	}
	return fmt.Sprintf("%s %v", base, e.Err)
}

// Unwrap exposes both the kind sentinel and the cause so that errors.Is
// matches either.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if s, ok := kindSentinels[e.Kind]; ok {
		out = append(out, s)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func newError(kind ErrorKind, cause error) *Error {
	msg, ok := kindMessages[kind]
	if !ok {
		msg = string(kind)
	}
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// KindOf returns the classification of err, or "" when err was not produced
// by the issuer.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
