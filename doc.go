// Package jwtgen builds and signs JSON Web Tokens from raw user input.
//
// A caller hands [Issuer.Issue] a [TokenRequest] of plain strings (secret,
// expiry in minutes, payload JSON, header JSON) plus an [Algorithm]. The issuer
// validates the input, derives the registered claims and delegates signing to a
// [Signer]:
//
//   - iat, exp and nbf (iat minus 5s) are always computed and overwrite caller values.
//   - jti is a fresh random UUID on every call.
//   - iss and sub are filled only when the payload lacks them; sub falls back to
//     username, then user_id, then a placeholder.
//
// Failures are classified as [*Error] values whose [ErrorKind] names the
// violated rule; errors.Is matches them against ErrMissingSecret,
// ErrInvalidExpiry, ErrMalformedPayload, ErrMalformedHeader and ErrSigning.
//
// # Architecture boundaries
//
// jwtgen is the public surface: [Issuer], [Builder], [Config] and value types.
// Throttling and audit dispatch live under internal/. Signing backends live in
// package signer. Presentation belongs to callers such as cmd/jwtgen.
//
// # What this package must NOT do
//
//   - Persist tokens, claims or secrets.
//   - Verify or parse tokens.
//   - Log secrets or encoded tokens.
package jwtgen
