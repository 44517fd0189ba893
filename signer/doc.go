// Package signer turns a header, a claim set and key material into a compact
// JWS string.
//
// Two backends implement the same Sign method: [JWT] on golang-jwt and [JWX] on
// lestrrat-go/jwx. Both accept the raw secret for HS256/HS384/HS512 and a PEM
// private key for RS256/ES256.
//
// # What this package must NOT do
//
//   - Derive or rewrite claims. Callers own the claim set.
//   - Keep keys after Sign returns.
package signer
