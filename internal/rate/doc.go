// Package rate implements Redis-backed fixed-window issuance throttling.
//
// Keys are derived from the token subject; each key is an INCR counter whose
// TTL is set on the first hit of a window.
//
// # What this package must NOT do
//
//   - Store tokens, claims or secrets. Only counters live in Redis.
//   - Import jwtgen or any sibling internal package.
package rate
