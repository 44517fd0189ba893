// Package audit implements async event dispatching for token issuance.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, zap, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full / block-if-full semantics.
//   - [Event]: one issuance attempt: subject, token id, algorithm, outcome.
//
// # What this package must NOT do
//
//   - Decide which events to emit. The Issuer does that.
//   - Carry secrets or encoded tokens. Events hold identifiers only.
//   - Import jwtgen or any sibling internal package.
package audit
