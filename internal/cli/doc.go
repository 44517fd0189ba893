// Package cli implements the jwtgen command line front end.
//
// Inputs mirror the fields of the interactive generator form: secret, algorithm,
// expiry in minutes, custom header JSON and payload JSON. Every input can come
// from a flag, a JWTGEN_* environment variable, or (for the secret, header and
// payload) a file. Files are read through an afero filesystem so the command
// can be exercised against an in-memory tree.
package cli
