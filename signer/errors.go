package signer

import "errors"

var (
	// ErrUnsupportedAlgorithm is returned for algorithms outside the supported set.
	ErrUnsupportedAlgorithm = errors.New("algorithm not supported")
	// ErrInvalidKey is returned when key material does not fit the algorithm.
	ErrInvalidKey = errors.New("invalid key for algorithm")
	// ErrUnknownBackend is returned by [New] for an unregistered backend name.
	ErrUnknownBackend = errors.New("unknown signer backend")
)
