package jwtgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/jwtgen/signer"
)

// Algorithm is the signing algorithm selected by the caller.
type Algorithm = signer.Algorithm

const (
	HS256 = signer.HS256
	HS384 = signer.HS384
	HS512 = signer.HS512
	RS256 = signer.RS256
	ES256 = signer.ES256
)

// ParseAlgorithm resolves a case-insensitive algorithm name.
func ParseAlgorithm(name string) (Algorithm, error) {
	return signer.ParseAlgorithm(name)
}

// Algorithms lists the supported algorithms in display order.
func Algorithms() []Algorithm {
	return signer.Algorithms()
}

// TokenRequest is the raw, unvalidated input of one issuance.
//
// Every field is kept as the caller typed it; Issue does all parsing.
// Payload and Header must each hold exactly one JSON object. Anything else,
// including the literal null, is rejected; pass {} for an empty header.
type TokenRequest struct {
	Secret        string
	Algorithm     Algorithm
	ExpiryMinutes string
	Payload       string
	Header        string
}

type validatedRequest struct {
	secret    []byte
	algorithm Algorithm
	expiry    int
	payload   map[string]any
	header    map[string]any
}

// MaxExpiryMinutes is the longest accepted lifetime: the largest number of
// minutes a time.Duration can hold (about 292 years).
const MaxExpiryMinutes = int(math.MaxInt64 / int64(time.Minute))

func parseExpiry(raw string) (int, error) {
	minutes, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if minutes <= 0 {
		return 0, errors.New("expiry must be a positive integer")
	}
	if minutes > MaxExpiryMinutes {
		return 0, fmt.Errorf("expiry must not exceed %d minutes", MaxExpiryMinutes)
	}
	return minutes, nil
}

// decodeObject decodes exactly one JSON object. Numbers stay json.Number so
// integer claims survive the round trip.
func decodeObject(text string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errors.New("expected a JSON object, got null")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON object")
	}
	return out, nil
}

func (r TokenRequest) validate(policy HeaderPolicy) (*validatedRequest, error) {
	if r.Secret == "" {
		return nil, newError(KindMissingSecret, nil)
	}

	expiry, err := parseExpiry(r.ExpiryMinutes)
	if err != nil {
		return nil, newError(KindInvalidExpiry, err)
	}

	payload, err := decodeObject(r.Payload)
	if err != nil {
		return nil, newError(KindMalformedPayload, err)
	}

	header, err := decodeObject(r.Header)
	if err != nil {
		return nil, newError(KindMalformedHeader, err)
	}
	if policy == HeaderPolicyStrict {
		if err := checkHeaderAlgorithm(header, r.Algorithm); err != nil {
			return nil, newError(KindMalformedHeader, err)
		}
	}

	return &validatedRequest{
		secret:    []byte(r.Secret),
		algorithm: r.Algorithm,
		expiry:    expiry,
		payload:   payload,
		header:    header,
	}, nil
}

func checkHeaderAlgorithm(header map[string]any, alg Algorithm) error {
	raw, ok := header["alg"]
	if !ok {
		return nil
	}
	s, isString := raw.(string)
	if !isString || s != string(alg) {
		return fmt.Errorf("header alg %v does not match selected algorithm %s", raw, alg)
	}
	return nil
}
