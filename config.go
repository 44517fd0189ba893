package jwtgen

import (
	"errors"
	"strings"
	"time"
)

// Config holds every tunable of an [Issuer].
//
// Config values are copied at Build time; changing them afterwards has no
// effect on a built Issuer.
type Config struct {
	Claims    ClaimsConfig
	Header    HeaderConfig
	RateLimit RateLimitConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
CLAIMS CONFIG
====================================
*/

// ClaimsConfig sets the fallback values for "iss" and "sub".
type ClaimsConfig struct {
	DefaultIssuer  string
	DefaultSubject string
}

/*
====================================
HEADER CONFIG
====================================
*/

// HeaderPolicy decides how caller header overrides are treated.
type HeaderPolicy string

const (
	// HeaderPolicyPermissive passes the caller header to the signer untouched.
	HeaderPolicyPermissive HeaderPolicy = "permissive"
	// HeaderPolicyStrict additionally rejects an "alg" entry that differs from
	// the selected algorithm.
	HeaderPolicyStrict HeaderPolicy = "strict"
)

// HeaderConfig controls header override handling.
type HeaderConfig struct {
	Policy HeaderPolicy
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig throttles issuance per subject. Requires a Redis client.
type RateLimitConfig struct {
	Enabled     bool
	MaxIssues   int
	Window      time.Duration
	RedisPrefix string
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig toggles in-process counters and the latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration matching the behavior of the
// interactive generator: permissive headers, no throttling, no audit.
func DefaultConfig() Config {
	return Config{
		Claims: ClaimsConfig{
			DefaultIssuer:  DefaultIssuer,
			DefaultSubject: DefaultSubject,
		},
		Header: HeaderConfig{
			Policy: HeaderPolicyPermissive,
		},
		RateLimit: RateLimitConfig{
			Enabled:     false,
			MaxIssues:   60,
			Window:      time.Minute,
			RedisPrefix: "jwtgen",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

// Validate checks the configuration for values Build cannot work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Claims.DefaultIssuer) == "" {
		return errors.New("Claims.DefaultIssuer must not be empty")
	}
	if strings.TrimSpace(c.Claims.DefaultSubject) == "" {
		return errors.New("Claims.DefaultSubject must not be empty")
	}

	switch c.Header.Policy {
	case HeaderPolicyPermissive, HeaderPolicyStrict:
	default:
		return errors.New("Header.Policy must be permissive or strict")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.MaxIssues <= 0 {
			return errors.New("RateLimit.MaxIssues must be > 0")
		}
		if c.RateLimit.Window <= 0 {
			return errors.New("RateLimit.Window must be > 0")
		}
		if strings.TrimSpace(c.RateLimit.RedisPrefix) == "" {
			return errors.New("RateLimit.RedisPrefix must not be empty")
		}
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit.BufferSize must be > 0")
	}

	return nil
}
