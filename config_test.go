package jwtgen

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Claims.DefaultIssuer != DefaultIssuer {
		t.Fatalf("DefaultIssuer = %q, want %q", cfg.Claims.DefaultIssuer, DefaultIssuer)
	}
	if cfg.Claims.DefaultSubject != DefaultSubject {
		t.Fatalf("DefaultSubject = %q, want %q", cfg.Claims.DefaultSubject, DefaultSubject)
	}
	if cfg.Header.Policy != HeaderPolicyPermissive {
		t.Fatalf("header policy = %q, want permissive", cfg.Header.Policy)
	}
	if cfg.RateLimit.Enabled || cfg.Audit.Enabled {
		t.Fatal("rate limit and audit must be off by default")
	}
}

func TestConfigValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty issuer", mutate: func(c *Config) { c.Claims.DefaultIssuer = "  " }},
		{name: "empty subject", mutate: func(c *Config) { c.Claims.DefaultSubject = "" }},
		{name: "unknown header policy", mutate: func(c *Config) { c.Header.Policy = "lenient" }},
		{name: "rate limit without budget", mutate: func(c *Config) {
			c.RateLimit.Enabled = true
			c.RateLimit.MaxIssues = 0
		}},
		{name: "rate limit without window", mutate: func(c *Config) {
			c.RateLimit.Enabled = true
			c.RateLimit.Window = 0
		}},
		{name: "rate limit without prefix", mutate: func(c *Config) {
			c.RateLimit.Enabled = true
			c.RateLimit.RedisPrefix = ""
		}},
		{name: "audit without buffer", mutate: func(c *Config) {
			c.Audit.Enabled = true
			c.Audit.BufferSize = 0
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestConfigValidateIgnoresDisabledSections(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = RateLimitConfig{Enabled: false}
	cfg.Audit = AuditConfig{Enabled: false}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled sections should not be validated: %v", err)
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := New()
	issuer, err := b.Build()
	if err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	defer issuer.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second build to fail")
	}
}

func TestBuilderRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Header.Policy = ""
	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected invalid config to be rejected")
	}
}

func TestBuilderRateLimitRequiresRedis(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.Window = time.Minute
	_, err := New().WithConfig(cfg).Build()
	if err == nil || !strings.Contains(err.Error(), "redis") {
		t.Fatalf("expected redis requirement error, got %v", err)
	}
}

func TestBuilderDefaults(t *testing.T) {
	issuer := newTestIssuer(t, nil)

	if issuer.signer == nil || issuer.logger == nil || issuer.clock == nil || issuer.newID == nil {
		t.Fatal("builder left a default unset")
	}
	if issuer.limiter != nil {
		t.Fatal("limiter must be nil when rate limiting is off")
	}
	if issuer.audit != nil {
		t.Fatal("audit dispatcher must be nil when audit is off")
	}
}
