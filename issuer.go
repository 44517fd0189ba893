package jwtgen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/jwtgen/internal/audit"
	"github.com/MrEthical07/jwtgen/internal/rate"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Signer turns a header and claim set into an encoded token. Implementations
// must be safe for concurrent use. See package signer for the bundled backends.
type Signer interface {
	Sign(header map[string]any, claims map[string]any, key []byte, alg Algorithm) (string, error)
}

// Issuer validates token requests, derives the registered claims and delegates
// signing.
//
// Issuer holds no per-call state; all methods are safe for concurrent use.
// Build one with [New].
type Issuer struct {
	config  Config
	signer  Signer
	limiter *rate.Limiter
	audit   *audit.Dispatcher
	metrics *Metrics
	logger  *zap.Logger
	clock   func() time.Time
	newID   func() (string, error)
}

// Issue turns req into a signed token as of now.
//
// Validation runs first and stops at the first failure, in this order: secret,
// expiry, payload, header. No claims are derived and nothing is signed unless
// all of it passes. Every failure is an [*Error]; no partial token is returned.
func (i *Issuer) Issue(ctx context.Context, req TokenRequest, now time.Time) (*Token, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	tok, err := i.issue(ctx, req, now)
	i.metrics.Observe(MetricIssueLatency, time.Since(start))

	i.record(ctx, req, tok, err)
	if err != nil {
		return nil, err
	}
	return tok, nil
}

// IssueNow is Issue at the issuer's clock.
func (i *Issuer) IssueNow(ctx context.Context, req TokenRequest) (*Token, error) {
	return i.Issue(ctx, req, i.clock())
}

func (i *Issuer) issue(ctx context.Context, req TokenRequest, now time.Time) (*Token, error) {
	v, err := req.validate(i.config.Header.Policy)
	if err != nil {
		return nil, err
	}

	jti, err := i.newID()
	if err != nil {
		return nil, newError(KindSigning, fmt.Errorf("generate jti: %w", err))
	}

	times := computeTimes(now, v.expiry)
	claims := deriveClaims(v.payload, times, jti, i.config.Claims)

	if i.limiter != nil {
		if err := i.throttle(ctx, claims); err != nil {
			return nil, err
		}
	}

	value, err := i.signer.Sign(v.header, claims, v.secret, v.algorithm)
	if err != nil {
		return nil, newError(KindSigning, err)
	}

	return &Token{
		Value:     value,
		Algorithm: v.algorithm,
		ID:        jti,
		Header:    v.header,
		Claims:    claims,
		IssuedAt:  times.issuedAt,
		ExpiresAt: times.expiresAt,
	}, nil
}

func (i *Issuer) throttle(ctx context.Context, claims ClaimSet) error {
	err := i.limiter.Allow(ctx, subjectString(claims.Subject()))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rate.ErrRateLimited):
		return newError(KindRateLimited, nil)
	default:
		return newError(KindRateLimitUnavailable, err)
	}
}

func (i *Issuer) record(ctx context.Context, req TokenRequest, tok *Token, err error) {
	if err == nil {
		i.metrics.IncIssued(tok.Algorithm)
		i.logger.Debug("token issued",
			zap.String("alg", string(tok.Algorithm)),
			zap.String("jti", tok.ID),
			zap.String("sub", subjectString(tok.Claims.Subject())),
			zap.Time("expires_at", tok.ExpiresAt),
		)
		expiresAt := tok.ExpiresAt
		i.audit.Emit(ctx, AuditEvent{
			Timestamp: time.Now().UTC(),
			EventType: AuditTokenIssued,
			Subject:   subjectString(tok.Claims.Subject()),
			TokenID:   tok.ID,
			Algorithm: string(tok.Algorithm),
			ExpiresAt: &expiresAt,
			Success:   true,
		})
		return
	}

	kind := KindOf(err)
	if id, ok := metricForKind(kind); ok {
		i.metrics.Inc(id)
	}
	i.logger.Warn("token rejected",
		zap.String("alg", string(req.Algorithm)),
		zap.String("kind", string(kind)),
		zap.Error(err),
	)
	i.audit.Emit(ctx, AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: AuditTokenRejected,
		Algorithm: string(req.Algorithm),
		Success:   false,
		Error:     string(kind),
	})
}

// MetricsSnapshot returns the current counters.
func (i *Issuer) MetricsSnapshot() MetricsSnapshot {
	return i.metrics.Snapshot()
}

// AuditDropped returns how many audit events were dropped under backpressure.
func (i *Issuer) AuditDropped() uint64 {
	return i.audit.Dropped()
}

// Close flushes and stops the audit dispatcher. The Redis client passed to the
// builder is owned by the caller and left open.
func (i *Issuer) Close() {
	if i == nil {
		return
	}
	if i.audit == nil {
		return
	}

	stats := i.audit.Close()
	fields := []zap.Field{
		zap.Uint64("issued", stats.Issued),
		zap.Uint64("rejected", stats.Rejected),
		zap.Uint64("dropped", stats.Dropped),
	}
	if stats.Dropped > 0 {
		i.logger.Warn("audit dispatcher closed with dropped events", fields...)
		return
	}
	i.logger.Debug("audit dispatcher closed", fields...)
}

// AuditStats returns the audit delivery accounting so far.
func (i *Issuer) AuditStats() AuditStats {
	return i.audit.Stats()
}

func subjectString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

func newTokenID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
