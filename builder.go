package jwtgen

import (
	"errors"
	"time"

	"github.com/MrEthical07/jwtgen/internal/rate"
	"github.com/MrEthical07/jwtgen/signer"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Builder assembles an [Issuer]. A Builder is single use.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	signer    Signer
	auditSink AuditSink
	logger    *zap.Logger
	clock     func() time.Time
	newID     func() (string, error)

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithSigner sets the signing backend. Defaults to golang-jwt.
func (b *Builder) WithSigner(s Signer) *Builder {
	b.signer = s
	return b
}

// WithRedis sets the client used by the issuance throttle.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAuditSink sets where audit events are delivered.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock sets the time source used by [Issuer.IssueNow].
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// WithIDGenerator replaces the jti generator. Defaults to random UUIDs.
func (b *Builder) WithIDGenerator(gen func() (string, error)) *Builder {
	b.newID = gen
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the Issue latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Issuer.
func (b *Builder) Build() (*Issuer, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.RateLimit.Enabled && b.redis == nil {
		return nil, errors.New("RateLimit requires redis client")
	}

	issuer := &Issuer{
		config:  cfg,
		signer:  b.signer,
		logger:  b.logger,
		clock:   b.clock,
		newID:   b.newID,
		metrics: NewMetrics(cfg.Metrics),
	}
	if issuer.signer == nil {
		issuer.signer = signer.NewJWT()
	}
	if issuer.logger == nil {
		issuer.logger = zap.NewNop()
	}
	if issuer.clock == nil {
		issuer.clock = time.Now
	}
	if issuer.newID == nil {
		issuer.newID = newTokenID
	}

	if cfg.RateLimit.Enabled {
		issuer.limiter = rate.New(b.redis, rate.Config{
			Prefix:    cfg.RateLimit.RedisPrefix,
			MaxIssues: cfg.RateLimit.MaxIssues,
			Window:    cfg.RateLimit.Window,
		})
	}
	issuer.audit = newAuditDispatcher(cfg.Audit, b.auditSink)

	b.built = true

	return issuer, nil
}
