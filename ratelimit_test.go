package jwtgen

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func rateLimitConfig(max int) Config {
	cfg := DefaultConfig()
	cfg.RateLimit = RateLimitConfig{
		Enabled:     true,
		MaxIssues:   max,
		Window:      time.Minute,
		RedisPrefix: "jwtgen-test",
	}
	return cfg
}

func TestRateLimitPerSubject(t *testing.T) {
	_, rdb := newTestRedis(t)
	stub := &stubSigner{}
	issuer := newTestIssuer(t, New().WithConfig(rateLimitConfig(2)).WithRedis(rdb).WithSigner(stub))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := issuer.Issue(ctx, validRequest(), fixedNow)
		require.NoError(t, err)
	}

	_, err := issuer.Issue(ctx, validRequest(), fixedNow)
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, KindRateLimited, KindOf(err))
	assert.Equal(t, 2, stub.callCount(), "throttled request must not be signed")
	assert.Equal(t, uint64(1), issuer.MetricsSnapshot().Counters[MetricRateLimited])

	other := validRequest()
	other.Payload = `{"sub": "someone-else"}`
	_, err = issuer.Issue(ctx, other, fixedNow)
	require.NoError(t, err)
}

func TestRateLimitWindowExpires(t *testing.T) {
	mr, rdb := newTestRedis(t)
	issuer := newTestIssuer(t, New().WithConfig(rateLimitConfig(1)).WithRedis(rdb).WithSigner(&stubSigner{}))
	ctx := context.Background()

	_, err := issuer.Issue(ctx, validRequest(), fixedNow)
	require.NoError(t, err)
	_, err = issuer.Issue(ctx, validRequest(), fixedNow)
	require.ErrorIs(t, err, ErrRateLimited)

	mr.FastForward(61 * time.Second)

	_, err = issuer.Issue(ctx, validRequest(), fixedNow)
	require.NoError(t, err)
}

func TestRateLimitBackendDown(t *testing.T) {
	mr, rdb := newTestRedis(t)
	issuer := newTestIssuer(t, New().WithConfig(rateLimitConfig(5)).WithRedis(rdb).WithSigner(&stubSigner{}))

	mr.Close()

	_, err := issuer.Issue(context.Background(), validRequest(), fixedNow)
	require.ErrorIs(t, err, ErrRateLimitUnavailable)
	assert.Equal(t, uint64(1), issuer.MetricsSnapshot().Counters[MetricRateLimitUnavailable])
	assert.Zero(t, issuer.MetricsSnapshot().Counters[MetricRateLimited])
}

func TestRateLimitSkippedForInvalidInput(t *testing.T) {
	mr, rdb := newTestRedis(t)
	issuer := newTestIssuer(t, New().WithConfig(rateLimitConfig(1)).WithRedis(rdb).WithSigner(&stubSigner{}))

	req := validRequest()
	req.Secret = ""
	_, err := issuer.Issue(context.Background(), req, fixedNow)
	require.ErrorIs(t, err, ErrMissingSecret)

	assert.Empty(t, mr.Keys())
}
