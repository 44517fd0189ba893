package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, max int) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return New(rdb, Config{Prefix: "rt", MaxIssues: max, Window: time.Minute}), mr
}

func TestAllowWithinBudget(t *testing.T) {
	l, _ := newLimiter(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Allow(ctx, "alice"))
	}
	assert.ErrorIs(t, l.Allow(ctx, "alice"), ErrRateLimited)

	n, err := l.Issued(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestAllowSetsWindowTTLOnce(t *testing.T) {
	l, mr := newLimiter(t, 10)
	ctx := context.Background()

	require.NoError(t, l.Allow(ctx, "bob"))
	assert.Equal(t, time.Minute, mr.TTL("rt:issue:bob"))

	mr.FastForward(30 * time.Second)
	require.NoError(t, l.Allow(ctx, "bob"))
	assert.Equal(t, 30*time.Second, mr.TTL("rt:issue:bob"))
}

func TestIssuedMissingKeyIsZero(t *testing.T) {
	l, _ := newLimiter(t, 1)
	n, err := l.Issued(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReset(t *testing.T) {
	l, _ := newLimiter(t, 1)
	ctx := context.Background()

	require.NoError(t, l.Allow(ctx, "carol"))
	require.ErrorIs(t, l.Allow(ctx, "carol"), ErrRateLimited)
	require.NoError(t, l.Reset(ctx, "carol"))
	assert.NoError(t, l.Allow(ctx, "carol"))
}

func TestRedisFailureIsWrapped(t *testing.T) {
	l, mr := newLimiter(t, 1)
	mr.Close()

	err := l.Allow(context.Background(), "dave")
	assert.ErrorIs(t, err, ErrRedisUnavailable)
}
