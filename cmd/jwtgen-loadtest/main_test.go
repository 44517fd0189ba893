package main

import (
	"context"
	"testing"
	"time"

	"github.com/MrEthical07/jwtgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentile(t *testing.T) {
	samples := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.Equal(t, time.Duration(1), percentile(samples, 0))
	assert.Equal(t, time.Duration(5), percentile(samples, 50))
	assert.Equal(t, time.Duration(10), percentile(samples, 100))
	assert.Equal(t, time.Duration(0), percentile(nil, 50))
}

func TestRunIssuePhaseUniqueIDs(t *testing.T) {
	issuer, err := jwtgen.New().Build()
	require.NoError(t, err)
	defer issuer.Close()

	stats, err := runIssuePhase(context.Background(), issuer, jwtgen.HS256, []string{`{"username":"a"}`, `{"username":"b"}`}, 500, 8)
	require.NoError(t, err)
	assert.Equal(t, 500, stats.ops)
	assert.Zero(t, stats.failures)
	assert.Zero(t, stats.duplicates)
}
