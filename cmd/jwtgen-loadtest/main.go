package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/jwtgen"
	"github.com/MrEthical07/jwtgen/signer"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	app := &cli.App{
		Name:  "jwtgen-loadtest",
		Usage: "issue tokens concurrently and report latency",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "tokens", Value: 200000, Usage: "total tokens to issue"},
			&cli.IntFlag{Name: "concurrency", Value: 256, Usage: "number of concurrent workers"},
			&cli.IntFlag{Name: "subjects", Value: 1000, Usage: "distinct subjects to spread issuance over"},
			&cli.StringFlag{Name: "alg", Value: string(jwtgen.HS256), Usage: "HS256, HS384 or HS512"},
			&cli.StringFlag{Name: "backend", Value: signer.BackendJWT, Usage: "signing backend (jwt, jwx)"},
			&cli.BoolFlag{Name: "rate-limit", Usage: "route issuance through the Redis throttle"},
			&cli.StringFlag{Name: "redis-addr", EnvVars: []string{"REDIS_ADDR"}, Usage: "redis address; miniredis is used when empty"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	tokens := c.Int("tokens")
	concurrency := c.Int("concurrency")
	subjects := c.Int("subjects")
	if tokens <= 0 || concurrency <= 0 || subjects <= 0 {
		return cli.Exit("tokens, concurrency, and subjects must be > 0", 2)
	}

	alg, err := jwtgen.ParseAlgorithm(c.String("alg"))
	if err != nil {
		return err
	}
	if !alg.Symmetric() {
		return cli.Exit("only HMAC algorithms are supported by the load test", 2)
	}

	backend, err := signer.New(c.String("backend"))
	if err != nil {
		return err
	}

	cfg := jwtgen.DefaultConfig()
	b := jwtgen.New().WithSigner(backend).WithLogger(zap.NewNop())

	if c.Bool("rate-limit") {
		client, cleanup, err := connectRedis(c.String("redis-addr"))
		if err != nil {
			return err
		}
		defer cleanup()

		cfg.RateLimit.Enabled = true
		cfg.RateLimit.MaxIssues = tokens
		cfg.RateLimit.Window = time.Hour
		cfg.RateLimit.RedisPrefix = "jwtgen-loadtest"
		b.WithRedis(client)
	}

	issuer, err := b.WithConfig(cfg).Build()
	if err != nil {
		return err
	}
	defer issuer.Close()

	payloads := make([]string, subjects)
	for i := range payloads {
		payloads[i] = fmt.Sprintf(`{"user_id": %d, "username": "user-%d", "roles": ["user"]}`, i, i)
	}

	fmt.Printf("issuing %d %s tokens with %d workers (%s backend)...\n", tokens, alg, concurrency, c.String("backend"))
	stats, err := runIssuePhase(c.Context, issuer, alg, payloads, tokens, concurrency)
	if err != nil {
		return err
	}

	fmt.Println("---- results ----")
	printStats("issue", stats)

	snap := issuer.MetricsSnapshot()
	fmt.Printf("metrics: issued=%d signing_failures=%d rate_limited=%d\n",
		snap.Counters[jwtgen.MetricIssueSuccess],
		snap.Counters[jwtgen.MetricSigningFailure],
		snap.Counters[jwtgen.MetricRateLimited],
	)

	if stats.duplicates > 0 {
		return fmt.Errorf("%d duplicate jti values", stats.duplicates)
	}
	return nil
}

func connectRedis(addr string) (redis.UniversalClient, func(), error) {
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("start miniredis: %w", err)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		fmt.Printf("using miniredis at %s\n", mr.Addr())
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	fmt.Printf("using redis at %s\n", addr)
	return client, func() { _ = client.Close() }, nil
}

func runIssuePhase(ctx context.Context, issuer *jwtgen.Issuer, alg jwtgen.Algorithm, payloads []string, tokens, concurrency int) (phaseStats, error) {
	var (
		cursor    int64
		failures  int64
		mu        sync.Mutex
		latencies = make([]time.Duration, 0, tokens)
		seen      = make(map[string]struct{}, tokens)
		dupes     int
	)

	g, ctx := errgroup.WithContext(ctx)
	start := time.Now()
	for w := 0; w < concurrency; w++ {
		g.Go(func() error {
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= tokens {
					return nil
				}
				if err := ctx.Err(); err != nil {
					return err
				}

				req := jwtgen.TokenRequest{
					Secret:        "loadtest-secret",
					Algorithm:     alg,
					ExpiryMinutes: "60",
					Payload:       payloads[i%len(payloads)],
					Header:        `{"typ": "JWT"}`,
				}
				t0 := time.Now()
				tok, err := issuer.IssueNow(ctx, req)
				d := time.Since(t0)

				if err != nil {
					if errors.Is(err, jwtgen.ErrRateLimitUnavailable) {
						return err
					}
					atomic.AddInt64(&failures, 1)
				}

				mu.Lock()
				latencies = append(latencies, d)
				if tok != nil {
					if _, ok := seen[tok.ID]; ok {
						dupes++
					}
					seen[tok.ID] = struct{}{}
				}
				mu.Unlock()
			}
		})
	}
	if err := g.Wait(); err != nil {
		return phaseStats{}, err
	}

	stats := computeStats(time.Since(start), latencies, failures)
	stats.duplicates = dupes
	return stats, nil
}

type phaseStats struct {
	total      time.Duration
	ops        int
	failures   int64
	duplicates int
	p50        time.Duration
	p95        time.Duration
	p99        time.Duration
	opsPerS    float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d duplicate_jti=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.duplicates,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
