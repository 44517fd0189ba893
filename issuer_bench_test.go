package jwtgen

import (
	"context"
	"testing"
	"time"

	"github.com/MrEthical07/jwtgen/signer"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newBenchmarkIssuer(b *testing.B, builder *Builder) *Issuer {
	b.Helper()
	issuer, err := builder.Build()
	if err != nil {
		b.Fatalf("build failed: %v", err)
	}
	b.Cleanup(issuer.Close)
	return issuer
}

func benchmarkIssue(b *testing.B, issuer *Issuer, req TokenRequest) {
	ctx := context.Background()
	now := time.Now()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := issuer.Issue(ctx, req, now); err != nil {
			b.Fatalf("issue failed: %v", err)
		}
	}
}

func BenchmarkIssueHS256(b *testing.B) {
	benchmarkIssue(b, newBenchmarkIssuer(b, New()), validRequest())
}

func BenchmarkIssueHS256JWX(b *testing.B) {
	benchmarkIssue(b, newBenchmarkIssuer(b, New().WithSigner(signer.NewJWX())), validRequest())
}

func BenchmarkIssueRejectedPayload(b *testing.B) {
	issuer := newBenchmarkIssuer(b, New())
	req := validRequest()
	req.Payload = `{"user_id": 123,`
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := issuer.Issue(ctx, req, time.Now()); err == nil {
			b.Fatal("expected rejection")
		}
	}
}

func BenchmarkIssueRateLimited(b *testing.B) {
	mr, err := miniredis.Run()
	if err != nil {
		b.Fatalf("miniredis: %v", err)
	}
	b.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	b.Cleanup(func() { _ = client.Close() })

	cfg := DefaultConfig()
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.MaxIssues = 1 << 30
	cfg.RateLimit.Window = time.Hour

	benchmarkIssue(b, newBenchmarkIssuer(b, New().WithConfig(cfg).WithRedis(client)), validRequest())
}

func BenchmarkIssueParallel(b *testing.B) {
	issuer := newBenchmarkIssuer(b, New().WithLatencyHistograms(true))
	req := validRequest()
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := issuer.IssueNow(ctx, req); err != nil {
				b.Errorf("issue failed: %v", err)
				return
			}
		}
	})
}
