package jwtgen

import (
	"sync/atomic"
	"time"

	"github.com/MrEthical07/jwtgen/signer"
)

// MetricID identifies one in-process counter or histogram.
type MetricID uint16

const (
	// MetricIssueSuccess counts tokens handed back to callers.
	MetricIssueSuccess MetricID = iota
	// MetricMissingSecret counts requests rejected for an empty secret.
	MetricMissingSecret
	// MetricInvalidExpiry counts requests rejected for a bad expiry.
	MetricInvalidExpiry
	// MetricMalformedPayload counts requests rejected for payload JSON.
	MetricMalformedPayload
	// MetricMalformedHeader counts requests rejected for header JSON or policy.
	MetricMalformedHeader
	// MetricSigningFailure counts signer rejections.
	MetricSigningFailure
	// MetricRateLimited counts requests denied by the issuance throttle.
	MetricRateLimited
	// MetricRateLimitUnavailable counts requests failed because the throttle
	// backend could not be reached.
	MetricRateLimitUnavailable
	// MetricIssueLatency is the Issue latency histogram.
	MetricIssueLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a fixed set of lock-free counters. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
	latencySum    paddedCounter

	// issued per algorithm, indexed like signer.Algorithms()
	algorithms []Algorithm
	issuedBy   []paddedCounter
}

// MetricsSnapshot is a point-in-time copy of all counters and histograms.
//
// IssuedByAlgorithm splits [MetricIssueSuccess] by signing algorithm and
// LatencySum is the total time spent in Issue across the latency histogram.
type MetricsSnapshot struct {
	Counters          map[MetricID]uint64
	Histograms        map[MetricID][]uint64
	IssuedByAlgorithm map[Algorithm]uint64
	LatencySum        time.Duration
}

// NewMetrics creates a metrics set from cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	algs := signer.Algorithms()
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
		algorithms:    algs,
		issuedBy:      make([]paddedCounter, len(algs)),
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the latency histogram is recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to the counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// IncIssued counts one signed token for alg. Algorithms outside the
// supported set only move the [MetricIssueSuccess] total.
func (m *Metrics) IncIssued(alg Algorithm) {
	if m == nil || !m.enabled {
		return
	}
	atomic.AddUint64(&m.counters[MetricIssueSuccess].value, 1)
	for i, a := range m.algorithms {
		if a == alg {
			atomic.AddUint64(&m.issuedBy[i].value, 1)
			return
		}
	}
}

// Observe records d in the histogram id. Only [MetricIssueLatency] has buckets.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricIssueLatency {
		return
	}

	if d < 0 {
		d = 0
	}
	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
	atomic.AddUint64(&m.latencySum.value, uint64(d))
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters, and the latency histogram when enabled.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:          map[MetricID]uint64{},
			Histograms:        map[MetricID][]uint64{},
			IssuedByAlgorithm: map[Algorithm]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:          make(map[MetricID]uint64, int(metricIDCount)),
		Histograms:        make(map[MetricID][]uint64, 1),
		IssuedByAlgorithm: make(map[Algorithm]uint64, len(m.algorithms)),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricIssueLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricIssueLatency].buckets[i])
		}
		s.Histograms[MetricIssueLatency] = buckets
		s.LatencySum = time.Duration(atomic.LoadUint64(&m.latencySum.value))
	}

	for i, a := range m.algorithms {
		s.IssuedByAlgorithm[a] = atomic.LoadUint64(&m.issuedBy[i].value)
	}

	return s
}

func metricForKind(kind ErrorKind) (MetricID, bool) {
	switch kind {
	case KindMissingSecret:
		return MetricMissingSecret, true
	case KindInvalidExpiry:
		return MetricInvalidExpiry, true
	case KindMalformedPayload:
		return MetricMalformedPayload, true
	case KindMalformedHeader:
		return MetricMalformedHeader, true
	case KindSigning:
		return MetricSigningFailure, true
	case KindRateLimited:
		return MetricRateLimited, true
	case KindRateLimitUnavailable:
		return MetricRateLimitUnavailable, true
	default:
		return 0, false
	}
}

// Upper bounds: 100us, 250us, 500us, 1ms, 2.5ms, 5ms, 10ms, +Inf.
func bucketIndex(d time.Duration) int {
	us := d.Microseconds()

	switch {
	case us <= 100:
		return 0
	case us <= 250:
		return 1
	case us <= 500:
		return 2
	case us <= 1000:
		return 3
	case us <= 2500:
		return 4
	case us <= 5000:
		return 5
	case us <= 10000:
		return 6
	default:
		return 7
	}
}
