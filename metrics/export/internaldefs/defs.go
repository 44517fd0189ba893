package internaldefs

import (
	"github.com/MrEthical07/jwtgen"
)

// Metric families shared by every exporter.
const (
	IssueAttemptsName = "jwtgen_issue_attempts_total"
	IssueAttemptsHelp = "Issuance attempts by outcome."

	IssuedByAlgorithmName = "jwtgen_issued_by_algorithm_total"
	IssuedByAlgorithmHelp = "Tokens signed and returned, by signing algorithm."

	IssueLatencyName = "jwtgen_issue_latency_seconds"
	IssueLatencyHelp = "Time spent in Issue, from validation to signed token."

	AuditDroppedName = "jwtgen_audit_dropped_total"
	AuditDroppedHelp = "Audit events lost to dispatcher backpressure or shutdown."
)

// Label keys.
const (
	OutcomeLabel   = "outcome"
	AlgorithmLabel = "alg"
	BoundLabel     = "le"
)

// OutcomeIssued labels successful attempts. Rejections are labelled with
// their jwtgen.ErrorKind.
const OutcomeIssued = "issued"

// OutcomeDef maps a counter to its "outcome" label value.
type OutcomeDef struct {
	ID      jwtgen.MetricID
	Outcome string
}

// OutcomeDefs lists every issuance outcome in exposition order.
var OutcomeDefs = []OutcomeDef{
	{ID: jwtgen.MetricIssueSuccess, Outcome: OutcomeIssued},
	{ID: jwtgen.MetricMissingSecret, Outcome: string(jwtgen.KindMissingSecret)},
	{ID: jwtgen.MetricInvalidExpiry, Outcome: string(jwtgen.KindInvalidExpiry)},
	{ID: jwtgen.MetricMalformedPayload, Outcome: string(jwtgen.KindMalformedPayload)},
	{ID: jwtgen.MetricMalformedHeader, Outcome: string(jwtgen.KindMalformedHeader)},
	{ID: jwtgen.MetricSigningFailure, Outcome: string(jwtgen.KindSigning)},
	{ID: jwtgen.MetricRateLimited, Outcome: string(jwtgen.KindRateLimited)},
	{ID: jwtgen.MetricRateLimitUnavailable, Outcome: string(jwtgen.KindRateLimitUnavailable)},
}

// HistogramBounds are the "le" label values, in seconds.
var HistogramBounds = [8]string{
	"0.0001",
	"0.00025",
	"0.0005",
	"0.001",
	"0.0025",
	"0.005",
	"0.01",
	"+Inf",
}

// LatencyBuckets returns the cumulative latency buckets of s, all zero when
// the histogram is disabled.
func LatencyBuckets(s jwtgen.MetricsSnapshot) [8]uint64 {
	var out [8]uint64
	var running uint64
	raw := s.Histograms[jwtgen.MetricIssueLatency]
	for i := 0; i < len(out); i++ {
		if i < len(raw) {
			running += raw[i]
		}
		out[i] = running
	}
	return out
}

// Empty reports whether s carries nothing worth exporting.
func Empty(s jwtgen.MetricsSnapshot, auditDropped uint64) bool {
	return len(s.Counters) == 0 && len(s.Histograms) == 0 &&
		len(s.IssuedByAlgorithm) == 0 && auditDropped == 0
}
