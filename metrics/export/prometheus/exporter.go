package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/MrEthical07/jwtgen"
	"github.com/MrEthical07/jwtgen/metrics/export/internaldefs"
)

type metricsSource interface {
	MetricsSnapshot() jwtgen.MetricsSnapshot
	AuditDropped() uint64
}

// PrometheusExporter renders issuer metrics in Prometheus text exposition format.
type PrometheusExporter struct {
	source metricsSource
}

// NewPrometheusExporter creates a Prometheus exporter that reads from issuer.
func NewPrometheusExporter(issuer *jwtgen.Issuer) *PrometheusExporter {
	return &PrometheusExporter{source: issuer}
}

// NewPrometheusExporterFromSource creates a Prometheus exporter from any
// snapshot source.
func NewPrometheusExporterFromSource(source metricsSource) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render returns the current metrics as four families: attempts by outcome,
// issued tokens by algorithm, the Issue latency histogram (only when latency
// histograms are enabled) and dropped audit events.
func (p *PrometheusExporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	snapshot := p.source.MetricsSnapshot()
	dropped := p.source.AuditDropped()
	if internaldefs.Empty(snapshot, dropped) {
		return ""
	}

	var b strings.Builder
	b.Grow(3072)

	writeFamily(&b, internaldefs.IssueAttemptsName, internaldefs.IssueAttemptsHelp, "counter")
	for _, def := range internaldefs.OutcomeDefs {
		writeSample(&b, internaldefs.IssueAttemptsName, internaldefs.OutcomeLabel, def.Outcome,
			strconv.FormatUint(snapshot.Counters[def.ID], 10))
	}

	writeFamily(&b, internaldefs.IssuedByAlgorithmName, internaldefs.IssuedByAlgorithmHelp, "counter")
	for _, alg := range jwtgen.Algorithms() {
		writeSample(&b, internaldefs.IssuedByAlgorithmName, internaldefs.AlgorithmLabel, string(alg),
			strconv.FormatUint(snapshot.IssuedByAlgorithm[alg], 10))
	}

	if _, ok := snapshot.Histograms[jwtgen.MetricIssueLatency]; ok {
		writeLatency(&b, snapshot)
	}

	writeFamily(&b, internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp, "counter")
	writeSample(&b, internaldefs.AuditDroppedName, "", "", strconv.FormatUint(dropped, 10))

	return b.String()
}

func writeLatency(b *strings.Builder, snapshot jwtgen.MetricsSnapshot) {
	name := internaldefs.IssueLatencyName
	cumulative := internaldefs.LatencyBuckets(snapshot)

	writeFamily(b, name, internaldefs.IssueLatencyHelp, "histogram")
	for i, le := range internaldefs.HistogramBounds {
		writeSample(b, name+"_bucket", internaldefs.BoundLabel, le, strconv.FormatUint(cumulative[i], 10))
	}
	writeSample(b, name+"_sum", "", "", strconv.FormatFloat(snapshot.LatencySum.Seconds(), 'g', -1, 64))
	writeSample(b, name+"_count", "", "", strconv.FormatUint(cumulative[len(cumulative)-1], 10))
}

func writeFamily(b *strings.Builder, name, help, kind string) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(escapeHelp(help))
	b.WriteString("\n# TYPE ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(kind)
	b.WriteByte('\n')
}

// writeSample writes one line; an empty label omits the label set.
func writeSample(b *strings.Builder, name, label, value, sample string) {
	b.WriteString(name)
	if label != "" {
		b.WriteByte('{')
		b.WriteString(label)
		b.WriteString(`="`)
		b.WriteString(escapeLabel(value))
		b.WriteString(`"}`)
	}
	b.WriteByte(' ')
	b.WriteString(sample)
	b.WriteByte('\n')
}

func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, "\\", "\\\\")
	help = strings.ReplaceAll(help, "\n", "\\n")
	return help
}

func escapeLabel(v string) string {
	v = strings.ReplaceAll(v, "\\", "\\\\")
	v = strings.ReplaceAll(v, "\"", "\\\"")
	v = strings.ReplaceAll(v, "\n", "\\n")
	return v
}
