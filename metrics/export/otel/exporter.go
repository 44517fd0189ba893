package otel

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/jwtgen"
	"github.com/MrEthical07/jwtgen/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() jwtgen.MetricsSnapshot
	AuditDropped() uint64
}

type labelledID struct {
	id   jwtgen.MetricID
	opts metric.ObserveOption
}

type labelledAlg struct {
	alg  jwtgen.Algorithm
	opts metric.ObserveOption
}

// OTelExporter mirrors issuer metrics into OpenTelemetry observable
// instruments. Attempts carry an "outcome" attribute, issued tokens an "alg"
// attribute and latency buckets an "le" attribute.
type OTelExporter struct {
	source       metricsSource
	registration metric.Registration

	attempts     metric.Int64ObservableCounter
	outcomes     []labelledID
	issuedByAlg  metric.Int64ObservableCounter
	algorithms   []labelledAlg
	latency      metric.Int64ObservableGauge
	bounds       [8]metric.ObserveOption
	latencyCount metric.Int64ObservableGauge
	latencySum   metric.Float64ObservableGauge
	auditDropped metric.Int64ObservableCounter
}

// NewOTelExporter registers observable instruments on meter that read from issuer.
func NewOTelExporter(meter metric.Meter, issuer *jwtgen.Issuer) (*OTelExporter, error) {
	if issuer == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, issuer)
}

// NewOTelExporterFromSource is NewOTelExporter for any snapshot source.
func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{source: source}
	if err := e.createInstruments(meter); err != nil {
		return nil, err
	}

	for _, def := range internaldefs.OutcomeDefs {
		e.outcomes = append(e.outcomes, labelledID{
			id:   def.ID,
			opts: metric.WithAttributes(attribute.String(internaldefs.OutcomeLabel, def.Outcome)),
		})
	}
	for _, alg := range jwtgen.Algorithms() {
		e.algorithms = append(e.algorithms, labelledAlg{
			alg:  alg,
			opts: metric.WithAttributes(attribute.String(internaldefs.AlgorithmLabel, string(alg))),
		})
	}
	for i, le := range internaldefs.HistogramBounds {
		e.bounds[i] = metric.WithAttributes(attribute.String(internaldefs.BoundLabel, le))
	}

	registration, err := meter.RegisterCallback(e.observe,
		e.attempts, e.issuedByAlg, e.latency, e.latencyCount, e.latencySum, e.auditDropped)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	e.registration = registration
	return e, nil
}

func (e *OTelExporter) createInstruments(meter metric.Meter) error {
	var err error
	if e.attempts, err = meter.Int64ObservableCounter(internaldefs.IssueAttemptsName,
		metric.WithDescription(internaldefs.IssueAttemptsHelp)); err != nil {
		return fmt.Errorf("create %s: %w", internaldefs.IssueAttemptsName, err)
	}
	if e.issuedByAlg, err = meter.Int64ObservableCounter(internaldefs.IssuedByAlgorithmName,
		metric.WithDescription(internaldefs.IssuedByAlgorithmHelp)); err != nil {
		return fmt.Errorf("create %s: %w", internaldefs.IssuedByAlgorithmName, err)
	}

	name := internaldefs.IssueLatencyName
	if e.latency, err = meter.Int64ObservableGauge(name+"_bucket",
		metric.WithDescription("Cumulative Issue latency bucket counts.")); err != nil {
		return fmt.Errorf("create %s_bucket: %w", name, err)
	}
	if e.latencyCount, err = meter.Int64ObservableGauge(name+"_count",
		metric.WithDescription("Issue calls observed by the latency histogram.")); err != nil {
		return fmt.Errorf("create %s_count: %w", name, err)
	}
	if e.latencySum, err = meter.Float64ObservableGauge(name+"_sum",
		metric.WithDescription("Total time spent in Issue."), metric.WithUnit("s")); err != nil {
		return fmt.Errorf("create %s_sum: %w", name, err)
	}

	if e.auditDropped, err = meter.Int64ObservableCounter(internaldefs.AuditDroppedName,
		metric.WithDescription(internaldefs.AuditDroppedHelp)); err != nil {
		return fmt.Errorf("create %s: %w", internaldefs.AuditDroppedName, err)
	}
	return nil
}

func (e *OTelExporter) observe(_ context.Context, o metric.Observer) error {
	snapshot := e.source.MetricsSnapshot()

	for _, out := range e.outcomes {
		o.ObserveInt64(e.attempts, int64(snapshot.Counters[out.id]), out.opts)
	}
	for _, a := range e.algorithms {
		o.ObserveInt64(e.issuedByAlg, int64(snapshot.IssuedByAlgorithm[a.alg]), a.opts)
	}

	if _, ok := snapshot.Histograms[jwtgen.MetricIssueLatency]; ok {
		cumulative := internaldefs.LatencyBuckets(snapshot)
		for i := range cumulative {
			o.ObserveInt64(e.latency, int64(cumulative[i]), e.bounds[i])
		}
		o.ObserveInt64(e.latencyCount, int64(cumulative[len(cumulative)-1]))
		o.ObserveFloat64(e.latencySum, snapshot.LatencySum.Seconds())
	}

	o.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))
	return nil
}

// Close unregisters the collection callback.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
