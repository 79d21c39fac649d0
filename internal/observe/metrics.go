// Package observe holds the OpenTelemetry metric instruments recorded by the
// analysis pipeline. Tests should use [NewMetrics] with their own
// [metric.MeterProvider]; the process default comes from [DefaultMetrics],
// and [InitProvider] installs an exportable SDK provider for CLI runs.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope for all ambiguia metrics
const meterName = "github.com/ppiankov/ambiguia"

// Metrics holds the instruments. All fields are safe for concurrent use.
type Metrics struct {
	// Analyses counts analyzed transcripts. Attribute: "status" (clean, findings, skipped)
	Analyses metric.Int64Counter

	// Findings counts findings. Attributes: "category", "severity"
	Findings metric.Int64Counter

	// AnalysisDuration tracks detector plus scoring latency
	AnalysisDuration metric.Float64Histogram

	// SourceFetches counts transcript loads. Attributes: "kind", "status"
	SourceFetches metric.Int64Counter

	// LLMRequests counts explanation requests. Attributes: "provider", "status"
	LLMRequests metric.Int64Counter
}

// Analysis runs in microseconds to milliseconds; remote sources take longer
var latencyBuckets = []float64{
	0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5,
}

// NewMetrics creates all instruments from mp
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Analyses, err = m.Int64Counter("ambiguia.analyses",
		metric.WithDescription("Total analyzed transcripts by outcome."),
	); err != nil {
		return nil, err
	}
	if met.Findings, err = m.Int64Counter("ambiguia.findings",
		metric.WithDescription("Total findings by category and severity."),
	); err != nil {
		return nil, err
	}
	if met.AnalysisDuration, err = m.Float64Histogram("ambiguia.analysis.duration",
		metric.WithDescription("Latency of transcript analysis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SourceFetches, err = m.Int64Counter("ambiguia.source.fetches",
		metric.WithDescription("Total transcript source loads by kind and status."),
	); err != nil {
		return nil, err
	}
	if met.LLMRequests, err = m.Int64Counter("ambiguia.llm.requests",
		metric.WithDescription("Total LLM explanation requests by provider and status."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level instance built on the global
// meter provider. Panics if instrument creation fails.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordAnalysis records one analysis outcome and its findings
func (m *Metrics) RecordAnalysis(ctx context.Context, status string, seconds float64, findings map[string]map[string]int) {
	m.Analyses.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.AnalysisDuration.Record(ctx, seconds)

	for category, bySeverity := range findings {
		for severity, n := range bySeverity {
			m.Findings.Add(ctx, int64(n), metric.WithAttributes(
				attribute.String("category", category),
				attribute.String("severity", severity),
			))
		}
	}
}

// RecordSourceFetch records a transcript load
func (m *Metrics) RecordSourceFetch(ctx context.Context, kind, status string) {
	m.SourceFetches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", status),
	))
}

// RecordLLMRequest records an explanation request
func (m *Metrics) RecordLLMRequest(ctx context.Context, provider, status string) {
	m.LLMRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	))
}
