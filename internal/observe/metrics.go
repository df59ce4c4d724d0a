// Package observe provides the OpenTelemetry metric instruments for the
// recognition pipeline and the HTTP middleware for the ops listener.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all ieum metrics.
const meterName = "github.com/ieum-ai/ieum"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use; the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Counters ---

	// TokensReceived counts recognition tokens by finality. Use with
	// attribute: attribute.Bool("final", ...)
	TokensReceived metric.Int64Counter

	// Sentences counts completed sentences. Use with attributes:
	//   attribute.String("tier", ...), attribute.String("reason", ...)
	Sentences metric.Int64Counter

	// ContaminationDrops counts token batches discarded by the
	// contamination guard. Use with attribute: attribute.String("kind", ...)
	ContaminationDrops metric.Int64Counter

	// FrameDrops counts audio frames evicted from the full send buffer.
	FrameDrops metric.Int64Counter

	// Reconnects counts recognition stream reconnect attempts. Use with
	// attribute: attribute.String("provider", ...)
	Reconnects metric.Int64Counter

	// RecognizerErrors counts stream errors surfaced to the session. Use
	// with attribute: attribute.String("kind", ...)
	RecognizerErrors metric.Int64Counter

	// --- Latency histograms ---

	// CorrectionDuration tracks one correction pass, dictionary walk and
	// optional predictor call included. Use with attribute:
	//   attribute.String("tier", ...)
	CorrectionDuration metric.Float64Histogram

	// --- Gauges ---

	// ActiveSessions tracks the number of live recognition sessions.
	ActiveSessions metric.Int64UpDownCounter

	// BufferedFrames tracks audio frames waiting in the send buffer.
	BufferedFrames metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks ops endpoint processing time. Use with
	// attributes: attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// correctionBuckets defines histogram bucket boundaries (in seconds) for
// correction latency: the dictionary walk finishes in microseconds, a
// predictor consultation can take most of its 500 ms budget.
var correctionBuckets = []float64{
	0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Counters.
	if met.TokensReceived, err = m.Int64Counter("ieum.recognizer.tokens",
		metric.WithDescription("Total recognition tokens received by finality."),
	); err != nil {
		return nil, err
	}
	if met.Sentences, err = m.Int64Counter("ieum.sentences.completed",
		metric.WithDescription("Total completed sentences by correction tier and boundary reason."),
	); err != nil {
		return nil, err
	}
	if met.ContaminationDrops, err = m.Int64Counter("ieum.assembly.contamination_drops",
		metric.WithDescription("Total token batches discarded by the contamination guard, by kind."),
	); err != nil {
		return nil, err
	}
	if met.FrameDrops, err = m.Int64Counter("ieum.session.frame_drops",
		metric.WithDescription("Total audio frames evicted from the full send buffer."),
	); err != nil {
		return nil, err
	}
	if met.Reconnects, err = m.Int64Counter("ieum.session.reconnects",
		metric.WithDescription("Total recognition stream reconnect attempts by provider."),
	); err != nil {
		return nil, err
	}
	if met.RecognizerErrors, err = m.Int64Counter("ieum.recognizer.errors",
		metric.WithDescription("Total recognition stream errors by kind."),
	); err != nil {
		return nil, err
	}

	// Histograms.
	if met.CorrectionDuration, err = m.Float64Histogram("ieum.correction.duration",
		metric.WithDescription("Latency of one correction pass by tier."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(correctionBuckets...),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveSessions, err = m.Int64UpDownCounter("ieum.active_sessions",
		metric.WithDescription("Number of live recognition sessions."),
	); err != nil {
		return nil, err
	}
	if met.BufferedFrames, err = m.Int64UpDownCounter("ieum.session.buffered_frames",
		metric.WithDescription("Audio frames waiting in the send buffer."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("ieum.http.request.duration",
		metric.WithDescription("Ops endpoint latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
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

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordTokens records n received tokens with the standard finality
// attribute.
func (m *Metrics) RecordTokens(ctx context.Context, n int, final bool) {
	m.TokensReceived.Add(ctx, int64(n),
		metric.WithAttributes(attribute.Bool("final", final)),
	)
}

// RecordSentence records one completed sentence with the standard
// attribute set.
func (m *Metrics) RecordSentence(ctx context.Context, tier, reason string) {
	m.Sentences.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("tier", tier),
			attribute.String("reason", reason),
		),
	)
}

// RecordContamination records one discarded token batch.
func (m *Metrics) RecordContamination(ctx context.Context, kind string) {
	m.ContaminationDrops.Add(ctx, 1,
		metric.WithAttributes(attribute.String("kind", kind)),
	)
}

// RecordReconnect records one reconnect attempt against provider.
func (m *Metrics) RecordReconnect(ctx context.Context, provider string) {
	m.Reconnects.Add(ctx, 1,
		metric.WithAttributes(attribute.String("provider", provider)),
	)
}

// RecordRecognizerError records one stream error of the given kind.
func (m *Metrics) RecordRecognizerError(ctx context.Context, kind string) {
	m.RecognizerErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("kind", kind)),
	)
}

// RecordCorrection records the latency of one correction pass.
func (m *Metrics) RecordCorrection(ctx context.Context, seconds float64, tier string) {
	m.CorrectionDuration.Record(ctx, seconds,
		metric.WithAttributes(attribute.String("tier", tier)),
	)
}
