package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/skillsenselab/tina-api/pkg/logger"
)

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, cfg Config, serviceName, serviceVersion string) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(serviceName, serviceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", serviceName,
		"endpoint", cfg.Endpoint,
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the metric instruments for the transcription pipeline.
type Metrics struct {
	transcriptionTotal    metric.Int64Counter
	transcriptionDuration metric.Float64Histogram
	normalizationTotal    metric.Int64Counter
	summaryTotal          metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	transcriptionTotal, err := meter.Int64Counter("transcription.total",
		metric.WithDescription("Total number of transcription requests by endpoint and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcription.total counter: %w", err)
	}

	transcriptionDuration, err := meter.Float64Histogram("transcription.duration",
		metric.WithDescription("Duration of transcription requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcription.duration histogram: %w", err)
	}

	normalizationTotal, err := meter.Int64Counter("normalization.total",
		metric.WithDescription("Total number of audio normalizations by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating normalization.total counter: %w", err)
	}

	summaryTotal, err := meter.Int64Counter("summary.total",
		metric.WithDescription("Total number of summarization calls by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating summary.total counter: %w", err)
	}

	return &Metrics{
		transcriptionTotal:    transcriptionTotal,
		transcriptionDuration: transcriptionDuration,
		normalizationTotal:    normalizationTotal,
		summaryTotal:          summaryTotal,
	}, nil
}

// RecordTranscription records one completed transcription request. Safe to
// call on a nil receiver so instrumentation stays optional.
func (m *Metrics) RecordTranscription(ctx context.Context, endpoint, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("outcome", outcome),
	)
	m.transcriptionTotal.Add(ctx, 1, attrs)
	m.transcriptionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("endpoint", endpoint),
	))
}

// RecordNormalization records one audio normalization attempt.
func (m *Metrics) RecordNormalization(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.normalizationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

// RecordSummary records one summarization call.
func (m *Metrics) RecordSummary(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.summaryTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}
