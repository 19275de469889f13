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

	"github.com/skillsenselab/voicegate/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// VoiceMetrics holds metric instruments for enrollment and identification.
type VoiceMetrics struct {
	enrollTotal      metric.Int64Counter
	loginTotal       metric.Int64Counter
	loginDistance    metric.Float64Histogram
	extractDuration  metric.Float64Histogram
	enrolledSpeakers metric.Int64UpDownCounter
}

// NewVoiceMetrics creates the service's metric instruments on the given meter.
func NewVoiceMetrics(meter metric.Meter) (*VoiceMetrics, error) {
	enrollTotal, err := meter.Int64Counter("voicegate.enroll.total",
		metric.WithDescription("Total enrollment attempts by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating enroll.total counter: %w", err)
	}

	loginTotal, err := meter.Int64Counter("voicegate.login.total",
		metric.WithDescription("Total login attempts by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating login.total counter: %w", err)
	}

	loginDistance, err := meter.Float64Histogram("voicegate.login.distance",
		metric.WithDescription("Best cosine distance observed per login attempt"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating login.distance histogram: %w", err)
	}

	extractDuration, err := meter.Float64Histogram("voicegate.extract.duration",
		metric.WithDescription("Embedding extraction duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating extract.duration histogram: %w", err)
	}

	enrolledSpeakers, err := meter.Int64UpDownCounter("voicegate.enrolled.speakers",
		metric.WithDescription("Speakers enrolled since process start"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating enrolled.speakers counter: %w", err)
	}

	return &VoiceMetrics{
		enrollTotal:      enrollTotal,
		loginTotal:       loginTotal,
		loginDistance:    loginDistance,
		extractDuration:  extractDuration,
		enrolledSpeakers: enrolledSpeakers,
	}, nil
}

// RecordEnroll records an enrollment attempt.
func (m *VoiceMetrics) RecordEnroll(ctx context.Context, outcome, language string) {
	m.enrollTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("language", language),
	))
	if outcome == "enrolled" {
		m.enrolledSpeakers.Add(ctx, 1)
	}
}

// RecordLogin records a login attempt with its best distance. Pass a negative
// distance when no comparison happened (e.g. empty enrolled set).
func (m *VoiceMetrics) RecordLogin(ctx context.Context, outcome string, distance float64) {
	m.loginTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
	if distance >= 0 && distance <= 2 {
		m.loginDistance.Record(ctx, distance, metric.WithAttributes(
			attribute.String("outcome", outcome),
		))
	}
}

// RecordExtract records one embedding extraction call.
func (m *VoiceMetrics) RecordExtract(ctx context.Context, status string, duration time.Duration) {
	m.extractDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("status", status),
	))
}
