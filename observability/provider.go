// Package observability builds the OpenTelemetry providers handed to fetch.Options.
// Telemetry is exported as pretty-printed JSON to a writer, for local runs and the CLI;
// production hosts are expected to pass their own providers instead.
package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMetricInterval is how often metrics are exported while the provider runs.
const DefaultMetricInterval = 30 * time.Second

// Provider exposes the tracer and meter providers and flushes them on shutdown.
type Provider interface {
	TracerProvider() trace.TracerProvider
	MeterProvider() metric.MeterProvider

	// Shutdown flushes pending telemetry and releases the exporters.
	Shutdown(ctx context.Context) error

	ForceFlush(ctx context.Context) error
}

// Config selects whether telemetry is exported and where to.
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string

	// Writer receives exported spans and metrics. Defaults to os.Stdout.
	Writer io.Writer

	// MetricInterval defaults to DefaultMetricInterval
	MetricInterval time.Duration
}

type provider struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

// NewProvider returns a no-op provider when cfg.Enabled is false.
func NewProvider(cfg Config) (Provider, error) {
	if !cfg.Enabled {
		return newNoopProvider(), nil
	}
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if cfg.MetricInterval <= 0 {
		cfg.MetricInterval = DefaultMetricInterval
	}

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	spanExporter, err := stdouttrace.New(stdouttrace.WithWriter(cfg.Writer), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(cfg.Writer), stdoutmetric.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	return &provider{
		tracerProvider: sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			// Synchronous export so a short-lived CLI run never loses spans.
			sdktrace.WithSyncer(spanExporter),
		),
		meterProvider: sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(cfg.MetricInterval))),
		),
	}, nil
}

func createResource(cfg Config) (*resource.Resource, error) {
	// Attributes carry no schema URL so the merge never conflicts with resource.Default.
	customRes, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, err
	}
	return resource.Merge(resource.Default(), customRes)
}

func (p *provider) TracerProvider() trace.TracerProvider { return p.tracerProvider }

func (p *provider) MeterProvider() metric.MeterProvider { return p.meterProvider }

func (p *provider) ForceFlush(ctx context.Context) error {
	return errors.Join(
		p.tracerProvider.ForceFlush(ctx),
		p.meterProvider.ForceFlush(ctx),
	)
}

func (p *provider) Shutdown(ctx context.Context) error {
	var errs []error
	if err := p.tracerProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("trace provider shutdown: %w", err))
	}
	if err := p.meterProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
	}
	return errors.Join(errs...)
}
