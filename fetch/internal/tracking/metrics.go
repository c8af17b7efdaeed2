// Package tracking records OpenTelemetry spans and metrics for fetch executions.
package tracking

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// InstrumentationName identifies the meter and tracer
	InstrumentationName = "github.com/gaborage/fetchkit/fetch"

	metricAttempts        = "fetch.client.attempts"           // Counter
	metricAttemptDuration = "fetch.client.attempt.duration"   // Histogram in seconds
	metricExecutions      = "fetch.client.executions"         // Counter
	metricExecDuration    = "fetch.client.execution.duration" // Histogram in seconds

	attrMethod     = "http.request.method"
	attrStatusCode = "http.response.status_code"
	attrURL        = "url.full"
	attrOutcome    = "fetch.outcome"
	attrSuccess    = "fetch.success"
	attrAttempts   = "fetch.attempts"
	attrErrorType  = "error.type"
)

// Attempt outcomes
const (
	OutcomeOK        = "ok"
	OutcomeFound     = "found"
	OutcomeStatus    = "status"
	OutcomeTimeout   = "timeout"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
)

// Recorder holds the instruments used by one fetcher.
// Instruments that failed to initialize are left nil and skipped.
type Recorder struct {
	tracer trace.Tracer

	attempts        metric.Int64Counter
	attemptDuration metric.Float64Histogram
	executions      metric.Int64Counter
	execDuration    metric.Float64Histogram
}

func logMetricError(name string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to initialize fetch metric %s: %v\n", name, err)
	}
}

// New creates a Recorder. Nil providers fall back to the global OTel providers.
func New(mp metric.MeterProvider, tp trace.TracerProvider) *Recorder {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	meter := mp.Meter(InstrumentationName)
	r := &Recorder{tracer: tp.Tracer(InstrumentationName)}

	var err error
	r.attempts, err = meter.Int64Counter(metricAttempts,
		metric.WithDescription("Number of HTTP attempts made by fetchers"),
		metric.WithUnit("{attempt}"))
	logMetricError(metricAttempts, err)

	r.attemptDuration, err = meter.Float64Histogram(metricAttemptDuration,
		metric.WithDescription("Duration of a single HTTP attempt"),
		metric.WithUnit("s"))
	logMetricError(metricAttemptDuration, err)

	r.executions, err = meter.Int64Counter(metricExecutions,
		metric.WithDescription("Number of Get/Post executions"),
		metric.WithUnit("{execution}"))
	logMetricError(metricExecutions, err)

	r.execDuration, err = meter.Float64Histogram(metricExecDuration,
		metric.WithDescription("Duration of a Get/Post execution including retry delays"),
		metric.WithUnit("s"))
	logMetricError(metricExecDuration, err)

	return r
}

// StartExecution opens the span covering every attempt of one Get/Post call.
func (r *Recorder) StartExecution(ctx context.Context, method, url string) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "fetch "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(attrMethod, method),
			attribute.String(attrURL, url),
		))
}

// RecordAttempt records the outcome of one attempt.
func (r *Recorder) RecordAttempt(ctx context.Context, method, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrOutcome, outcome),
	)
	if r.attempts != nil {
		r.attempts.Add(ctx, 1, attrs)
	}
	if r.attemptDuration != nil {
		r.attemptDuration.Record(ctx, duration.Seconds(), attrs)
	}
}

// Execution summarizes a finished Get/Post call.
type Execution struct {
	Method     string
	Success    bool
	Attempts   int
	StatusCode int
	ErrorType  string
	Err        error
	Duration   time.Duration
}

// EndExecution records execution metrics and closes span.
func (r *Recorder) EndExecution(ctx context.Context, span trace.Span, e Execution) {
	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, e.Method),
		attribute.Bool(attrSuccess, e.Success),
	}
	if e.ErrorType != "" {
		attrs = append(attrs, attribute.String(attrErrorType, e.ErrorType))
	}
	if r.executions != nil {
		r.executions.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if r.execDuration != nil {
		r.execDuration.Record(ctx, e.Duration.Seconds(), metric.WithAttributes(attrs...))
	}

	span.SetAttributes(
		attribute.Int(attrAttempts, e.Attempts),
		attribute.Bool(attrSuccess, e.Success),
	)
	if e.StatusCode != 0 {
		span.SetAttributes(attribute.Int(attrStatusCode, e.StatusCode))
	}
	if e.Success {
		span.SetStatus(codes.Ok, "")
	} else {
		if e.Err != nil {
			span.RecordError(e.Err)
		}
		span.SetStatus(codes.Error, e.ErrorType)
	}
	span.End()
}
