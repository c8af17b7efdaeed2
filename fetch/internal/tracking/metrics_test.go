package tracking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/gaborage/fetchkit/internal/testutil"
)

func TestRecordAttempts(t *testing.T) {
	mp := testutil.NewTestMeterProvider(t)
	tp := testutil.NewTestTraceProvider(t)
	r := New(mp, tp)

	ctx := context.Background()
	r.RecordAttempt(ctx, "GET", OutcomeTimeout, 10*time.Millisecond)
	r.RecordAttempt(ctx, "GET", OutcomeOK, 5*time.Millisecond)

	rm := mp.Collect(t)
	assert.Equal(t, int64(2), testutil.SumInt64(t, rm, metricAttempts))

	m, ok := testutil.FindMetric(rm, metricAttemptDuration)
	require.True(t, ok)
	hist, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 2)
}

func TestExecutionSpanSuccess(t *testing.T) {
	mp := testutil.NewTestMeterProvider(t)
	tp := testutil.NewTestTraceProvider(t)
	r := New(mp, tp)

	ctx, span := r.StartExecution(context.Background(), "POST", "http://example.test/form")
	r.EndExecution(ctx, span, Execution{
		Method:     "POST",
		Success:    true,
		Attempts:   1,
		StatusCode: 200,
		Duration:   time.Millisecond,
	})

	spans := tp.Exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "fetch POST", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, attribute.Int(attrStatusCode, 200))
	assert.Contains(t, spans[0].Attributes, attribute.Int(attrAttempts, 1))
	assert.Contains(t, spans[0].Attributes, attribute.String(attrURL, "http://example.test/form"))

	assert.Equal(t, int64(1), testutil.SumInt64(t, mp.Collect(t), metricExecutions))
}

func TestExecutionSpanFailure(t *testing.T) {
	tp := testutil.NewTestTraceProvider(t)
	r := New(testutil.NewTestMeterProvider(t), tp)

	ctx, span := r.StartExecution(context.Background(), "GET", "http://example.test")
	r.EndExecution(ctx, span, Execution{
		Method:    "GET",
		Attempts:  3,
		ErrorType: "timeout",
		Err:       errors.New("deadline"),
	})

	spans := tp.Exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "timeout", spans[0].Status.Description)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "exception", spans[0].Events[0].Name)
}

func TestNewWithGlobalProviders(t *testing.T) {
	r := New(nil, nil)
	assert.NotPanics(t, func() {
		ctx, span := r.StartExecution(context.Background(), "GET", "http://example.test")
		r.RecordAttempt(ctx, "GET", OutcomeError, time.Millisecond)
		r.EndExecution(ctx, span, Execution{Method: "GET"})
	})
}
