package pipeline

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("pdfextract.pipeline")
	meter  = otel.Meter("pdfextract.pipeline")
)

var (
	runDuration      metric.Float64Histogram
	runTotal         metric.Int64Counter
	eventsDispatched metric.Int64Counter
	objectsProduced  metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments once. Without an SDK they are no-ops.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		runDuration, err = meter.Float64Histogram(
			"pdfextract_run_duration_seconds",
			metric.WithDescription("Duration of pipeline runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		runTotal, err = meter.Int64Counter(
			"pdfextract_runs_total",
			metric.WithDescription("Total number of pipeline runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		eventsDispatched, err = meter.Int64Counter(
			"pdfextract_events_dispatched_total",
			metric.WithDescription("Document events that reached at least one listener"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		objectsProduced, err = meter.Int64Counter(
			"pdfextract_objects_total",
			metric.WithDescription("Spatial objects produced"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startRunSpan(ctx context.Context, runID string, requested []string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Pipeline.Run",
		trace.WithAttributes(
			attribute.String("pdfextract.run_id", runID),
			attribute.StringSlice("pdfextract.requested", requested),
		),
	)
}

func startBuildSpan(ctx context.Context, typeName string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Pipeline.Build",
		trace.WithAttributes(
			attribute.String("pdfextract.type", typeName),
		),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func recordRunMetrics(ctx context.Context, duration time.Duration, dispatched, produced int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.Bool("success", success))
	runDuration.Record(ctx, duration.Seconds(), attrs)
	runTotal.Add(ctx, 1, attrs)
	eventsDispatched.Add(ctx, int64(dispatched))
	objectsProduced.Add(ctx, int64(produced))
}
