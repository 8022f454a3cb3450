package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const departureTracerName = "github.com/KasumiMercury/primind-departure-alerts/internal/service/departure"

func DepartureTracer() trace.Tracer {
	return otel.Tracer(departureTracerName)
}

func StartRefreshSpan(ctx context.Context, userID, trigger string, now time.Time) (context.Context, trace.Span) {
	return DepartureTracer().Start(ctx, "departure.refresh",
		trace.WithAttributes(
			attribute.String("user_id", userID),
			attribute.String("trigger", trigger),
			attribute.String("evaluated_at", now.Format(time.RFC3339)),
		),
	)
}

func StartReconcileSpan(ctx context.Context, userID string, eventCount, existingCount int) (context.Context, trace.Span) {
	return DepartureTracer().Start(ctx, "departure.reconcile",
		trace.WithAttributes(
			attribute.String("user_id", userID),
			attribute.Int("reconcile.event_count", eventCount),
			attribute.Int("reconcile.existing_count", existingCount),
		),
	)
}

func StartFacilitySpan(ctx context.Context, operation, id string) (context.Context, trace.Span) {
	return DepartureTracer().Start(ctx, "departure.facility."+operation,
		trace.WithAttributes(
			attribute.String("notification.ref", id),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func StartExternalAPISpan(ctx context.Context, operation, url string) (context.Context, trace.Span) {
	return DepartureTracer().Start(ctx, "departure.external_api."+operation,
		trace.WithAttributes(
			attribute.String("url", url),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func StartStoreOperationSpan(ctx context.Context, system, operation, key string) (context.Context, trace.Span) {
	return DepartureTracer().Start(ctx, "departure."+system+"."+operation,
		trace.WithAttributes(
			attribute.String("db.system", system),
			attribute.String("db.operation", operation),
			attribute.String("db.key", key),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func RecordReconcileResult(span trace.Span, createCount, cancelCount, keptCount, suppressedCount int) {
	span.SetAttributes(
		attribute.Int("reconcile.create_count", createCount),
		attribute.Int("reconcile.cancel_count", cancelCount),
		attribute.Int("reconcile.kept_count", keptCount),
		attribute.Int("reconcile.suppressed_count", suppressedCount),
	)
}

func RecordApplyResult(span trace.Span, createdCount, cancelledCount, failedCount int, degraded bool, err error) {
	span.SetAttributes(
		attribute.Int("apply.created_count", createdCount),
		attribute.Int("apply.cancelled_count", cancelledCount),
		attribute.Int("apply.failed_count", failedCount),
		attribute.Bool("apply.degraded", degraded),
	)
	RecordError(span, err)
}

func RecordFacilityResult(span trace.Span, err error) {
	RecordError(span, err)
}

func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}
