package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	departureMeterName = "departure.service"
)

type DepartureMetrics struct {
	notificationsScheduled  metric.Int64Counter
	notificationsCancelled  metric.Int64Counter
	notificationsSuppressed metric.Int64Counter
	facilityFailures        metric.Int64Counter
	degradedPasses          metric.Int64Counter
	departuresEvaluated     metric.Int64Counter
	reconcileDuration       metric.Float64Histogram
	refreshDuration         metric.Float64Histogram
}

func NewDepartureMetrics() (*DepartureMetrics, error) {
	meter := otel.Meter(departureMeterName)

	notificationsScheduled, err := meter.Int64Counter(
		"departure_notifications_scheduled_total",
		metric.WithDescription("Total number of notifications handed to the notification facility"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, err
	}

	notificationsCancelled, err := meter.Int64Counter(
		"departure_notifications_cancelled_total",
		metric.WithDescription("Total number of scheduled notifications cancelled"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, err
	}

	notificationsSuppressed, err := meter.Int64Counter(
		"departure_notifications_suppressed_total",
		metric.WithDescription("Total number of candidate notifications refused by preferences"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, err
	}

	facilityFailures, err := meter.Int64Counter(
		"departure_facility_failures_total",
		metric.WithDescription("Total number of notification facility calls that failed"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	degradedPasses, err := meter.Int64Counter(
		"departure_degraded_passes_total",
		metric.WithDescription("Total number of reconcile passes that ended in degraded mode"),
		metric.WithUnit("{pass}"),
	)
	if err != nil {
		return nil, err
	}

	departuresEvaluated, err := meter.Int64Counter(
		"departure_events_evaluated_total",
		metric.WithDescription("Total number of departure events evaluated"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	reconcileDuration, err := meter.Float64Histogram(
		"departure_reconcile_duration_seconds",
		metric.WithDescription("Time spent computing and applying a reconcile plan"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5,
		),
	)
	if err != nil {
		return nil, err
	}

	refreshDuration, err := meter.Float64Histogram(
		"departure_refresh_duration_seconds",
		metric.WithDescription("Refresh pass duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
		),
	)
	if err != nil {
		return nil, err
	}

	return &DepartureMetrics{
		notificationsScheduled:  notificationsScheduled,
		notificationsCancelled:  notificationsCancelled,
		notificationsSuppressed: notificationsSuppressed,
		facilityFailures:        facilityFailures,
		degradedPasses:          degradedPasses,
		departuresEvaluated:     departuresEvaluated,
		reconcileDuration:       reconcileDuration,
		refreshDuration:         refreshDuration,
	}, nil
}

func (m *DepartureMetrics) RecordScheduled(ctx context.Context, kind, timing string) {
	m.notificationsScheduled.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("timing", timing),
	))
}

func (m *DepartureMetrics) RecordCancelled(ctx context.Context, kind, reason string) {
	m.notificationsCancelled.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("reason", reason),
	))
}

func (m *DepartureMetrics) RecordSuppressed(ctx context.Context, kind, reason string) {
	m.notificationsSuppressed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("reason", reason),
	))
}

func (m *DepartureMetrics) RecordFacilityFailure(ctx context.Context, operation string) {
	m.facilityFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

func (m *DepartureMetrics) RecordDegraded(ctx context.Context, trigger string) {
	m.degradedPasses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("trigger", trigger),
	))
}

func (m *DepartureMetrics) RecordEventsEvaluated(ctx context.Context, sourceKind string, count int) {
	m.departuresEvaluated.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("source_kind", sourceKind),
	))
}

func (m *DepartureMetrics) RecordReconcileDuration(ctx context.Context, duration time.Duration) {
	m.reconcileDuration.Record(ctx, duration.Seconds())
}

func (m *DepartureMetrics) RecordRefreshDuration(ctx context.Context, trigger string, duration time.Duration) {
	m.refreshDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("trigger", trigger),
	))
}
