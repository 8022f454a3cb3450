package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
	"github.com/KasumiMercury/primind-departure-alerts/internal/infra/notifier"
	"github.com/KasumiMercury/primind-departure-alerts/internal/observability/metrics"
	"github.com/KasumiMercury/primind-departure-alerts/internal/observability/tracing"
)

type Dispatcher struct {
	facility notifier.Facility
	ledger   domain.ScheduleLedger
	metrics  *metrics.DepartureMetrics
}

func NewDispatcher(facility notifier.Facility, ledger domain.ScheduleLedger, departureMetrics *metrics.DepartureMetrics) *Dispatcher {
	return &Dispatcher{
		facility: facility,
		ledger:   ledger,
		metrics:  departureMetrics,
	}
}

// PayloadFor builds the facility payload of n under the given preferences.
func PayloadFor(n domain.ScheduledNotification, prefs domain.NotificationPreferences) domain.Payload {
	return domain.Payload{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Title:          n.Title,
		Body:           n.Body,
		FireAt:         n.FireAt,
		Sound:          prefs.SoundEnabled,
		Vibration:      prefs.VibrationEnabled,
		Data: domain.PayloadData{
			EventID: n.EventID,
			Timing:  n.Timing,
			Kind:    n.Kind,
		},
	}
}

// Apply executes plan against the notification facility and records the outcome in the
// ledger. Cancellations run before creations. A facility failure never aborts the pass:
// the failed entry is recorded as cancelled and the user's degraded flag is raised.
// After a permission denial the remaining creations are not attempted. The flag stays
// raised while the plan holds rejected entries.
func (d *Dispatcher) Apply(ctx context.Context, userID string, prefs domain.NotificationPreferences, plan Plan, now time.Time) (*ApplyResult, error) {
	ctx, span := tracing.DepartureTracer().Start(ctx, "dispatch.apply")
	defer span.End()

	result, err := d.apply(ctx, userID, prefs, plan, now, true)
	tracing.RecordApplyResult(span, len(result.Created), len(result.Cancelled), result.FailedCount, result.Degraded, err)
	return result, err
}

// apply clears the degraded flag after a clean pass only when clearDegraded is set.
func (d *Dispatcher) apply(ctx context.Context, userID string, prefs domain.NotificationPreferences, plan Plan, now time.Time, clearDegraded bool) (*ApplyResult, error) {
	result := &ApplyResult{}
	updates := make([]domain.ScheduledNotification, 0, len(plan.ToCreate)+len(plan.ToCancel))

	for _, s := range plan.Suppressed {
		slog.DebugContext(ctx, "notification suppressed by preferences",
			slog.String("user_id", userID),
			slog.String("event_id", s.EventID),
			slog.String("timing", s.Timing.String()),
			slog.String("reason", s.Reason.String()),
		)
		if d.metrics != nil {
			d.metrics.RecordSuppressed(ctx, s.Kind.String(), s.Reason.String())
		}
	}

	for _, c := range plan.ToCancel {
		n := c.Notification
		if n.Handle != "" {
			if err := d.facility.Cancel(ctx, n.Handle); err != nil {
				slog.WarnContext(ctx, "failed to cancel scheduled notification, will retry on next pass",
					slog.String("user_id", userID),
					slog.String("notification_id", n.ID),
					slog.String("reason", c.Reason.String()),
					slog.String("error", err.Error()),
				)
				d.recordFailure(ctx, result, "cancel")
				continue
			}
		}

		cancelled, err := n.Transition(domain.StateCancelled, now)
		if err != nil {
			slog.WarnContext(ctx, "skipping cancellation",
				slog.String("notification_id", n.ID),
				slog.String("error", err.Error()),
			)
			continue
		}

		updates = append(updates, cancelled)
		result.Cancelled = append(result.Cancelled, cancelled)
		if d.metrics != nil {
			d.metrics.RecordCancelled(ctx, n.Kind.String(), c.Reason.String())
		}
	}

	for _, n := range plan.ToCreate {
		if result.PermissionDenied {
			updates = append(updates, d.markFailed(ctx, n, now))
			result.FailedCount++
			continue
		}

		payload := PayloadFor(n, prefs)
		receipt, err := d.facility.Schedule(ctx, &payload)
		if err != nil {
			if errors.Is(err, notifier.ErrPermissionDenied) {
				result.PermissionDenied = true
			}
			slog.WarnContext(ctx, "notification facility rejected schedule",
				slog.String("user_id", userID),
				slog.String("notification_id", n.ID),
				slog.String("event_id", n.EventID),
				slog.String("timing", n.Timing.String()),
				slog.Bool("permission_denied", result.PermissionDenied),
				slog.String("error", err.Error()),
			)
			d.recordFailure(ctx, result, "schedule")
			updates = append(updates, d.markFailed(ctx, n, now))
			continue
		}

		n.Handle = receipt.Handle
		updates = append(updates, n)
		result.Created = append(result.Created, n)
		if d.metrics != nil {
			d.metrics.RecordScheduled(ctx, n.Kind.String(), n.Timing.String())
		}
	}

	if len(plan.Held) > 0 {
		result.Degraded = true
	}

	if len(updates) > 0 {
		if err := d.ledger.Save(ctx, updates...); err != nil {
			slog.ErrorContext(ctx, "failed to record scheduled notifications, rolling back facility timers",
				slog.String("user_id", userID),
				slog.Int("created_count", len(result.Created)),
				slog.String("error", err.Error()),
			)
			d.rollback(ctx, result.Created)
			return result, fmt.Errorf("failed to save scheduled notifications: %w", err)
		}
	}

	if result.Degraded || clearDegraded {
		if err := d.ledger.SetDegraded(ctx, userID, result.Degraded); err != nil {
			slog.WarnContext(ctx, "failed to persist degraded flag",
				slog.String("user_id", userID),
				slog.Bool("degraded", result.Degraded),
				slog.String("error", err.Error()),
			)
		}
	}

	slog.InfoContext(ctx, "reconcile plan applied",
		slog.String("user_id", userID),
		slog.Int("created_count", len(result.Created)),
		slog.Int("cancelled_count", len(result.Cancelled)),
		slog.Int("kept_count", len(plan.Kept)),
		slog.Int("suppressed_count", len(plan.Suppressed)),
		slog.Int("held_count", len(plan.Held)),
		slog.Int("failed_count", result.FailedCount),
		slog.Bool("degraded", result.Degraded),
	)

	return result, nil
}

// Send schedules a single manual notification outside of reconciliation.
func (d *Dispatcher) Send(ctx context.Context, n domain.ScheduledNotification, prefs domain.NotificationPreferences, now time.Time) (domain.ScheduledNotification, error) {
	plan := Plan{ToCreate: []domain.ScheduledNotification{n}}

	result, err := d.apply(ctx, n.UserID, prefs, plan, now, false)
	if err != nil {
		return n, err
	}
	if len(result.Created) == 0 {
		failed, _ := n.Transition(domain.StateCancelled, now)
		return failed, fmt.Errorf("%w: notification %s", notifier.ErrRejected, n.ID)
	}
	return result.Created[0], nil
}

// markFailed records n as cancelled and rejected. Reconciliation holds rejected entries
// instead of scheduling them again.
func (d *Dispatcher) markFailed(ctx context.Context, n domain.ScheduledNotification, now time.Time) domain.ScheduledNotification {
	failed, err := n.Transition(domain.StateCancelled, now)
	if err != nil {
		slog.WarnContext(ctx, "failed to mark notification cancelled",
			slog.String("notification_id", n.ID),
			slog.String("error", err.Error()),
		)
		return n
	}
	failed.Rejected = true
	return failed
}

func (d *Dispatcher) recordFailure(ctx context.Context, result *ApplyResult, operation string) {
	result.FailedCount++
	result.Degraded = true
	if d.metrics != nil {
		d.metrics.RecordFacilityFailure(ctx, operation)
	}
}

func (d *Dispatcher) rollback(ctx context.Context, created []domain.ScheduledNotification) {
	for _, n := range created {
		if err := d.facility.Cancel(ctx, n.Handle); err != nil {
			slog.WarnContext(ctx, "failed to roll back facility timer",
				slog.String("notification_id", n.ID),
				slog.String("handle", n.Handle),
				slog.String("error", err.Error()),
			)
		}
	}
}
