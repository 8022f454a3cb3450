package departure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
	"github.com/KasumiMercury/primind-departure-alerts/internal/infra/tripsource"
	"github.com/KasumiMercury/primind-departure-alerts/internal/observability/logging"
	"github.com/KasumiMercury/primind-departure-alerts/internal/observability/metrics"
	"github.com/KasumiMercury/primind-departure-alerts/internal/observability/tracing"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/aggregate"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/dispatch"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/leaveby"
)

// Service runs the departure pipeline on explicit triggers: trip source, preferences,
// aggregation, leave-by computation, reconciliation and dispatch.
type Service struct {
	trips            tripsource.Repository
	preferences      domain.PreferenceStore
	ledger           domain.ScheduleLedger
	aggregator       *aggregate.Aggregator
	calculator       *leaveby.Calculator
	planner          *dispatch.Planner
	dispatcher       *dispatch.Dispatcher
	recorder         domain.ReconcileResultRecorder
	departureMetrics *metrics.DepartureMetrics
	defaults         domain.NotificationPreferences
}

func NewService(
	trips tripsource.Repository,
	preferences domain.PreferenceStore,
	ledger domain.ScheduleLedger,
	aggregator *aggregate.Aggregator,
	calculator *leaveby.Calculator,
	planner *dispatch.Planner,
	dispatcher *dispatch.Dispatcher,
	recorder domain.ReconcileResultRecorder,
	departureMetrics *metrics.DepartureMetrics,
	defaults domain.NotificationPreferences,
) *Service {
	return &Service{
		trips:            trips,
		preferences:      preferences,
		ledger:           ledger,
		aggregator:       aggregator,
		calculator:       calculator,
		planner:          planner,
		dispatcher:       dispatcher,
		recorder:         recorder,
		departureMetrics: departureMetrics,
		defaults:         defaults.Normalize(),
	}
}

// Preferences returns the stored snapshot, or the defaults when none can be read.
func (s *Service) Preferences(ctx context.Context, userID string) domain.NotificationPreferences {
	prefs, err := s.preferences.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrPreferencesNotFound) {
			slog.DebugContext(ctx, "no stored preferences, using defaults",
				slog.String("user_id", userID),
			)
		} else {
			slog.WarnContext(ctx, "failed to read preferences, using defaults",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
		return s.defaults.Clone()
	}
	return prefs
}

// Refresh recomputes the departure list and reconciles the user's scheduled
// notifications against it.
func (s *Service) Refresh(ctx context.Context, userID string, now time.Time) (*RefreshResponse, error) {
	ctx, span := tracing.StartRefreshSpan(ctx, userID, TriggerRefresh.String(), now)
	defer span.End()

	resp, err := s.refresh(ctx, userID, s.Preferences(ctx, userID), TriggerRefresh, now)
	tracing.RecordError(span, err)
	return resp, err
}

func (s *Service) refresh(ctx context.Context, userID string, prefs domain.NotificationPreferences, trigger Trigger, now time.Time) (*RefreshResponse, error) {
	start := time.Now()
	defer func() {
		if s.departureMetrics != nil {
			s.departureMetrics.RecordRefreshDuration(ctx, trigger.String(), time.Since(start))
		}
	}()

	departures, err := s.departures(ctx, userID, prefs, now)
	if err != nil {
		return nil, err
	}

	resp := &RefreshResponse{
		UserID:      userID,
		EvaluatedAt: now,
		Departures:  departures,
	}

	existing, err := s.ledger.ListByUser(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "schedule ledger unavailable, skipping reconciliation",
			slog.String("user_id", userID),
			slog.String("trigger", trigger.String()),
			slog.String("error", err.Error()),
		)
		resp.Degraded = true
		s.recordDegraded(ctx, trigger)
		s.record(ctx, trigger, resp)
		return resp, nil
	}

	reconcileStart := time.Now()
	_, reconcileSpan := tracing.StartReconcileSpan(ctx, userID, len(departures), len(existing))
	reconcile := s.planner.Reconcile
	if trigger == TriggerPreferences {
		reconcile = s.planner.ReconcileRetryingRejected
	}
	plan := reconcile(userID, departures, prefs, existing, now)
	tracing.RecordReconcileResult(reconcileSpan, len(plan.ToCreate), len(plan.ToCancel), len(plan.Kept), len(plan.Suppressed))
	reconcileSpan.End()
	if s.departureMetrics != nil {
		s.departureMetrics.RecordReconcileDuration(ctx, time.Since(reconcileStart))
	}

	resp.KeptCount = len(plan.Kept)
	resp.SuppressedCount = len(plan.Suppressed)

	result, err := s.dispatcher.Apply(ctx, userID, prefs, plan, now)
	if result != nil {
		resp.CreatedCount = len(result.Created)
		resp.CancelledCount = len(result.Cancelled)
		resp.FailedCount = result.FailedCount
		resp.Degraded = result.Degraded
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to apply reconcile plan",
			slog.String("user_id", userID),
			slog.String("trigger", trigger.String()),
			slog.String("error", err.Error()),
		)
		resp.CreatedCount = 0
		resp.Degraded = true
	}
	if resp.Degraded {
		s.recordDegraded(ctx, trigger)
	}

	s.record(ctx, trigger, resp)

	return resp, nil
}

// ListDepartures returns the in-app departure list without touching the schedule.
func (s *Service) ListDepartures(ctx context.Context, userID string, now time.Time) (*ListResponse, error) {
	prefs := s.Preferences(ctx, userID)

	departures, err := s.departures(ctx, userID, prefs, now)
	if err != nil {
		return nil, err
	}

	degraded, err := s.ledger.IsDegraded(ctx, userID)
	if err != nil {
		slog.WarnContext(ctx, "failed to read degraded flag",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		degraded = true
	}

	return &ListResponse{
		UserID:      userID,
		EvaluatedAt: now,
		Departures:  departures,
		Degraded:    degraded,
	}, nil
}

// UpdatePreferences stores a normalized snapshot and reconciles against it. Entries the
// facility rejected earlier are attempted once more. A failed reconciliation does not
// undo the stored preferences.
func (s *Service) UpdatePreferences(ctx context.Context, userID string, prefs domain.NotificationPreferences, now time.Time) (*PreferencesUpdate, error) {
	ctx, span := tracing.StartRefreshSpan(ctx, userID, TriggerPreferences.String(), now)
	defer span.End()

	normalized := prefs.Normalize()
	if err := s.preferences.Save(ctx, userID, normalized); err != nil {
		err = fmt.Errorf("%w: %v", ErrPreferencesUnavailable, err)
		tracing.RecordError(span, err)
		return nil, err
	}

	slog.InfoContext(ctx, "preferences updated",
		slog.String("user_id", userID),
		slog.Bool("global_enabled", normalized.GlobalEnabled),
		slog.Int("lead_time_minutes", normalized.LeadTimeMinutes),
	)

	update := &PreferencesUpdate{Preferences: normalized}

	resp, err := s.refresh(ctx, userID, normalized, TriggerPreferences, now)
	if err != nil {
		slog.WarnContext(ctx, "reconciliation after preference update failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		tracing.RecordError(span, nil)
		return update, nil
	}

	update.Refresh = resp
	tracing.RecordError(span, nil)
	return update, nil
}

// MarkNotification records a delivery callback from the notification facility.
func (s *Service) MarkNotification(ctx context.Context, userID, notificationID string, state domain.NotificationState, now time.Time) (domain.ScheduledNotification, error) {
	if state != domain.StateFired && state != domain.StateDelivered {
		return domain.ScheduledNotification{}, fmt.Errorf("%w: %q", ErrInvalidStateUpdate, state)
	}

	n, err := s.ledger.Get(ctx, userID, notificationID)
	if err != nil {
		return domain.ScheduledNotification{}, err
	}

	next, err := n.Transition(state, now)
	if err != nil {
		return n, err
	}

	if err := s.ledger.Save(ctx, next); err != nil {
		return n, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	slog.InfoContext(ctx, "notification state updated",
		slog.String("user_id", userID),
		slog.String("notification_id", notificationID),
		slog.String("from", n.State.String()),
		slog.String("to", next.State.String()),
	)

	return next, nil
}

// departures fetches the user's bookings and trips and derives the leave-by list. Trip
// source failures are returned, never treated as an empty list.
func (s *Service) departures(ctx context.Context, userID string, prefs domain.NotificationPreferences, now time.Time) ([]domain.LeaveByResult, error) {
	bookings, err := s.trips.ListBookings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: bookings: %v", ErrTripSourceUnavailable, err)
	}

	trips, err := s.trips.ListTrips(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: trips: %v", ErrTripSourceUnavailable, err)
	}

	loc := prefs.Location(s.aggregator.Location())
	events := s.aggregator.In(loc).Aggregate(ctx, bookings, trips, now)

	if s.departureMetrics != nil {
		counts := make(map[domain.SourceKind]int)
		for _, e := range events {
			counts[e.SourceKind]++
		}
		for kind, count := range counts {
			s.departureMetrics.RecordEventsEvaluated(ctx, kind.String(), count)
		}
	}

	return s.calculator.ComputeAll(events, prefs.LeadTimeMinutes, now), nil
}

func (s *Service) recordDegraded(ctx context.Context, trigger Trigger) {
	if s.departureMetrics != nil {
		s.departureMetrics.RecordDegraded(ctx, trigger.String())
	}
}

func (s *Service) record(ctx context.Context, trigger Trigger, resp *RefreshResponse) {
	if s.recorder == nil {
		return
	}

	urgent := 0
	for _, d := range resp.Departures {
		if d.IsUrgent {
			urgent++
		}
	}

	record := domain.ReconcileRecord{
		RunID:           logging.RequestIDFromContext(ctx),
		UserID:          resp.UserID,
		Trigger:         trigger.String(),
		EvaluatedAt:     resp.EvaluatedAt,
		EventCount:      len(resp.Departures),
		UrgentCount:     urgent,
		CreatedCount:    resp.CreatedCount,
		CancelledCount:  resp.CancelledCount,
		KeptCount:       resp.KeptCount,
		SuppressedCount: resp.SuppressedCount,
		FailedCount:     resp.FailedCount,
		Degraded:        resp.Degraded,
	}

	if err := s.recorder.RecordReconcile(ctx, []domain.ReconcileRecord{record}); err != nil {
		slog.WarnContext(ctx, "failed to record reconcile result",
			slog.String("user_id", resp.UserID),
			slog.String("error", err.Error()),
		)
	}
}
