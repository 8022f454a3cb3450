package departure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
	"github.com/KasumiMercury/primind-departure-alerts/internal/infra/notifier"
	"github.com/KasumiMercury/primind-departure-alerts/internal/observability/tracing"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/policy"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/render"
)

// ScheduleActivityReminder schedules reminders for an ad-hoc activity. It bypasses the
// aggregator but not the preference engine.
func (s *Service) ScheduleActivityReminder(ctx context.Context, userID string, activity Activity, timings []domain.ReminderTiming, now time.Time) (*SendResult, error) {
	ctx, span := tracing.StartRefreshSpan(ctx, userID, TriggerDiagnostic.String(), now)
	defer span.End()

	timings = domain.NormalizeTimings(timings)
	if len(timings) == 0 {
		tracing.RecordError(span, ErrNoTimings)
		return nil, ErrNoTimings
	}
	if strings.TrimSpace(activity.Title) == "" || !activity.EventTime.After(now) {
		tracing.RecordError(span, ErrInvalidActivity)
		return nil, ErrInvalidActivity
	}

	activityID := activity.ID
	if activityID == "" {
		activityID = uuid.NewString()
	}
	event := domain.DepartureEvent{
		ID:         "diagnostic:" + activityID,
		SourceKind: domain.SourceActivity,
		Title:      strings.TrimSpace(activity.Title),
		Location:   strings.TrimSpace(activity.Location),
		EventTime:  activity.EventTime,
		Category:   domain.CategoryItineraryActivity,
	}

	prefs := s.Preferences(ctx, userID)
	result := &SendResult{}

	for _, timing := range timings {
		c := policy.Candidate{
			Event:    event,
			Kind:     domain.KindActivityReminder,
			Timing:   timing,
			FireAt:   event.EventTime.Add(-timing.Offset()),
			Priority: s.planner.Classify(domain.KindActivityReminder, timing, false),
		}
		if !c.FireAt.After(now) {
			result.skip(c, skipElapsed)
			continue
		}

		in := render.Input{Kind: c.Kind, Timing: timing, Event: event}
		if err := s.send(ctx, userID, c, in, prefs, now, result); err != nil {
			tracing.RecordError(span, err)
			return result, err
		}
	}

	tracing.RecordError(span, nil)
	return result, nil
}

// NotifyPartner sends an immediate partner-facing notification.
func (s *Service) NotifyPartner(ctx context.Context, userID string, event PartnerEvent, now time.Time) (*SendResult, error) {
	ctx, span := tracing.StartRefreshSpan(ctx, userID, TriggerPartner.String(), now)
	defer span.End()

	if !event.Kind.IsPartnerFacing() {
		err := fmt.Errorf("%w: %q", ErrInvalidPartnerKind, event.Kind)
		tracing.RecordError(span, err)
		return nil, err
	}

	title := event.BookingName
	if title == "" {
		title = event.TripName
	}
	departure := domain.DepartureEvent{
		ID:        "partner:" + event.TripID + ":" + event.Kind.String(),
		Title:     title,
		EventTime: now,
		TripID:    event.TripID,
		TripName:  event.TripName,
	}

	c := policy.Candidate{
		Event:    departure,
		Kind:     event.Kind,
		Timing:   domain.TimingImmediate,
		FireAt:   now,
		Priority: s.planner.Classify(event.Kind, domain.TimingImmediate, false),
	}

	result := &SendResult{}
	in := render.Input{Kind: c.Kind, Timing: c.Timing, Event: departure}
	err := s.send(ctx, userID, c, in, s.Preferences(ctx, userID), now, result)
	tracing.RecordError(span, err)
	return result, err
}

// ReportDelay raises a live-delay travel alert for one of the user's departures. The
// alert only fires when the delay exceeds the user's threshold.
func (s *Service) ReportDelay(ctx context.Context, userID, eventID string, delayMinutes int, now time.Time) (*SendResult, error) {
	ctx, span := tracing.StartRefreshSpan(ctx, userID, TriggerDelay.String(), now)
	defer span.End()

	if delayMinutes <= 0 {
		tracing.RecordError(span, ErrInvalidDelay)
		return nil, ErrInvalidDelay
	}

	prefs := s.Preferences(ctx, userID)

	departures, err := s.departures(ctx, userID, prefs, now)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	var target *domain.LeaveByResult
	for i := range departures {
		if departures[i].Event.ID == eventID {
			target = &departures[i]
			break
		}
	}
	if target == nil {
		err := fmt.Errorf("%w: %s", domain.ErrEventNotFound, eventID)
		tracing.RecordError(span, err)
		return nil, err
	}

	delay := delayMinutes
	c := policy.Candidate{
		Event:        target.Event,
		Kind:         domain.KindTravelAlert,
		Timing:       domain.TimingImmediate,
		FireAt:       now,
		Priority:     s.planner.Classify(domain.KindTravelAlert, domain.TimingImmediate, true),
		DelayMinutes: &delay,
	}

	result := &SendResult{}
	in := render.Input{
		Kind:          c.Kind,
		Timing:        c.Timing,
		Event:         target.Event,
		LeaveByTime:   target.LeaveByTime,
		TravelMinutes: target.EstimatedTravelMinutes,
		DelayMinutes:  delayMinutes,
	}
	err = s.send(ctx, userID, c, in, prefs, now, result)
	tracing.RecordError(span, err)
	return result, err
}

// send evaluates c and hands the rendered notification to the dispatcher. Refusals and
// facility rejections are reported in result; only ledger failures are returned.
func (s *Service) send(
	ctx context.Context,
	userID string,
	c policy.Candidate,
	in render.Input,
	prefs domain.NotificationPreferences,
	now time.Time,
	result *SendResult,
) error {
	if decision := s.planner.Evaluate(c, prefs); !decision.Allowed {
		slog.InfoContext(ctx, "notification suppressed by preferences",
			slog.String("user_id", userID),
			slog.String("event_id", c.Event.ID),
			slog.String("kind", c.Kind.String()),
			slog.String("reason", decision.Reason.String()),
		)
		if s.departureMetrics != nil {
			s.departureMetrics.RecordSuppressed(ctx, c.Kind.String(), decision.Reason.String())
		}
		result.skip(c, decision.Reason.String())
		return nil
	}

	n := s.planner.Build(userID, c, in, prefs, now)

	sent, err := s.dispatcher.Send(ctx, n, prefs, now)
	if err != nil {
		if errors.Is(err, notifier.ErrRejected) {
			result.skip(c, skipRejected)
			return nil
		}
		return fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	result.Scheduled = append(result.Scheduled, sent)
	return nil
}

func (r *SendResult) skip(c policy.Candidate, reason string) {
	r.Skipped = append(r.Skipped, Skipped{
		Kind:   c.Kind,
		Timing: c.Timing,
		FireAt: c.FireAt,
		Reason: reason,
	})
}
