package dispatch

import (
	"sort"
	"time"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/policy"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/priority"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/render"
)

type Planner struct {
	policy     *policy.Engine
	classifier *priority.Classifier
	renderer   *render.Renderer
}

func NewPlanner(policyEngine *policy.Engine, classifier *priority.Classifier, renderer *render.Renderer) *Planner {
	return &Planner{
		policy:     policyEngine,
		classifier: classifier,
		renderer:   renderer,
	}
}

type desiredEntry struct {
	candidate policy.Candidate
	result    domain.LeaveByResult
}

type firedKey struct {
	key    domain.ScheduleKey
	fireAt int64
}

// Reconcile computes the plan that brings the recorded schedule in line with the
// current departures and preferences. It performs no I/O; reconciling again after the
// plan was applied yields an empty plan. Entries the facility rejected are held, not
// re-created.
func (p *Planner) Reconcile(
	userID string,
	departures []domain.LeaveByResult,
	prefs domain.NotificationPreferences,
	existing []domain.ScheduledNotification,
	now time.Time,
) Plan {
	return p.reconcile(userID, departures, prefs, existing, now, false)
}

// ReconcileRetryingRejected is Reconcile with earlier facility rejections released, so
// that each of them is attempted once more.
func (p *Planner) ReconcileRetryingRejected(
	userID string,
	departures []domain.LeaveByResult,
	prefs domain.NotificationPreferences,
	existing []domain.ScheduledNotification,
	now time.Time,
) Plan {
	return p.reconcile(userID, departures, prefs, existing, now, true)
}

func (p *Planner) reconcile(
	userID string,
	departures []domain.LeaveByResult,
	prefs domain.NotificationPreferences,
	existing []domain.ScheduledNotification,
	now time.Time,
	retryRejected bool,
) Plan {
	var plan Plan

	eventIDs := make(map[string]bool, len(departures))
	desired := make(map[domain.ScheduleKey]desiredEntry)
	order := make([]domain.ScheduleKey, 0)

	for _, r := range departures {
		eventIDs[r.Event.ID] = true

		for _, c := range p.candidates(r, prefs) {
			key := domain.ScheduleKey{EventID: c.Event.ID, Timing: c.Timing}
			if !c.FireAt.After(now) {
				continue
			}

			decision := p.policy.Evaluate(c, prefs)
			if !decision.Allowed {
				plan.Suppressed = append(plan.Suppressed, Suppression{
					EventID: c.Event.ID,
					Kind:    c.Kind,
					Timing:  c.Timing,
					FireAt:  c.FireAt,
					Reason:  decision.Reason,
				})
				continue
			}

			if _, dup := desired[key]; !dup {
				order = append(order, key)
			}
			desired[key] = desiredEntry{candidate: c, result: r}
		}
	}

	fired := make(map[firedKey]bool)
	held := make(map[firedKey]domain.ScheduledNotification)
	for _, n := range existing {
		if n.Origin != domain.OriginReconcile {
			continue
		}
		fk := firedKey{key: n.Key(), fireAt: n.FireAt.Unix()}
		switch {
		case n.State == domain.StateFired || n.State == domain.StateDelivered:
			fired[fk] = true
		case n.State == domain.StateCancelled && n.Rejected && !retryRejected:
			held[fk] = n
		}
	}

	matched := make(map[domain.ScheduleKey]bool)
	for _, n := range existing {
		if !n.IsPending() {
			continue
		}
		if n.Origin != domain.OriginReconcile {
			if reason, cancel := p.reviewManual(n, prefs, now); cancel {
				plan.ToCancel = append(plan.ToCancel, Cancellation{Notification: n, Reason: reason})
			}
			continue
		}

		key := n.Key()
		want, ok := desired[key]

		switch {
		case ok && !matched[key] && want.candidate.FireAt.Equal(n.FireAt):
			matched[key] = true
			plan.Kept = append(plan.Kept, n)
		case !n.FireAt.After(now):
			plan.ToCancel = append(plan.ToCancel, Cancellation{Notification: n, Reason: CancelElapsed})
		case !eventIDs[n.EventID]:
			plan.ToCancel = append(plan.ToCancel, Cancellation{Notification: n, Reason: CancelEventRemoved})
		case ok && matched[key] && want.candidate.FireAt.Equal(n.FireAt):
			plan.ToCancel = append(plan.ToCancel, Cancellation{Notification: n, Reason: CancelDuplicate})
		case ok:
			plan.ToCancel = append(plan.ToCancel, Cancellation{Notification: n, Reason: CancelRescheduled})
		default:
			plan.ToCancel = append(plan.ToCancel, Cancellation{Notification: n, Reason: CancelNotAllowed})
		}
	}

	for _, key := range order {
		if matched[key] {
			continue
		}
		want := desired[key]
		fk := firedKey{key: key, fireAt: want.candidate.FireAt.Unix()}
		if fired[fk] {
			continue
		}
		if n, ok := held[fk]; ok {
			plan.Held = append(plan.Held, n)
			continue
		}
		plan.ToCreate = append(plan.ToCreate, p.build(userID, want, prefs, now))
	}

	sort.SliceStable(plan.ToCreate, func(i, j int) bool {
		return plan.ToCreate[i].FireAt.Before(plan.ToCreate[j].FireAt)
	})

	return plan
}

// reviewManual checks a pending manual entry against the current snapshot. The event
// rule does not apply: manual entries need not belong to an aggregated departure.
func (p *Planner) reviewManual(n domain.ScheduledNotification, prefs domain.NotificationPreferences, now time.Time) (CancelReason, bool) {
	if !n.FireAt.After(now) {
		return CancelElapsed, true
	}

	hasDelay := n.Kind == domain.KindTravelAlert && n.Timing == domain.TimingImmediate
	c := policy.Candidate{
		Event:    domain.DepartureEvent{ID: n.EventID, TripID: n.TripID},
		Kind:     n.Kind,
		Timing:   n.Timing,
		FireAt:   n.FireAt,
		Priority: p.classifier.Classify(n.Kind, n.Timing, hasDelay),
	}
	if !p.policy.Evaluate(c, prefs).Allowed {
		return CancelNotAllowed, true
	}

	return "", false
}

// candidates lists every notification the departure could produce: one activity
// reminder per selected timing plus the leave-by travel alert.
func (p *Planner) candidates(r domain.LeaveByResult, prefs domain.NotificationPreferences) []policy.Candidate {
	timings := prefs.ActivityReminders.DefaultTimings
	out := make([]policy.Candidate, 0, len(timings)+1)

	for _, timing := range timings {
		if !timing.IsReminder() {
			continue
		}
		out = append(out, policy.Candidate{
			Event:    r.Event,
			Kind:     domain.KindActivityReminder,
			Timing:   timing,
			FireAt:   r.Event.EventTime.Add(-timing.Offset()),
			Priority: p.classifier.Classify(domain.KindActivityReminder, timing, false),
		})
	}

	buffer := time.Duration(prefs.TravelAlerts.BufferMinutes) * time.Minute
	out = append(out, policy.Candidate{
		Event:    r.Event,
		Kind:     domain.KindTravelAlert,
		Timing:   domain.TimingLeaveBy,
		FireAt:   r.LeaveByTime.Add(-buffer),
		Priority: p.classifier.Classify(domain.KindTravelAlert, domain.TimingLeaveBy, false),
	})

	return out
}

func (p *Planner) build(userID string, want desiredEntry, prefs domain.NotificationPreferences, now time.Time) domain.ScheduledNotification {
	c := want.candidate
	n := domain.NewScheduledNotification(userID, c.Event.ID, c.Kind, c.Timing, c.FireAt, now)
	n.TripID = c.Event.TripID

	out := p.renderer.Render(render.Input{
		Kind:          c.Kind,
		Timing:        c.Timing,
		Event:         c.Event,
		LeaveByTime:   want.result.LeaveByTime,
		TravelMinutes: want.result.EstimatedTravelMinutes,
	}, prefs)
	n.Title = out.Title
	n.Body = out.Body

	return n
}

// Build creates a manual notification that bypasses reconciliation, used for immediate
// and diagnostic sends.
func (p *Planner) Build(userID string, c policy.Candidate, in render.Input, prefs domain.NotificationPreferences, now time.Time) domain.ScheduledNotification {
	n := domain.NewScheduledNotification(userID, c.Event.ID, c.Kind, c.Timing, c.FireAt, now)
	n.Origin = domain.OriginManual
	n.TripID = c.Event.TripID

	out := p.renderer.Render(in, prefs)
	n.Title = out.Title
	n.Body = out.Body

	return n
}

func (p *Planner) Evaluate(c policy.Candidate, prefs domain.NotificationPreferences) policy.Decision {
	return p.policy.Evaluate(c, prefs)
}

func (p *Planner) Classify(kind domain.NotificationKind, timing domain.ReminderTiming, hasDelay bool) domain.Priority {
	return p.classifier.Classify(kind, timing, hasDelay)
}
