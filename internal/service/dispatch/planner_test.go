package dispatch

import (
	"testing"
	"time"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/leaveby"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/policy"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/priority"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/render"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/traveltime"
)

var baseNow = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func newTestPlanner() *Planner {
	return NewPlanner(policy.NewEngine(time.UTC), priority.NewClassifier(), render.NewRenderer(time.UTC))
}

func departures(t *testing.T, lead int, events ...domain.DepartureEvent) []domain.LeaveByResult {
	t.Helper()
	return leaveby.NewCalculator(traveltime.NewEstimator()).ComputeAll(events, lead, baseNow)
}

func dinner() domain.DepartureEvent {
	return domain.DepartureEvent{
		ID:         "booking:dinner",
		SourceKind: domain.SourceBooking,
		Title:      "Dinner at La Bella",
		Location:   "12 Main St",
		EventTime:  time.Date(2024, 6, 1, 19, 0, 0, 0, time.UTC),
		Category:   domain.CategoryRestaurant,
	}
}

// applyLocally simulates a fully successful Apply on the ledger contents.
func applyLocally(t *testing.T, existing []domain.ScheduledNotification, plan Plan) []domain.ScheduledNotification {
	t.Helper()
	byID := make(map[string]domain.ScheduledNotification, len(existing))
	order := make([]string, 0, len(existing))
	for _, n := range existing {
		byID[n.ID] = n
		order = append(order, n.ID)
	}
	for _, c := range plan.ToCancel {
		cancelled, err := c.Notification.Transition(domain.StateCancelled, baseNow)
		if err != nil {
			t.Fatalf("cancel %s: %v", c.Notification.ID, err)
		}
		byID[cancelled.ID] = cancelled
	}
	for _, n := range plan.ToCreate {
		n.Handle = "tasks/" + n.ID
		byID[n.ID] = n
		order = append(order, n.ID)
	}
	out := make([]domain.ScheduledNotification, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out
}

func keysOf(ns []domain.ScheduledNotification) map[domain.ScheduleKey]time.Time {
	out := make(map[domain.ScheduleKey]time.Time, len(ns))
	for _, n := range ns {
		out[n.Key()] = n.FireAt
	}
	return out
}

func TestPlanner_ReconcileCreatesReminderAndLeaveBy(t *testing.T) {
	planner := newTestPlanner()
	prefs := domain.DefaultPreferences()

	plan := planner.Reconcile("user-1", departures(t, 60, dinner()), prefs, nil, baseNow)

	if len(plan.ToCancel) != 0 {
		t.Errorf("ToCancel: got %d, want 0", len(plan.ToCancel))
	}
	if len(plan.ToCreate) != 2 {
		t.Fatalf("ToCreate: got %d, want 2", len(plan.ToCreate))
	}

	keys := keysOf(plan.ToCreate)

	reminder := domain.ScheduleKey{EventID: "booking:dinner", Timing: domain.Timing30Min}
	if got, want := keys[reminder], time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("reminder FireAt: got %v, want %v", got, want)
	}

	// 19:00 - (60 lead + 30 travel) = 17:30, minus 10 buffer.
	leaveBy := domain.ScheduleKey{EventID: "booking:dinner", Timing: domain.TimingLeaveBy}
	if got, want := keys[leaveBy], time.Date(2024, 6, 1, 17, 20, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("leave-by FireAt: got %v, want %v", got, want)
	}

	for _, n := range plan.ToCreate {
		if n.State != domain.StatePending || n.Origin != domain.OriginReconcile {
			t.Errorf("%s: got state %s origin %s", n.Timing, n.State, n.Origin)
		}
		if n.Title == "" || n.Body == "" {
			t.Errorf("%s: copy not rendered", n.Timing)
		}
		if n.UserID != "user-1" {
			t.Errorf("%s: UserID got %q", n.Timing, n.UserID)
		}
	}

	if !plan.ToCreate[0].FireAt.Before(plan.ToCreate[1].FireAt) {
		t.Error("ToCreate is not ordered by FireAt")
	}
}

func TestPlanner_ReconcileIsIdempotent(t *testing.T) {
	planner := newTestPlanner()
	prefs := domain.DefaultPreferences().With(func(p *domain.NotificationPreferences) {
		p.ActivityReminders.DefaultTimings = []domain.ReminderTiming{domain.Timing1Hour, domain.Timing15Min}
	})
	deps := departures(t, 60, dinner())

	first := planner.Reconcile("user-1", deps, prefs, nil, baseNow)
	ledger := applyLocally(t, nil, first)

	second := planner.Reconcile("user-1", deps, prefs, ledger, baseNow)

	if !second.IsNoop() {
		t.Fatalf("second pass: got %d creates and %d cancels, want none", len(second.ToCreate), len(second.ToCancel))
	}
	if len(second.Kept) != len(first.ToCreate) {
		t.Errorf("Kept: got %d, want %d", len(second.Kept), len(first.ToCreate))
	}
}

func TestPlanner_ReconcileCancelsVanishedEvent(t *testing.T) {
	planner := newTestPlanner()
	prefs := domain.DefaultPreferences()

	first := planner.Reconcile("user-1", departures(t, 60, dinner()), prefs, nil, baseNow)
	ledger := applyLocally(t, nil, first)

	second := planner.Reconcile("user-1", nil, prefs, ledger, baseNow)

	if len(second.ToCreate) != 0 {
		t.Errorf("ToCreate: got %d, want 0", len(second.ToCreate))
	}
	if len(second.ToCancel) != 2 {
		t.Fatalf("ToCancel: got %d, want 2", len(second.ToCancel))
	}
	for _, c := range second.ToCancel {
		if c.Reason != CancelEventRemoved {
			t.Errorf("reason: got %s, want %s", c.Reason, CancelEventRemoved)
		}
	}
}

func TestPlanner_ReconcileReschedulesMovedEvent(t *testing.T) {
	planner := newTestPlanner()
	prefs := domain.DefaultPreferences()

	first := planner.Reconcile("user-1", departures(t, 60, dinner()), prefs, nil, baseNow)
	ledger := applyLocally(t, nil, first)

	moved := dinner()
	moved.EventTime = moved.EventTime.Add(time.Hour)
	second := planner.Reconcile("user-1", departures(t, 60, moved), prefs, ledger, baseNow)

	if len(second.ToCancel) != 2 || len(second.ToCreate) != 2 {
		t.Fatalf("got %d cancels and %d creates, want 2 and 2", len(second.ToCancel), len(second.ToCreate))
	}
	for _, c := range second.ToCancel {
		if c.Reason != CancelRescheduled {
			t.Errorf("reason: got %s, want %s", c.Reason, CancelRescheduled)
		}
	}
}

func TestPlanner_ReconcileCancelsWhenPreferencesRefuse(t *testing.T) {
	planner := newTestPlanner()
	prefs := domain.DefaultPreferences()

	first := planner.Reconcile("user-1", departures(t, 60, dinner()), prefs, nil, baseNow)
	ledger := applyLocally(t, nil, first)

	disabled := prefs.With(func(p *domain.NotificationPreferences) {
		p.GlobalEnabled = false
	})
	second := planner.Reconcile("user-1", departures(t, 60, dinner()), disabled, ledger, baseNow)

	if len(second.ToCreate) != 0 {
		t.Errorf("ToCreate: got %d, want 0", len(second.ToCreate))
	}
	if len(second.ToCancel) != 2 {
		t.Errorf("ToCancel: got %d, want 2", len(second.ToCancel))
	}
	if len(second.Suppressed) != 2 {
		t.Errorf("Suppressed: got %d, want 2", len(second.Suppressed))
	}
	for _, s := range second.Suppressed {
		if s.Reason != policy.ReasonGlobalDisabled {
			t.Errorf("suppression reason: got %s", s.Reason)
		}
	}
}

func TestPlanner_ReconcileQuietHours(t *testing.T) {
	planner := newTestPlanner()
	prefs := domain.DefaultPreferences().With(func(p *domain.NotificationPreferences) {
		p.QuietHours = domain.QuietHoursPreferences{Enabled: true, StartTime: "22:00", EndTime: "07:00", AllowCritical: true}
	})

	late := domain.DepartureEvent{
		ID:        "booking:late",
		Title:     "Night train",
		Location:  "Central Station",
		EventTime: time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC),
		Category:  domain.CategoryTransport,
	}

	plan := planner.Reconcile("user-1", departures(t, 30, late), prefs, nil, baseNow)

	// Reminder at 23:00 is refused; the critical leave-by alert at 22:35 passes.
	if len(plan.ToCreate) != 1 || plan.ToCreate[0].Timing != domain.TimingLeaveBy {
		t.Fatalf("ToCreate: got %+v, want only the leave-by alert", plan.ToCreate)
	}
	if len(plan.Suppressed) != 1 || plan.Suppressed[0].Reason != policy.ReasonQuietHours {
		t.Errorf("Suppressed: got %+v, want one quiet-hours refusal", plan.Suppressed)
	}
}

func TestPlanner_ReconcileCancelsElapsedPending(t *testing.T) {
	planner := newTestPlanner()
	prefs := domain.DefaultPreferences()

	stale := domain.NewScheduledNotification("user-1", "booking:dinner", domain.KindActivityReminder, domain.Timing2Hours, baseNow.Add(-time.Minute), baseNow.Add(-time.Hour))

	plan := planner.Reconcile("user-1", departures(t, 60, dinner()), prefs, []domain.ScheduledNotification{stale}, baseNow)

	if len(plan.ToCancel) != 1 || plan.ToCancel[0].Reason != CancelElapsed {
		t.Fatalf("ToCancel: got %+v, want the elapsed entry", plan.ToCancel)
	}
}

func TestPlanner_ReconcileDoesNotRecreateFired(t *testing.T) {
	planner := newTestPlanner()
	prefs := domain.DefaultPreferences()
	deps := departures(t, 60, dinner())

	first := planner.Reconcile("user-1", deps, prefs, nil, baseNow)
	ledger := applyLocally(t, nil, first)

	for i := range ledger {
		fired, err := ledger[i].Transition(domain.StateFired, baseNow)
		if err != nil {
			t.Fatalf("Transition: %v", err)
		}
		ledger[i] = fired
	}

	second := planner.Reconcile("user-1", deps, prefs, ledger, baseNow)

	if !second.IsNoop() {
		t.Errorf("got %d creates and %d cancels, want none", len(second.ToCreate), len(second.ToCancel))
	}
}

func TestPlanner_ReconcileRecreatesCancelled(t *testing.T) {
	planner := newTestPlanner()
	prefs := domain.DefaultPreferences()
	deps := departures(t, 60, dinner())

	first := planner.Reconcile("user-1", deps, prefs, nil, baseNow)
	ledger := applyLocally(t, nil, first)
	for i := range ledger {
		ledger[i], _ = ledger[i].Transition(domain.StateCancelled, baseNow)
	}

	second := planner.Reconcile("user-1", deps, prefs, ledger, baseNow)

	if len(second.ToCreate) != 2 {
		t.Errorf("ToCreate: got %d, want 2", len(second.ToCreate))
	}
}

func TestPlanner_ReconcileCancelsDuplicates(t *testing.T) {
	planner := newTestPlanner()
	prefs := domain.DefaultPreferences()
	deps := departures(t, 60, dinner())

	first := planner.Reconcile("user-1", deps, prefs, nil, baseNow)
	ledger := applyLocally(t, nil, first)

	dup := first.ToCreate[0]
	dup.ID = "duplicate"
	ledger = append(ledger, dup)

	second := planner.Reconcile("user-1", deps, prefs, ledger, baseNow)

	if len(second.ToCreate) != 0 {
		t.Errorf("ToCreate: got %d, want 0", len(second.ToCreate))
	}
	if len(second.ToCancel) != 1 || second.ToCancel[0].Reason != CancelDuplicate {
		t.Errorf("ToCancel: got %+v, want one duplicate", second.ToCancel)
	}
}

func TestPlanner_ReconcileManualEntries(t *testing.T) {
	planner := newTestPlanner()

	manual := func(kind domain.NotificationKind, timing domain.ReminderTiming, fireAt time.Time) domain.ScheduledNotification {
		n := domain.NewScheduledNotification("user-1", "diagnostic:a1", kind, timing, fireAt, baseNow)
		n.Origin = domain.OriginManual
		n.TripID = "trip-1"
		return n
	}

	tests := []struct {
		name       string
		entry      domain.ScheduledNotification
		prefs      domain.NotificationPreferences
		wantCancel bool
		wantReason CancelReason
	}{
		{
			name:  "compliant entry without departure is kept",
			entry: manual(domain.KindActivityReminder, domain.Timing5Min, baseNow.Add(time.Hour)),
			prefs: domain.DefaultPreferences(),
		},
		{
			name:       "elapsed entry is cancelled",
			entry:      manual(domain.KindActivityReminder, domain.Timing5Min, baseNow.Add(-time.Minute)),
			prefs:      domain.DefaultPreferences(),
			wantCancel: true,
			wantReason: CancelElapsed,
		},
		{
			name:  "entry is cancelled when notifications are disabled",
			entry: manual(domain.KindActivityReminder, domain.Timing30Min, baseNow.Add(time.Hour)),
			prefs: domain.DefaultPreferences().With(func(p *domain.NotificationPreferences) {
				p.GlobalEnabled = false
			}),
			wantCancel: true,
			wantReason: CancelNotAllowed,
		},
		{
			name:  "partner entry is cancelled under surprise mode",
			entry: manual(domain.KindPartnerUpdate, domain.TimingImmediate, baseNow.Add(time.Minute)),
			prefs: domain.DefaultPreferences().With(func(p *domain.NotificationPreferences) {
				p.PartnerNotifications.SurpriseMode.Enabled = true
				p.PartnerNotifications.SurpriseMode.SuppressedItineraryIDs = []string{"trip-1"}
			}),
			wantCancel: true,
			wantReason: CancelNotAllowed,
		},
		{
			name:  "delay alert passes quiet hours when critical is allowed",
			entry: manual(domain.KindTravelAlert, domain.TimingImmediate, baseNow.Add(time.Minute)),
			prefs: domain.DefaultPreferences().With(func(p *domain.NotificationPreferences) {
				p.QuietHours = domain.QuietHoursPreferences{Enabled: true, StartTime: "07:00", EndTime: "09:00", AllowCritical: true}
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := planner.Reconcile("user-1", nil, tt.prefs, []domain.ScheduledNotification{tt.entry}, baseNow)

			if len(plan.ToCreate) != 0 {
				t.Errorf("ToCreate: got %d, want 0", len(plan.ToCreate))
			}
			if !tt.wantCancel {
				if len(plan.ToCancel) != 0 {
					t.Errorf("ToCancel: got %+v, want none", plan.ToCancel)
				}
				return
			}
			if len(plan.ToCancel) != 1 || plan.ToCancel[0].Reason != tt.wantReason {
				t.Fatalf("ToCancel: got %+v, want one %s", plan.ToCancel, tt.wantReason)
			}
			if plan.ToCancel[0].Notification.ID != tt.entry.ID {
				t.Errorf("cancelled %s, want %s", plan.ToCancel[0].Notification.ID, tt.entry.ID)
			}
		})
	}
}

func rejectAll(t *testing.T, plan Plan) []domain.ScheduledNotification {
	t.Helper()
	out := make([]domain.ScheduledNotification, 0, len(plan.ToCreate))
	for _, n := range plan.ToCreate {
		failed, err := n.Transition(domain.StateCancelled, baseNow)
		if err != nil {
			t.Fatalf("Transition: %v", err)
		}
		failed.Rejected = true
		out = append(out, failed)
	}
	return out
}

func TestPlanner_ReconcileHoldsRejectedEntries(t *testing.T) {
	planner := newTestPlanner()
	prefs := domain.DefaultPreferences()
	deps := departures(t, 60, dinner())

	first := planner.Reconcile("user-1", deps, prefs, nil, baseNow)
	ledger := rejectAll(t, first)

	for pass := 0; pass < 2; pass++ {
		plan := planner.Reconcile("user-1", deps, prefs, ledger, baseNow)
		if !plan.IsNoop() {
			t.Errorf("pass %d: got %d creates and %d cancels, want none", pass, len(plan.ToCreate), len(plan.ToCancel))
		}
		if len(plan.Held) != len(first.ToCreate) {
			t.Errorf("pass %d: Held got %d, want %d", pass, len(plan.Held), len(first.ToCreate))
		}
	}

	moved := dinner()
	moved.EventTime = moved.EventTime.Add(time.Hour)
	plan := planner.Reconcile("user-1", departures(t, 60, moved), prefs, ledger, baseNow)
	if len(plan.ToCreate) != 2 || len(plan.Held) != 0 {
		t.Errorf("moved event: got %d creates and %d held, want 2 and 0", len(plan.ToCreate), len(plan.Held))
	}
}

func TestPlanner_ReconcileRetryingRejected(t *testing.T) {
	planner := newTestPlanner()
	prefs := domain.DefaultPreferences()
	deps := departures(t, 60, dinner())

	ledger := rejectAll(t, planner.Reconcile("user-1", deps, prefs, nil, baseNow))

	plan := planner.ReconcileRetryingRejected("user-1", deps, prefs, ledger, baseNow)

	if len(plan.ToCreate) != 2 {
		t.Errorf("ToCreate: got %d, want 2", len(plan.ToCreate))
	}
	if len(plan.Held) != 0 {
		t.Errorf("Held: got %d, want 0", len(plan.Held))
	}
}

func TestPlanner_ReconcileRecordsTripID(t *testing.T) {
	planner := newTestPlanner()
	event := dinner()
	event.TripID = "trip-1"

	plan := planner.Reconcile("user-1", departures(t, 60, event), domain.DefaultPreferences(), nil, baseNow)

	for _, n := range plan.ToCreate {
		if n.TripID != "trip-1" {
			t.Errorf("%s: TripID got %q, want trip-1", n.Timing, n.TripID)
		}
	}
}

func TestPlanner_ReconcileSkipsPastFireTimes(t *testing.T) {
	planner := newTestPlanner()
	prefs := domain.DefaultPreferences().With(func(p *domain.NotificationPreferences) {
		p.ActivityReminders.DefaultTimings = []domain.ReminderTiming{domain.Timing1Day, domain.Timing5Min}
	})

	soon := dinner()
	soon.EventTime = baseNow.Add(20 * time.Minute)

	plan := planner.Reconcile("user-1", departures(t, 60, soon), prefs, nil, baseNow)

	if len(plan.ToCreate) != 1 || plan.ToCreate[0].Timing != domain.Timing5Min {
		t.Errorf("ToCreate: got %+v, want only the 5min reminder", plan.ToCreate)
	}
}
