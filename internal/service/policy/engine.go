package policy

import (
	"time"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
)

// Candidate is a prospective notification awaiting a fire decision.
type Candidate struct {
	Event    domain.DepartureEvent
	Kind     domain.NotificationKind
	Timing   domain.ReminderTiming
	FireAt   time.Time
	Priority domain.Priority
	// DelayMinutes is the live delay reported for a travel alert, if any.
	DelayMinutes *int
}

type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonGlobalDisabled       Reason = "global_disabled"
	ReasonSurpriseMode         Reason = "surprise_mode"
	ReasonRemindersDisabled    Reason = "reminders_disabled"
	ReasonTravelAlertsDisabled Reason = "travel_alerts_disabled"
	ReasonDelayBelowThreshold  Reason = "delay_below_threshold"
	ReasonPartnerDisabled      Reason = "partner_disabled"
	ReasonQuietHours           Reason = "quiet_hours"
)

func (r Reason) String() string {
	return string(r)
}

type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision {
	return Decision{Allowed: true}
}

func refuse(reason Reason) Decision {
	return Decision{Reason: reason}
}

// Engine decides whether a candidate may fire under a preference snapshot. It holds no
// state besides the location used when the snapshot has no timezone.
type Engine struct {
	defaultLoc *time.Location
}

func NewEngine(defaultLoc *time.Location) *Engine {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &Engine{
		defaultLoc: defaultLoc,
	}
}

func (e *Engine) ShouldFire(c Candidate, prefs domain.NotificationPreferences) bool {
	return e.Evaluate(c, prefs).Allowed
}

// Evaluate applies the preference rules in order and returns the first refusal.
// Surprise mode is checked before quiet hours so that a suppressed partner notification
// is never reported as a quiet-hours refusal.
func (e *Engine) Evaluate(c Candidate, prefs domain.NotificationPreferences) Decision {
	if !prefs.GlobalEnabled {
		return refuse(ReasonGlobalDisabled)
	}

	if c.Kind.IsPartnerFacing() && prefs.IsItinerarySuppressed(c.Event.TripID) {
		return refuse(ReasonSurpriseMode)
	}

	switch {
	case c.Kind == domain.KindActivityReminder:
		if !prefs.ActivityReminders.Enabled {
			return refuse(ReasonRemindersDisabled)
		}
	case c.Kind == domain.KindTravelAlert:
		if !prefs.TravelAlerts.Enabled {
			return refuse(ReasonTravelAlertsDisabled)
		}
		if c.DelayMinutes != nil && *c.DelayMinutes <= prefs.TravelAlerts.AlertWhenDelayExceeds {
			return refuse(ReasonDelayBelowThreshold)
		}
	case c.Kind.IsPartnerFacing():
		if !partnerAllowed(c.Kind, prefs.PartnerNotifications) {
			return refuse(ReasonPartnerDisabled)
		}
	}

	if e.IsWithinQuietHours(c.FireAt, prefs) {
		if !(c.Priority.IsCritical() && prefs.QuietHours.AllowCritical) {
			return refuse(ReasonQuietHours)
		}
	}

	return allow()
}

func partnerAllowed(kind domain.NotificationKind, p domain.PartnerNotificationPreferences) bool {
	if !p.Enabled {
		return false
	}
	switch kind {
	case domain.KindPartnerShare:
		return p.NotifyOnShare
	case domain.KindPartnerUpdate:
		return p.NotifyOnUpdate
	case domain.KindPartnerBooking:
		return p.NotifyOnBooking
	default:
		return false
	}
}

// IsWithinQuietHours reports whether instant falls in the [start, end) quiet window,
// evaluated on the wall clock of the snapshot's timezone. A window whose start is after
// its end wraps past midnight. Equal start and end define no window.
func (e *Engine) IsWithinQuietHours(instant time.Time, prefs domain.NotificationPreferences) bool {
	qh := prefs.QuietHours
	if !qh.Enabled {
		return false
	}

	start, err := domain.ParseTimeOfDay(qh.StartTime)
	if err != nil {
		return false
	}
	end, err := domain.ParseTimeOfDay(qh.EndTime)
	if err != nil {
		return false
	}
	if start == end {
		return false
	}

	tod := domain.TimeOfDayOf(instant, prefs.Location(e.defaultLoc))

	if start < end {
		return tod >= start && tod < end
	}
	return tod >= start || tod < end
}
