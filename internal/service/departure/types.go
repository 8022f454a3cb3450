package departure

import (
	"time"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
)

// Trigger names the explicit event that started a pipeline pass.
type Trigger string

const (
	TriggerRefresh     Trigger = "refresh"
	TriggerPreferences Trigger = "preferences"
	TriggerDiagnostic  Trigger = "diagnostic"
	TriggerPartner     Trigger = "partner"
	TriggerDelay       Trigger = "delay"
)

func (t Trigger) String() string {
	return string(t)
}

type RefreshResponse struct {
	UserID          string                 `json:"user_id"`
	EvaluatedAt     time.Time              `json:"evaluated_at"`
	Departures      []domain.LeaveByResult `json:"departures"`
	CreatedCount    int                    `json:"created_count"`
	CancelledCount  int                    `json:"cancelled_count"`
	KeptCount       int                    `json:"kept_count"`
	SuppressedCount int                    `json:"suppressed_count"`
	FailedCount     int                    `json:"failed_count"`
	Degraded        bool                   `json:"degraded"`
}

type ListResponse struct {
	UserID      string                 `json:"user_id"`
	EvaluatedAt time.Time              `json:"evaluated_at"`
	Departures  []domain.LeaveByResult `json:"departures"`
	Degraded    bool                   `json:"degraded"`
}

type PreferencesUpdate struct {
	Preferences domain.NotificationPreferences `json:"preferences"`
	Refresh     *RefreshResponse               `json:"refresh,omitempty"`
}

// Activity is the ad-hoc event handed to the diagnostic reminder trigger.
type Activity struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Location  string    `json:"location"`
	EventTime time.Time `json:"event_time"`
}

// PartnerEvent describes something the travel partner should hear about.
type PartnerEvent struct {
	Kind        domain.NotificationKind `json:"kind"`
	TripID      string                  `json:"trip_id"`
	TripName    string                  `json:"trip_name"`
	BookingName string                  `json:"booking_name,omitempty"`
}

type Skipped struct {
	Kind   domain.NotificationKind `json:"kind"`
	Timing domain.ReminderTiming   `json:"timing"`
	FireAt time.Time               `json:"fire_at"`
	Reason string                  `json:"reason"`
}

const (
	skipElapsed  = "elapsed"
	skipRejected = "rejected"
)

// SendResult reports the outcome of a trigger that bypasses reconciliation.
type SendResult struct {
	Scheduled []domain.ScheduledNotification `json:"scheduled"`
	Skipped   []Skipped                      `json:"skipped"`
}
