package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotificationKind is the class of a notification for preference evaluation.
type NotificationKind string

const (
	KindActivityReminder NotificationKind = "activity_reminder"
	KindTravelAlert      NotificationKind = "travel_alert"
	KindPartnerShare     NotificationKind = "partner_share"
	KindPartnerUpdate    NotificationKind = "partner_update"
	KindPartnerBooking   NotificationKind = "partner_booking"
)

func (k NotificationKind) String() string {
	return string(k)
}

// IsPartnerFacing reports whether the notification is addressed to the travel partner.
func (k NotificationKind) IsPartnerFacing() bool {
	return k == KindPartnerShare || k == KindPartnerUpdate || k == KindPartnerBooking
}

type NotificationState string

const (
	StatePending   NotificationState = "pending"
	StateFired     NotificationState = "fired"
	StateDelivered NotificationState = "delivered"
	StateCancelled NotificationState = "cancelled"
)

func (s NotificationState) String() string {
	return string(s)
}

var allowedTransitions = map[NotificationState][]NotificationState{
	StatePending: {StateFired, StateDelivered, StateCancelled},
	StateFired:   {StateDelivered},
}

func (s NotificationState) CanTransitionTo(next NotificationState) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Origin records which trigger created a scheduled notification. Reconciliation only
// re-creates entries it created itself; manual entries are cancelled once elapsed or
// refused by the current preferences.
type Origin string

const (
	OriginReconcile Origin = "reconcile"
	OriginManual    Origin = "manual"
)

// ScheduledNotification is one fire-time entry owned by the dispatcher. Rejected marks a
// cancelled entry the notification facility refused to schedule.
type ScheduledNotification struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	EventID   string            `json:"event_id"`
	TripID    string            `json:"trip_id,omitempty"`
	Kind      NotificationKind  `json:"kind"`
	Timing    ReminderTiming    `json:"timing"`
	FireAt    time.Time         `json:"fire_at"`
	State     NotificationState `json:"state"`
	Origin    Origin            `json:"origin"`
	Handle    string            `json:"handle,omitempty"`
	Rejected  bool              `json:"rejected,omitempty"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func NewScheduledNotification(userID, eventID string, kind NotificationKind, timing ReminderTiming, fireAt, now time.Time) ScheduledNotification {
	return ScheduledNotification{
		ID:        uuid.NewString(),
		UserID:    userID,
		EventID:   eventID,
		Kind:      kind,
		Timing:    timing,
		FireAt:    fireAt.UTC(),
		State:     StatePending,
		Origin:    OriginReconcile,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

// Key identifies the (event, timing) slot a notification occupies.
func (n ScheduledNotification) Key() ScheduleKey {
	return ScheduleKey{EventID: n.EventID, Timing: n.Timing}
}

func (n ScheduledNotification) IsPending() bool {
	return n.State == StatePending
}

// RetentionWindow is how long settled entries are kept after their fire time.
const RetentionWindow = 24 * time.Hour

// Expired reports whether n is cancelled or delivered and its fire time lies more than
// RetentionWindow before now. Fired entries are kept until delivery is reported.
func (n ScheduledNotification) Expired(now time.Time) bool {
	if n.State != StateCancelled && n.State != StateDelivered {
		return false
	}
	return n.FireAt.Before(now.Add(-RetentionWindow))
}

// Transition returns a copy of n moved to next.
func (n ScheduledNotification) Transition(next NotificationState, now time.Time) (ScheduledNotification, error) {
	if n.State == next {
		return n, nil
	}
	if !n.State.CanTransitionTo(next) {
		return n, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, n.State, next)
	}
	n.State = next
	n.UpdatedAt = now.UTC()
	return n, nil
}

type ScheduleKey struct {
	EventID string
	Timing  ReminderTiming
}

// Payload is what gets handed to the notification facility.
type Payload struct {
	NotificationID string      `json:"notification_id"`
	UserID         string      `json:"user_id"`
	Title          string      `json:"title"`
	Body           string      `json:"body"`
	FireAt         time.Time   `json:"fire_at"`
	Sound          bool        `json:"sound"`
	Vibration      bool        `json:"vibration"`
	Data           PayloadData `json:"data"`
}

type PayloadData struct {
	EventID string           `json:"event_id"`
	Timing  ReminderTiming   `json:"timing"`
	Kind    NotificationKind `json:"kind"`
}
