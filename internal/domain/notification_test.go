package domain

import (
	"errors"
	"testing"
	"time"
)

func TestScheduledNotificationTransition(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		from    NotificationState
		to      NotificationState
		wantErr bool
	}{
		{name: "pending to fired", from: StatePending, to: StateFired},
		{name: "pending to delivered", from: StatePending, to: StateDelivered},
		{name: "pending to cancelled", from: StatePending, to: StateCancelled},
		{name: "fired to delivered", from: StateFired, to: StateDelivered},
		{name: "same state is a no-op", from: StateDelivered, to: StateDelivered},
		{name: "cancelled cannot fire", from: StateCancelled, to: StateFired, wantErr: true},
		{name: "delivered cannot be cancelled", from: StateDelivered, to: StateCancelled, wantErr: true},
		{name: "fired cannot be cancelled", from: StateFired, to: StateCancelled, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewScheduledNotification("user-1", "booking:1", KindActivityReminder, Timing30Min, now.Add(time.Hour), now)
			n.State = tt.from

			got, err := n.Transition(tt.to, now)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("expected ErrInvalidTransition, got %v", err)
				}
				if got.State != tt.from {
					t.Errorf("state changed on failed transition: %s", got.State)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.State != tt.to {
				t.Errorf("State: got %s, want %s", got.State, tt.to)
			}
		})
	}
}

func TestNewScheduledNotificationAssignsUniqueIDs(t *testing.T) {
	now := time.Now()
	a := NewScheduledNotification("user-1", "booking:1", KindActivityReminder, Timing30Min, now, now)
	b := NewScheduledNotification("user-1", "booking:1", KindActivityReminder, Timing30Min, now, now)

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a.ID, b.ID)
	}
	if a.State != StatePending {
		t.Errorf("State: got %s, want pending", a.State)
	}
	if a.Key() != b.Key() {
		t.Errorf("Key: %v != %v", a.Key(), b.Key())
	}
}

func TestScheduledNotificationExpired(t *testing.T) {
	now := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		state  NotificationState
		fireAt time.Time
		want   bool
	}{
		{name: "old cancelled entry", state: StateCancelled, fireAt: now.Add(-RetentionWindow - time.Minute), want: true},
		{name: "old delivered entry", state: StateDelivered, fireAt: now.Add(-48 * time.Hour), want: true},
		{name: "recent cancelled entry", state: StateCancelled, fireAt: now.Add(-time.Hour)},
		{name: "future cancelled entry", state: StateCancelled, fireAt: now.Add(time.Hour)},
		{name: "old fired entry awaits delivery", state: StateFired, fireAt: now.Add(-48 * time.Hour)},
		{name: "old pending entry", state: StatePending, fireAt: now.Add(-48 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewScheduledNotification("user-1", "booking:1", KindActivityReminder, Timing30Min, tt.fireAt, now)
			n.State = tt.state

			if got := n.Expired(now); got != tt.want {
				t.Errorf("Expired: got %v, want %v", got, tt.want)
			}
		})
	}
}
