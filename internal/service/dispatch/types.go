package dispatch

import (
	"time"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/policy"
)

type CancelReason string

const (
	CancelEventRemoved CancelReason = "event_removed"
	CancelNotAllowed   CancelReason = "not_allowed"
	CancelRescheduled  CancelReason = "rescheduled"
	CancelElapsed      CancelReason = "elapsed"
	CancelDuplicate    CancelReason = "duplicate"
)

func (r CancelReason) String() string {
	return string(r)
}

type Cancellation struct {
	Notification domain.ScheduledNotification
	Reason       CancelReason
}

// Suppression is a candidate the preference engine refused.
type Suppression struct {
	EventID string
	Kind    domain.NotificationKind
	Timing  domain.ReminderTiming
	FireAt  time.Time
	Reason  policy.Reason
}

// Plan is the difference between the desired and the recorded schedule of one user.
type Plan struct {
	ToCreate   []domain.ScheduledNotification
	ToCancel   []Cancellation
	Kept       []domain.ScheduledNotification
	Suppressed []Suppression
	// Held are rejected entries standing in for notifications that are still wanted.
	Held []domain.ScheduledNotification
}

// IsNoop reports whether applying the plan would not touch the facility.
func (p Plan) IsNoop() bool {
	return len(p.ToCreate) == 0 && len(p.ToCancel) == 0
}

type ApplyResult struct {
	Created          []domain.ScheduledNotification
	Cancelled        []domain.ScheduledNotification
	FailedCount      int
	PermissionDenied bool
	Degraded         bool
}
