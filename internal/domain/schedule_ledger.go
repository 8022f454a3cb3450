package domain

import "context"

//go:generate mockgen -source=schedule_ledger.go -destination=schedule_ledger_mock.go -package=domain

// ScheduleLedger persists the dispatcher's scheduled notifications and its degraded flag.
type ScheduleLedger interface {
	ListByUser(ctx context.Context, userID string) ([]ScheduledNotification, error)
	Get(ctx context.Context, userID, notificationID string) (ScheduledNotification, error)
	Save(ctx context.Context, notifications ...ScheduledNotification) error
	SetDegraded(ctx context.Context, userID string, degraded bool) error
	IsDegraded(ctx context.Context, userID string) (bool, error)
}
