package domain

import (
	"context"
	"time"
)

// ReconcileRecord summarizes one reconciliation pass for offline analysis.
type ReconcileRecord struct {
	RunID           string
	UserID          string
	Trigger         string
	EvaluatedAt     time.Time
	EventCount      int
	UrgentCount     int
	CreatedCount    int
	CancelledCount  int
	KeptCount       int
	SuppressedCount int
	FailedCount     int
	Degraded        bool
}

//go:generate mockgen -source=reconcile_result_recorder.go -destination=reconcile_result_recorder_mock.go -package=domain

type ReconcileResultRecorder interface {
	RecordReconcile(ctx context.Context, records []ReconcileRecord) error
	Flush(ctx context.Context) error
	Close() error
}
