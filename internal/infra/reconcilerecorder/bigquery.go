//go:build gcloud

package reconcilerecorder

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
)

type bigQueryRecord struct {
	RecordedAt      time.Time `bigquery:"recorded_at"`
	EvaluatedAt     time.Time `bigquery:"evaluated_at"`
	RunID           string    `bigquery:"run_id"`
	UserID          string    `bigquery:"user_id"`
	Trigger         string    `bigquery:"trigger"`
	EventCount      int64     `bigquery:"event_count"`
	UrgentCount     int64     `bigquery:"urgent_count"`
	CreatedCount    int64     `bigquery:"created_count"`
	CancelledCount  int64     `bigquery:"cancelled_count"`
	KeptCount       int64     `bigquery:"kept_count"`
	SuppressedCount int64     `bigquery:"suppressed_count"`
	FailedCount     int64     `bigquery:"failed_count"`
	Degraded        bool      `bigquery:"degraded"`
}

type bigQueryRecorder struct {
	client   *bigquery.Client
	inserter *bigquery.Inserter
	dataset  string
	table    string
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.ReconcileResultRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "reconcile result recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.BigQueryProjectID == "" {
		slog.WarnContext(ctx, "BigQuery project ID not configured, reconcile result recording disabled")
		return NewNoopRecorder(), nil
	}

	client, err := bigquery.NewClient(ctx, cfg.BigQueryProjectID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create BigQuery client, reconcile result recording disabled",
			slog.String("error", err.Error()),
			slog.String("project_id", cfg.BigQueryProjectID),
		)
		return NewNoopRecorder(), nil
	}

	table := client.Dataset(cfg.BigQueryDataset).Table(cfg.BigQueryTable)
	inserter := table.Inserter()

	slog.InfoContext(ctx, "reconcile result recorder initialized",
		slog.String("type", "bigquery"),
		slog.String("project_id", cfg.BigQueryProjectID),
		slog.String("dataset", cfg.BigQueryDataset),
		slog.String("table", cfg.BigQueryTable),
	)

	return &bigQueryRecorder{
		client:   client,
		inserter: inserter,
		dataset:  cfg.BigQueryDataset,
		table:    cfg.BigQueryTable,
	}, nil
}

func (r *bigQueryRecorder) RecordReconcile(ctx context.Context, records []domain.ReconcileRecord) error {
	if len(records) == 0 {
		return nil
	}

	now := time.Now()
	bqRecords := make([]*bigQueryRecord, 0, len(records))
	for _, record := range records {
		bqRecords = append(bqRecords, &bigQueryRecord{
			RecordedAt:      now,
			EvaluatedAt:     record.EvaluatedAt,
			RunID:           record.RunID,
			UserID:          record.UserID,
			Trigger:         record.Trigger,
			EventCount:      int64(record.EventCount),
			UrgentCount:     int64(record.UrgentCount),
			CreatedCount:    int64(record.CreatedCount),
			CancelledCount:  int64(record.CancelledCount),
			KeptCount:       int64(record.KeptCount),
			SuppressedCount: int64(record.SuppressedCount),
			FailedCount:     int64(record.FailedCount),
			Degraded:        record.Degraded,
		})
	}

	if err := r.inserter.Put(ctx, bqRecords); err != nil {
		slog.WarnContext(ctx, "failed to insert reconcile results to BigQuery",
			slog.String("error", err.Error()),
			slog.Int("record_count", len(records)),
		)
	}

	return nil
}

func (r *bigQueryRecorder) Flush(ctx context.Context) error {
	return nil
}

func (r *bigQueryRecorder) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
