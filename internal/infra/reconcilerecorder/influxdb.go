//go:build !gcloud

package reconcilerecorder

import (
	"context"
	"log/slog"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
)

const reconcileMeasurement = "departure_reconcile"

type influxDBRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	bucket   string
	org      string
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.ReconcileResultRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "reconcile result recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.InfluxDBToken == "" || cfg.InfluxDBOrg == "" {
		slog.WarnContext(ctx, "InfluxDB token or org not configured, reconcile result recording disabled",
			slog.String("url", cfg.InfluxDBURL),
		)
		return NewNoopRecorder(), nil
	}

	client := influxdb2.NewClient(cfg.InfluxDBURL, cfg.InfluxDBToken)
	writeAPI := client.WriteAPIBlocking(cfg.InfluxDBOrg, cfg.InfluxDBBucket)

	slog.InfoContext(ctx, "reconcile result recorder initialized",
		slog.String("type", "influxdb"),
		slog.String("url", cfg.InfluxDBURL),
		slog.String("bucket", cfg.InfluxDBBucket),
	)

	return &influxDBRecorder{
		client:   client,
		writeAPI: writeAPI,
		bucket:   cfg.InfluxDBBucket,
		org:      cfg.InfluxDBOrg,
	}, nil
}

// reconcilePoint keys the point on the evaluation instant, so a replay of the same pass
// overwrites instead of duplicating.
func reconcilePoint(record domain.ReconcileRecord) *write.Point {
	runID := record.RunID
	if runID == "" {
		runID = "default"
	}

	return influxdb2.NewPoint(
		reconcileMeasurement,
		map[string]string{
			"run_id":  runID,
			"user_id": record.UserID,
			"trigger": record.Trigger,
		},
		map[string]any{
			"event_count":      record.EventCount,
			"urgent_count":     record.UrgentCount,
			"created_count":    record.CreatedCount,
			"cancelled_count":  record.CancelledCount,
			"kept_count":       record.KeptCount,
			"suppressed_count": record.SuppressedCount,
			"failed_count":     record.FailedCount,
			"degraded":         record.Degraded,
		},
		record.EvaluatedAt,
	)
}

func (r *influxDBRecorder) RecordReconcile(ctx context.Context, records []domain.ReconcileRecord) error {
	if len(records) == 0 {
		return nil
	}

	for _, record := range records {
		if err := r.writeAPI.WritePoint(ctx, reconcilePoint(record)); err != nil {
			slog.WarnContext(ctx, "failed to write reconcile result to InfluxDB",
				slog.String("error", err.Error()),
				slog.String("user_id", record.UserID),
				slog.String("trigger", record.Trigger),
				slog.Time("evaluated_at", record.EvaluatedAt),
			)
		}
	}

	return nil
}

func (r *influxDBRecorder) Flush(ctx context.Context) error {
	return r.writeAPI.Flush(ctx)
}

func (r *influxDBRecorder) Close() error {
	if r.client != nil {
		r.client.Close()
	}
	return nil
}
