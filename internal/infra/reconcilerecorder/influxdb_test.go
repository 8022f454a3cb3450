//go:build !gcloud

package reconcilerecorder

import (
	"testing"
	"time"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
)

func TestReconcilePointLineProtocol(t *testing.T) {
	evaluatedAt := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	record := domain.ReconcileRecord{
		UserID:       "user-1",
		Trigger:      "refresh",
		EvaluatedAt:  evaluatedAt,
		EventCount:   3,
		CreatedCount: 2,
		Degraded:     true,
	}

	point := reconcilePoint(record)

	if point.Name() != reconcileMeasurement {
		t.Errorf("measurement: got %q, want %q", point.Name(), reconcileMeasurement)
	}
	if !point.Time().Equal(evaluatedAt) {
		t.Errorf("time: got %v, want %v", point.Time(), evaluatedAt)
	}

	tags := map[string]string{}
	for _, tag := range point.TagList() {
		tags[tag.Key] = tag.Value
	}
	if tags["run_id"] != "default" {
		t.Errorf("run_id: got %q, want %q", tags["run_id"], "default")
	}
	if tags["trigger"] != "refresh" {
		t.Errorf("trigger: got %q, want %q", tags["trigger"], "refresh")
	}

	fields := map[string]any{}
	for _, field := range point.FieldList() {
		fields[field.Key] = field.Value
	}
	if fields["created_count"] != int64(2) {
		t.Errorf("created_count: got %v, want 2", fields["created_count"])
	}
	if fields["degraded"] != true {
		t.Errorf("degraded: got %v, want true", fields["degraded"])
	}
}
