package notifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
)

// LogFacility accepts every schedule and only logs it. It stands in for a real
// facility in local runs without a task queue.
type LogFacility struct{}

func NewLogFacility() *LogFacility {
	return &LogFacility{}
}

func (f *LogFacility) Schedule(ctx context.Context, payload *domain.Payload) (*Receipt, error) {
	slog.InfoContext(ctx, "notification scheduled (log only)",
		slog.String("notification_id", payload.NotificationID),
		slog.String("user_id", payload.UserID),
		slog.String("title", payload.Title),
		slog.Time("fire_at", payload.FireAt),
	)

	return &Receipt{
		Handle:       "log/" + payload.NotificationID,
		ScheduleTime: payload.FireAt,
		CreateTime:   time.Now(),
	}, nil
}

func (f *LogFacility) Cancel(ctx context.Context, handle string) error {
	slog.InfoContext(ctx, "notification cancelled (log only)",
		slog.String("handle", handle),
	)
	return nil
}
