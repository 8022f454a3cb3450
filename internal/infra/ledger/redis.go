package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
	"github.com/KasumiMercury/primind-departure-alerts/internal/observability/tracing"
)

const (
	ledgerKeyPrefix   = "departure:ledger:"
	degradedKeyPrefix = "departure:degraded:"

	ledgerTTL = 30 * 24 * time.Hour // refreshed on every save
)

type redisLedger struct {
	client *redis.Client
}

func NewRedisLedger(client *redis.Client) domain.ScheduleLedger {
	return &redisLedger{
		client: client,
	}
}

func (l *redisLedger) ListByUser(ctx context.Context, userID string) ([]domain.ScheduledNotification, error) {
	key := ledgerKeyPrefix + userID

	ctx, span := tracing.StartStoreOperationSpan(ctx, "redis", "list_notifications", key)
	defer span.End()

	values, err := l.client.HGetAll(ctx, key).Result()
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	notifications := make([]domain.ScheduledNotification, 0, len(values))
	for id, raw := range values {
		var n domain.ScheduledNotification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			err = fmt.Errorf("%w: %s: %v", ErrInvalidNotificationData, id, err)
			tracing.RecordError(span, err)
			return nil, err
		}
		notifications = append(notifications, n)
	}

	sortByFireAt(notifications)

	tracing.RecordError(span, nil)
	return notifications, nil
}

func (l *redisLedger) Get(ctx context.Context, userID, notificationID string) (domain.ScheduledNotification, error) {
	key := ledgerKeyPrefix + userID

	raw, err := l.client.HGet(ctx, key, notificationID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ScheduledNotification{}, domain.ErrNotificationNotFound
		}
		return domain.ScheduledNotification{}, err
	}

	var n domain.ScheduledNotification
	if err := json.Unmarshal(raw, &n); err != nil {
		return domain.ScheduledNotification{}, fmt.Errorf("%w: %v", ErrInvalidNotificationData, err)
	}

	return n, nil
}

func (l *redisLedger) Save(ctx context.Context, notifications ...domain.ScheduledNotification) error {
	if len(notifications) == 0 {
		return nil
	}

	ctx, span := tracing.StartStoreOperationSpan(ctx, "redis", "save_notifications", ledgerKeyPrefix+notifications[0].UserID)
	defer span.End()

	byUser := make(map[string][]any)
	for _, n := range notifications {
		if n.UserID == "" {
			tracing.RecordError(span, ErrMissingUserID)
			return ErrMissingUserID
		}
		data, err := json.Marshal(n)
		if err != nil {
			tracing.RecordError(span, ErrInvalidNotificationData)
			return ErrInvalidNotificationData
		}
		byUser[n.UserID] = append(byUser[n.UserID], n.ID, data)
	}

	pipe := l.client.TxPipeline()
	for userID, fields := range byUser {
		key := ledgerKeyPrefix + userID
		pipe.HSet(ctx, key, fields...)
		pipe.Expire(ctx, key, ledgerTTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		tracing.RecordError(span, err)
		return err
	}

	now := latestUpdate(notifications)
	for userID := range byUser {
		if err := l.prune(ctx, ledgerKeyPrefix+userID, now); err != nil {
			slog.WarnContext(ctx, "failed to prune expired notifications",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	tracing.RecordError(span, nil)
	return nil
}

// prune removes the fields of key whose notifications are expired at now.
func (l *redisLedger) prune(ctx context.Context, key string, now time.Time) error {
	values, err := l.client.HGetAll(ctx, key).Result()
	if err != nil {
		return err
	}

	expired := make([]string, 0)
	for id, raw := range values {
		var n domain.ScheduledNotification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			continue
		}
		if n.Expired(now) {
			expired = append(expired, id)
		}
	}
	if len(expired) == 0 {
		return nil
	}

	return l.client.HDel(ctx, key, expired...).Err()
}

func (l *redisLedger) SetDegraded(ctx context.Context, userID string, degraded bool) error {
	key := degradedKeyPrefix + userID

	if !degraded {
		return l.client.Del(ctx, key).Err()
	}

	return l.client.Set(ctx, key, time.Now().UTC().Format(time.RFC3339), ledgerTTL).Err()
}

func (l *redisLedger) IsDegraded(ctx context.Context, userID string) (bool, error) {
	key := degradedKeyPrefix + userID

	exists, err := l.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}

	return exists > 0, nil
}

// latestUpdate is the writer's clock as seen through the saved entries.
func latestUpdate(notifications []domain.ScheduledNotification) time.Time {
	var latest time.Time
	for _, n := range notifications {
		if n.UpdatedAt.After(latest) {
			latest = n.UpdatedAt
		}
	}
	return latest
}

func sortByFireAt(notifications []domain.ScheduledNotification) {
	sort.SliceStable(notifications, func(i, j int) bool {
		if !notifications[i].FireAt.Equal(notifications[j].FireAt) {
			return notifications[i].FireAt.Before(notifications[j].FireAt)
		}
		return notifications[i].ID < notifications[j].ID
	})
}
