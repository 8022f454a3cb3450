package prefstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
	"github.com/KasumiMercury/primind-departure-alerts/internal/observability/tracing"
)

const preferencesKeyPrefix = "departure:prefs:"

type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) domain.PreferenceStore {
	return &redisStore{
		client: client,
	}
}

func (s *redisStore) Get(ctx context.Context, userID string) (domain.NotificationPreferences, error) {
	key := preferencesKeyPrefix + userID

	ctx, span := tracing.StartStoreOperationSpan(ctx, "redis", "get_preferences", key)
	defer span.End()

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			tracing.RecordError(span, nil)
			return domain.NotificationPreferences{}, domain.ErrPreferencesNotFound
		}
		tracing.RecordError(span, err)
		return domain.NotificationPreferences{}, err
	}

	prefs := domain.DefaultPreferences()
	if err := json.Unmarshal(data, &prefs); err != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidPreferencesData, err)
		tracing.RecordError(span, err)
		return domain.NotificationPreferences{}, err
	}

	tracing.RecordError(span, nil)
	return prefs.Normalize(), nil
}

func (s *redisStore) Save(ctx context.Context, userID string, prefs domain.NotificationPreferences) error {
	if userID == "" {
		return ErrInvalidUserID
	}

	key := preferencesKeyPrefix + userID

	ctx, span := tracing.StartStoreOperationSpan(ctx, "redis", "save_preferences", key)
	defer span.End()

	data, err := json.Marshal(prefs.Normalize())
	if err != nil {
		tracing.RecordError(span, err)
		return ErrInvalidPreferencesData
	}

	err = s.client.Set(ctx, key, data, 0).Err()
	tracing.RecordError(span, err)
	return err
}
