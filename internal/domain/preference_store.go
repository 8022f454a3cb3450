package domain

import "context"

//go:generate mockgen -source=preference_store.go -destination=preference_store_mock.go -package=domain

// PreferenceStore is the key-value store that persists one preferences snapshot per user.
type PreferenceStore interface {
	Get(ctx context.Context, userID string) (NotificationPreferences, error)
	Save(ctx context.Context, userID string, prefs NotificationPreferences) error
}
