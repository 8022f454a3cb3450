package prefstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
)

// FileStore keeps one YAML document per user under a directory. Keys missing from a
// document resolve to the default preferences.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating preferences directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(userID string) (string, error) {
	if userID == "" || userID == "." || userID == ".." || strings.ContainsAny(userID, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidUserID, userID)
	}
	return filepath.Join(s.dir, userID+".yaml"), nil
}

func (s *FileStore) Get(_ context.Context, userID string) (domain.NotificationPreferences, error) {
	path, err := s.path(userID)
	if err != nil {
		return domain.NotificationPreferences{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) && errors.Is(pathErr, fs.ErrNotExist) {
			return domain.NotificationPreferences{}, domain.ErrPreferencesNotFound
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return domain.NotificationPreferences{}, domain.ErrPreferencesNotFound
		}
		return domain.NotificationPreferences{}, fmt.Errorf("reading preferences %s: %w", path, err)
	}

	prefs := domain.DefaultPreferences()
	if err := v.Unmarshal(&prefs); err != nil {
		return domain.NotificationPreferences{}, fmt.Errorf("%w: %v", ErrInvalidPreferencesData, err)
	}

	return prefs.Normalize(), nil
}

func (s *FileStore) Save(_ context.Context, userID string, prefs domain.NotificationPreferences) error {
	path, err := s.path(userID)
	if err != nil {
		return err
	}

	settings, err := toSettings(prefs.Normalize())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.MergeConfigMap(settings); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPreferencesData, err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing preferences to %s: %w", path, err)
	}

	return nil
}

// toSettings flattens prefs into the snake_case key tree the YAML documents use.
func toSettings(prefs domain.NotificationPreferences) (map[string]any, error) {
	data, err := json.Marshal(prefs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreferencesData, err)
	}
	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreferencesData, err)
	}
	return settings, nil
}
