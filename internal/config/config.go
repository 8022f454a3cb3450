package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	TripSourceURL string
	Port          string
	LogLevel      slog.Level
	Notifier      NotifierConfig
	Redis         *RedisConfig
	Departure     *DepartureConfig
	Store         *StoreConfig
}

// NotifierConfig selects the notification facility. Primind Tasks is used locally and
// Cloud Tasks under the gcloud build.
type NotifierConfig struct {
	PrimindTasksURL string
	QueueName       string

	GCloudProjectID  string
	GCloudLocationID string
	GCloudQueueID    string
	GCloudTargetURL  string

	MaxRetries int
}

func Load() (*Config, error) {
	loadDotEnv()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	redisConfig, err := LoadRedisConfig()
	if err != nil {
		return nil, err
	}

	departureConfig, err := LoadDepartureConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		TripSourceURL: os.Getenv("TRIP_SOURCE_URL"),
		Port:          port,
		LogLevel:      parseLogLevel(os.Getenv("LOG_LEVEL")),
		Notifier:      LoadNotifierConfig(),
		Redis:         redisConfig,
		Departure:     departureConfig,
		Store:         LoadStoreConfig(),
	}, nil
}

func LoadNotifierConfig() NotifierConfig {
	queueName := os.Getenv("NOTIFIER_QUEUE_NAME")
	if queueName == "" {
		queueName = "departure-alerts"
	}

	maxRetries := 3
	if v := os.Getenv("NOTIFIER_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			maxRetries = parsed
		}
	}

	return NotifierConfig{
		PrimindTasksURL: os.Getenv("PRIMIND_TASKS_URL"),
		QueueName:       queueName,

		GCloudProjectID:  os.Getenv("GCLOUD_PROJECT_ID"),
		GCloudLocationID: os.Getenv("GCLOUD_LOCATION_ID"),
		GCloudQueueID:    os.Getenv("GCLOUD_QUEUE_ID"),
		GCloudTargetURL:  os.Getenv("GCLOUD_TARGET_URL"),

		MaxRetries: maxRetries,
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
