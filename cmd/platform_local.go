//go:build !gcloud

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/KasumiMercury/primind-departure-alerts/internal/config"
	"github.com/KasumiMercury/primind-departure-alerts/internal/infra/notifier"
	"github.com/KasumiMercury/primind-departure-alerts/internal/observability"
	"github.com/KasumiMercury/primind-departure-alerts/internal/observability/logging"
)

func initNotifier(_ context.Context, cfg *config.Config) (notifier.Facility, func() error, error) {
	if cfg.Notifier.PrimindTasksURL == "" {
		slog.Warn("PRIMIND_TASKS_URL not set, notifications are logged and dropped")

		return notifier.NewLogFacility(), nil, nil
	}

	facility := notifier.NewPrimindTasksClient(
		cfg.Notifier.PrimindTasksURL,
		cfg.Notifier.QueueName,
		cfg.Notifier.MaxRetries,
	)

	slog.Info("notification facility initialized",
		slog.String("type", "primind_tasks"),
		slog.String("url", cfg.Notifier.PrimindTasksURL),
		slog.String("queue", cfg.Notifier.QueueName),
	)

	return facility, nil, nil
}

func initObservability(ctx context.Context) (*observability.Resources, error) {
	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "departure-alerts"
	}

	env := logging.EnvDev
	if e := os.Getenv("ENV"); e != "" {
		env = logging.Environment(e)
	}

	return observability.Init(ctx, observability.Config{
		ServiceInfo: logging.ServiceInfo{
			Name:    serviceName,
			Version: Version,
		},
		Environment:   env,
		SamplingRate:  1.0,
		DefaultModule: moduleName,
	})
}
