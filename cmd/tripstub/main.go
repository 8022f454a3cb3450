// Command tripstub serves an in-memory trip source for local runs and load tests.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-departure-alerts/internal/infra/tripsource/stub"
	"github.com/KasumiMercury/primind-departure-alerts/internal/observability/logging"
	"github.com/KasumiMercury/primind-departure-alerts/internal/observability/middleware"
)

func main() {
	slog.SetDefault(slog.New(logging.NewHandler(logging.Config{
		Service:       logging.ServiceInfo{Name: "tripstub"},
		Environment:   logging.EnvDev,
		DefaultModule: logging.Module("tripstub"),
	})))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.PanicRecoveryGin())
	stub.NewHandler(stub.NewStorage()).Register(r)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting trip source stub", slog.String("port", port))
		serverErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown stub", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("stub exited with error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
}
