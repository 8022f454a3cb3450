//go:build !gcloud

package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// loadDotEnv reads DOTENV_PATH (default .env) into the process environment. Variables
// that are already set win.
func loadDotEnv() {
	path := os.Getenv("DOTENV_PATH")
	if path == "" {
		path = ".env"
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		slog.Warn("failed to load env file", slog.String("path", path), slog.String("error", err.Error()))
	}
}

func (c *NotifierConfig) Validate() error {
	return nil
}
