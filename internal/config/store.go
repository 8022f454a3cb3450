package config

import (
	"os"
	"strings"
)

const (
	PreferenceBackendRedis = "redis"
	PreferenceBackendFile  = "file"

	LedgerBackendRedis  = "redis"
	LedgerBackendSQLite = "sqlite"
)

type StoreConfig struct {
	PreferenceBackend string
	PreferenceDir     string
	LedgerBackend     string
	LedgerSQLitePath  string
}

func LoadStoreConfig() *StoreConfig {
	return &StoreConfig{
		PreferenceBackend: backendOrDefault(os.Getenv("PREFERENCE_STORE"), PreferenceBackendRedis),
		PreferenceDir:     getEnvOrDefault("PREFERENCE_DIR", "./data/preferences"),
		LedgerBackend:     backendOrDefault(os.Getenv("LEDGER_STORE"), LedgerBackendRedis),
		LedgerSQLitePath:  getEnvOrDefault("LEDGER_SQLITE_PATH", "./data/ledger.db"),
	}
}

func (c *StoreConfig) Validate() error {
	switch c.PreferenceBackend {
	case PreferenceBackendRedis:
	case PreferenceBackendFile:
		if c.PreferenceDir == "" {
			return ErrPreferenceDirMissing
		}
	default:
		return ErrUnknownPreferenceBackend
	}

	switch c.LedgerBackend {
	case LedgerBackendRedis:
	case LedgerBackendSQLite:
		if c.LedgerSQLitePath == "" {
			return ErrLedgerSQLitePathMissing
		}
	default:
		return ErrUnknownLedgerBackend
	}

	return nil
}

// UsesRedis reports whether any configured backend needs a Redis connection.
func (c *StoreConfig) UsesRedis() bool {
	return c.PreferenceBackend == PreferenceBackendRedis || c.LedgerBackend == LedgerBackendRedis
}

func backendOrDefault(v, fallback string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return fallback
	}
	return v
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
