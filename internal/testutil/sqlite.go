package testutil

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SetupSQLite opens an in-memory database pinned to one connection and closes it when
// the test completes.
func SetupSQLite(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening sqlite db: %v", err)
	}
	db.SetMaxOpenConns(1)

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("closing sqlite db: %v", err)
		}
	})

	return db
}
