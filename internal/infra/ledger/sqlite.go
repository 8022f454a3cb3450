package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
	"github.com/KasumiMercury/primind-departure-alerts/internal/observability/tracing"
)

// OpenSQLite opens (or creates) the database at path with WAL journaling. An in-memory
// database is pinned to a single connection so every query sees the same schema.
func OpenSQLite(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return db, nil
}

type notificationRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	EventID   string    `db:"event_id"`
	TripID    string    `db:"trip_id"`
	Kind      string    `db:"kind"`
	Timing    string    `db:"timing"`
	FireAt    time.Time `db:"fire_at"`
	State     string    `db:"state"`
	Origin    string    `db:"origin"`
	Handle    string    `db:"handle"`
	Rejected  bool      `db:"rejected"`
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func toRow(n domain.ScheduledNotification) notificationRow {
	return notificationRow{
		ID:        n.ID,
		UserID:    n.UserID,
		EventID:   n.EventID,
		TripID:    n.TripID,
		Kind:      n.Kind.String(),
		Timing:    n.Timing.String(),
		FireAt:    n.FireAt.UTC(),
		State:     n.State.String(),
		Origin:    string(n.Origin),
		Handle:    n.Handle,
		Rejected:  n.Rejected,
		Title:     n.Title,
		Body:      n.Body,
		CreatedAt: n.CreatedAt.UTC(),
		UpdatedAt: n.UpdatedAt.UTC(),
	}
}

func (r notificationRow) toDomain() domain.ScheduledNotification {
	return domain.ScheduledNotification{
		ID:        r.ID,
		UserID:    r.UserID,
		EventID:   r.EventID,
		TripID:    r.TripID,
		Kind:      domain.NotificationKind(r.Kind),
		Timing:    domain.ReminderTiming(r.Timing),
		FireAt:    r.FireAt.UTC(),
		State:     domain.NotificationState(r.State),
		Origin:    domain.Origin(r.Origin),
		Handle:    r.Handle,
		Rejected:  r.Rejected,
		Title:     r.Title,
		Body:      r.Body,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

// SQLiteLedger is the embedded ScheduleLedger used when no Redis is deployed.
type SQLiteLedger struct {
	db *sqlx.DB
}

// NewSQLiteLedger applies any pending schema migrations to db.
func NewSQLiteLedger(db *sqlx.DB) (*SQLiteLedger, error) {
	l := &SQLiteLedger{db: db}
	if err := l.runMigrations(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return l, nil
}

func (l *SQLiteLedger) DB() *sqlx.DB {
	return l.db
}

func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

func (l *SQLiteLedger) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := l.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = l.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := l.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

func (l *SQLiteLedger) ListByUser(ctx context.Context, userID string) ([]domain.ScheduledNotification, error) {
	ctx, span := tracing.StartStoreOperationSpan(ctx, "sqlite", "list_notifications", userID)
	defer span.End()

	var rows []notificationRow
	err := l.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, event_id, trip_id, kind, timing, fire_at, state, origin,
			handle, rejected, title, body, created_at, updated_at
		FROM scheduled_notifications
		WHERE user_id = ?
		ORDER BY fire_at, id`, userID)
	if err != nil {
		err = fmt.Errorf("listing notifications for %s: %w", userID, err)
		tracing.RecordError(span, err)
		return nil, err
	}

	notifications := make([]domain.ScheduledNotification, 0, len(rows))
	for _, r := range rows {
		notifications = append(notifications, r.toDomain())
	}

	tracing.RecordError(span, nil)
	return notifications, nil
}

func (l *SQLiteLedger) Get(ctx context.Context, userID, notificationID string) (domain.ScheduledNotification, error) {
	var row notificationRow
	err := l.db.GetContext(ctx, &row, `
		SELECT id, user_id, event_id, trip_id, kind, timing, fire_at, state, origin,
			handle, rejected, title, body, created_at, updated_at
		FROM scheduled_notifications
		WHERE user_id = ? AND id = ?`, userID, notificationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ScheduledNotification{}, domain.ErrNotificationNotFound
		}
		return domain.ScheduledNotification{}, fmt.Errorf("getting notification %s: %w", notificationID, err)
	}

	return row.toDomain(), nil
}

// Save upserts every notification in one transaction and drops the expired entries of
// the affected users.
func (l *SQLiteLedger) Save(ctx context.Context, notifications ...domain.ScheduledNotification) error {
	if len(notifications) == 0 {
		return nil
	}

	ctx, span := tracing.StartStoreOperationSpan(ctx, "sqlite", "save_notifications", notifications[0].UserID)
	defer span.End()

	err := l.save(ctx, notifications)
	tracing.RecordError(span, err)
	return err
}

func (l *SQLiteLedger) save(ctx context.Context, notifications []domain.ScheduledNotification) error {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO scheduled_notifications (
			id, user_id, event_id, trip_id, kind, timing, fire_at, state, origin,
			handle, rejected, title, body, created_at, updated_at
		) VALUES (
			:id, :user_id, :event_id, :trip_id, :kind, :timing, :fire_at, :state, :origin,
			:handle, :rejected, :title, :body, :created_at, :updated_at
		)
		ON CONFLICT(id) DO UPDATE SET
			fire_at = excluded.fire_at,
			state = excluded.state,
			handle = excluded.handle,
			rejected = excluded.rejected,
			title = excluded.title,
			body = excluded.body,
			updated_at = excluded.updated_at`

	users := make(map[string]bool)
	for _, n := range notifications {
		if n.UserID == "" {
			return ErrMissingUserID
		}
		if _, err := tx.NamedExecContext(ctx, query, toRow(n)); err != nil {
			return fmt.Errorf("upserting notification %s: %w", n.ID, err)
		}
		users[n.UserID] = true
	}

	cutoff := latestUpdate(notifications).Add(-domain.RetentionWindow)
	for userID := range users {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM scheduled_notifications
			WHERE user_id = ? AND state IN (?, ?) AND fire_at < ?`,
			userID, domain.StateCancelled.String(), domain.StateDelivered.String(), cutoff.UTC(),
		)
		if err != nil {
			return fmt.Errorf("pruning notifications for %s: %w", userID, err)
		}
	}

	return tx.Commit()
}

func (l *SQLiteLedger) SetDegraded(ctx context.Context, userID string, degraded bool) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO ledger_flags (user_id, degraded, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			degraded = excluded.degraded,
			updated_at = excluded.updated_at`,
		userID, degraded, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("setting degraded flag for %s: %w", userID, err)
	}
	return nil
}

func (l *SQLiteLedger) IsDegraded(ctx context.Context, userID string) (bool, error) {
	var degraded bool
	err := l.db.GetContext(ctx, &degraded, "SELECT degraded FROM ledger_flags WHERE user_id = ?", userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("reading degraded flag for %s: %w", userID, err)
	}
	return degraded, nil
}
