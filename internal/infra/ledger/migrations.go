package ledger

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations must stay ordered by version, starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS scheduled_notifications (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	event_id   TEXT NOT NULL,
	kind       TEXT NOT NULL,
	timing     TEXT NOT NULL,
	fire_at    DATETIME NOT NULL,
	state      TEXT NOT NULL,
	origin     TEXT NOT NULL DEFAULT 'reconcile',
	handle     TEXT NOT NULL DEFAULT '',
	title      TEXT NOT NULL DEFAULT '',
	body       TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scheduled_notifications_user
	ON scheduled_notifications (user_id, fire_at);

CREATE TABLE IF NOT EXISTS ledger_flags (
	user_id    TEXT PRIMARY KEY,
	degraded   INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
ALTER TABLE scheduled_notifications ADD COLUMN trip_id TEXT NOT NULL DEFAULT '';
ALTER TABLE scheduled_notifications ADD COLUMN rejected INTEGER NOT NULL DEFAULT 0;

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
