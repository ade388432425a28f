package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id                TEXT PRIMARY KEY,
	type              TEXT NOT NULL,
	read              INTEGER NOT NULL DEFAULT 0,
	conversation_id   TEXT NOT NULL DEFAULT '',
	conversation_type TEXT NOT NULL DEFAULT '',
	conversation_name TEXT NOT NULL DEFAULT '',
	actor_id          TEXT NOT NULL DEFAULT '',
	actor_name        TEXT NOT NULL DEFAULT '',
	actor_image_url   TEXT NOT NULL DEFAULT '',
	profile_id        TEXT NOT NULL DEFAULT '',
	created_at        DATETIME NOT NULL,
	fetched_at        DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_conversation
	ON notifications(conversation_id);
CREATE INDEX IF NOT EXISTS idx_notifications_read
	ON notifications(read);

CREATE TABLE IF NOT EXISTS profile (
	id         TEXT PRIMARY KEY,
	first_name TEXT NOT NULL DEFAULT '',
	last_name  TEXT NOT NULL DEFAULT '',
	image_url  TEXT NOT NULL DEFAULT '',
	fetched_at DATETIME NOT NULL
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
