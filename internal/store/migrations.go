package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create interactions with FTS5",
		SQL: `
			CREATE TABLE interactions (
				id              TEXT PRIMARY KEY,
				timestamp       TEXT NOT NULL,
				query           TEXT NOT NULL,
				response        TEXT NOT NULL,
				total_queries   INTEGER NOT NULL DEFAULT 0,
				total_thoughts  INTEGER NOT NULL DEFAULT 0,
				total_actions   INTEGER NOT NULL DEFAULT 0,
				total_time_ns   INTEGER NOT NULL DEFAULT 0,
				context_window  TEXT NOT NULL DEFAULT '[]'
			);

			CREATE INDEX idx_interactions_timestamp ON interactions (timestamp);

			CREATE VIRTUAL TABLE interactions_fts USING fts5(
				query,
				response,
				content='interactions',
				content_rowid='rowid'
			);

			CREATE TRIGGER interactions_ai AFTER INSERT ON interactions BEGIN
				INSERT INTO interactions_fts(rowid, query, response)
				VALUES (new.rowid, new.query, new.response);
			END;

			CREATE TRIGGER interactions_ad AFTER DELETE ON interactions BEGIN
				INSERT INTO interactions_fts(interactions_fts, rowid, query, response)
				VALUES ('delete', old.rowid, old.query, old.response);
			END;
		`,
	},
	{
		Version: 2,
		Name:    "create email drafts",
		SQL: `
			CREATE TABLE email_drafts (
				seq         INTEGER PRIMARY KEY AUTOINCREMENT,
				to_addr     TEXT NOT NULL DEFAULT '',
				subject     TEXT NOT NULL DEFAULT '',
				body        TEXT NOT NULL DEFAULT '',
				created_at  TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at  TEXT NOT NULL DEFAULT (datetime('now')),
				sent_at     TEXT,
				message_id  TEXT
			);
		`,
	},
}
