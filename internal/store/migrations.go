package store

// migration holds a single schema migration with its target version
// and SQL.
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

CREATE TABLE IF NOT EXISTS projects (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	notes         TEXT NOT NULL DEFAULT '',
	pattern_url   TEXT NOT NULL DEFAULT '',
	last_modified DATETIME NOT NULL,
	timer         TEXT NOT NULL DEFAULT '{}',
	main_counter  TEXT NOT NULL,
	sub_counters  TEXT NOT NULL DEFAULT '[]',
	history       TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_projects_last_modified ON projects(last_modified);

CREATE TABLE IF NOT EXISTS session (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
