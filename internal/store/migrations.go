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

CREATE TABLE IF NOT EXISTS statuses (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
	id          INTEGER PRIMARY KEY,
	name        TEXT NOT NULL,
	status_name TEXT NOT NULL DEFAULT '',
	date_start  TEXT NOT NULL DEFAULT '',
	date_end    TEXT NOT NULL DEFAULT '',
	budget      REAL NOT NULL DEFAULT 0,
	archived    INTEGER NOT NULL DEFAULT 0 CHECK(archived IN (0, 1)),
	team_id     INTEGER NOT NULL DEFAULT 0,
	fetched_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id          INTEGER PRIMARY KEY,
	project_id  INTEGER NOT NULL DEFAULT 0,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status_id   INTEGER NOT NULL DEFAULT 0,
	priority    TEXT NOT NULL DEFAULT '',
	price       REAL NOT NULL DEFAULT 0,
	duration    TEXT NOT NULL DEFAULT '',
	date_start  TEXT NOT NULL DEFAULT '',
	date_end    TEXT NOT NULL DEFAULT '',
	assignee    TEXT NOT NULL DEFAULT '',
	progress    INTEGER NOT NULL DEFAULT 0,
	fetched_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	task_id    TEXT NOT NULL DEFAULT '',
	severity   TEXT NOT NULL DEFAULT 'info',
	message    TEXT NOT NULL,
	read       INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tasks_status_id ON tasks(status_id);
CREATE INDEX IF NOT EXISTS idx_tasks_project_id ON tasks(project_id);
CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee);
CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read);
CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS timer_sessions (
	id               TEXT PRIMARY KEY,
	task_id          INTEGER NOT NULL,
	task_title       TEXT NOT NULL DEFAULT '',
	allotted_seconds INTEGER NOT NULL DEFAULT 0,
	extra_seconds    INTEGER NOT NULL DEFAULT 0,
	remaining_at_end INTEGER NOT NULL DEFAULT 0,
	progress         INTEGER NOT NULL DEFAULT 0,
	outcome          TEXT NOT NULL CHECK(outcome IN ('completed', 'abandoned')),
	started_at       DATETIME NOT NULL,
	ended_at         DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_timer_sessions_task_id ON timer_sessions(task_id);
CREATE INDEX IF NOT EXISTS idx_timer_sessions_ended ON timer_sessions(ended_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
