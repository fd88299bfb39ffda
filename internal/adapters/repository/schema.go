package repository

// Timestamps are stored as unix milliseconds.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS leads (
		id          TEXT PRIMARY KEY,
		first_name  TEXT NOT NULL DEFAULT '',
		last_name   TEXT NOT NULL DEFAULT '',
		email       TEXT NOT NULL DEFAULT '',
		company     TEXT NOT NULL DEFAULT '',
		phone       TEXT NOT NULL DEFAULT '',
		source      TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT '',
		assigned_to TEXT NOT NULL DEFAULT '',
		band        TEXT NOT NULL DEFAULT '',
		created_at  INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS contacts (
		id         TEXT PRIMARY KEY,
		first_name TEXT NOT NULL DEFAULT '',
		last_name  TEXT NOT NULL DEFAULT '',
		email      TEXT NOT NULL DEFAULT '',
		company    TEXT NOT NULL DEFAULT '',
		phone      TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL DEFAULT '',
		type       TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS interactions (
		id         TEXT PRIMARY KEY,
		contact_id TEXT NOT NULL,
		type       TEXT NOT NULL DEFAULT '',
		notes      TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_contact ON interactions(contact_id)`,
	`CREATE TABLE IF NOT EXISTS deals (
		id                  TEXT PRIMARY KEY,
		title               TEXT NOT NULL DEFAULT '',
		contact_id          TEXT NOT NULL DEFAULT '',
		value               REAL NOT NULL DEFAULT 0,
		stage               TEXT NOT NULL DEFAULT '',
		priority            TEXT NOT NULL DEFAULT '',
		status              TEXT NOT NULL DEFAULT 'OPEN',
		probability         REAL NOT NULL DEFAULT 0,
		expected_close_date INTEGER,
		actual_close_date   INTEGER,
		created_at          INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_deals_contact ON deals(contact_id)`,
	`CREATE INDEX IF NOT EXISTS idx_deals_status ON deals(status)`,
	`CREATE TABLE IF NOT EXISTS ab_tests (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		page_id       TEXT NOT NULL,
		variant_a     TEXT NOT NULL,
		variant_b     TEXT NOT NULL,
		traffic_split INTEGER NOT NULL DEFAULT 50,
		status        TEXT NOT NULL DEFAULT 'DRAFT',
		impressions_a INTEGER NOT NULL DEFAULT 0,
		impressions_b INTEGER NOT NULL DEFAULT 0,
		conversions_a INTEGER NOT NULL DEFAULT 0,
		conversions_b INTEGER NOT NULL DEFAULT 0,
		winner        TEXT NOT NULL DEFAULT '',
		confidence    INTEGER,
		start_date    INTEGER,
		end_date      INTEGER,
		created_by    TEXT NOT NULL DEFAULT '',
		created_at    INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ab_tests_page ON ab_tests(page_id, status)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_ab_tests_running_page ON ab_tests(page_id) WHERE status = 'RUNNING'`,
	`CREATE TABLE IF NOT EXISTS behavior_events (
		seq             INTEGER PRIMARY KEY AUTOINCREMENT,
		id              TEXT NOT NULL UNIQUE,
		session_id      TEXT NOT NULL,
		page_id         TEXT NOT NULL,
		page_url        TEXT NOT NULL DEFAULT '',
		event_type      TEXT NOT NULL,
		element         TEXT NOT NULL DEFAULT '',
		position_x      REAL,
		position_y      REAL,
		viewport_width  REAL,
		viewport_height REAL,
		ts              INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_behavior_page_ts ON behavior_events(page_id, ts)`,
	`CREATE INDEX IF NOT EXISTS idx_behavior_ts ON behavior_events(ts)`,
	`CREATE TABLE IF NOT EXISTS forecasts (
		id                TEXT PRIMARY KEY,
		period            TEXT NOT NULL UNIQUE,
		model             TEXT NOT NULL,
		predicted_revenue REAL NOT NULL,
		confidence        INTEGER NOT NULL,
		deal_count        INTEGER NOT NULL,
		avg_deal_size     REAL NOT NULL,
		win_rate          INTEGER NOT NULL,
		created_at        INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS lead_scores (
		entity_type     TEXT NOT NULL,
		entity_id       TEXT NOT NULL,
		score           INTEGER NOT NULL,
		grade           TEXT NOT NULL,
		breakdown       TEXT NOT NULL,
		factors         TEXT NOT NULL,
		last_calculated INTEGER NOT NULL,
		PRIMARY KEY (entity_type, entity_id)
	)`,
}
