// Package sqlite provides SQLite-based persistent storage for Planka.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/planka.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "planka.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Workout history. Append-only; notes may gain feedback text.
		`CREATE TABLE IF NOT EXISTS sessions (
			id               TEXT PRIMARY KEY,
			user_id          TEXT NOT NULL,
			exercise         TEXT NOT NULL,
			duration_seconds INTEGER NOT NULL,
			completed_at     INTEGER NOT NULL,
			notes            TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id, completed_at)`,

		// One streak row per user.
		`CREATE TABLE IF NOT EXISTS streaks (
			user_id           TEXT PRIMARY KEY,
			current_streak    INTEGER NOT NULL,
			longest_streak    INTEGER NOT NULL,
			last_workout_date TEXT NOT NULL
		)`,

		// Unlocked achievements. The composite primary key is the
		// at-most-once guarantee: awards go through INSERT OR IGNORE.
		`CREATE TABLE IF NOT EXISTS user_achievements (
			user_id          TEXT NOT NULL,
			achievement_id   TEXT NOT NULL,
			achievement_name TEXT NOT NULL,
			earned_at        INTEGER NOT NULL,
			metadata         TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (user_id, achievement_id)
		)`,

		// Sent rewards, for cooldown and daily/weekly cap checks.
		`CREATE TABLE IF NOT EXISTS reward_log (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id     TEXT NOT NULL,
			reward_type TEXT NOT NULL,
			sent_at     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rewards_user ON reward_log(user_id, sent_at)`,

		// Social activity counters feeding the social criteria.
		`CREATE TABLE IF NOT EXISTS social_counters (
			user_id         TEXT PRIMARY KEY,
			cheers_sent     INTEGER NOT NULL DEFAULT 0,
			cheers_received INTEGER NOT NULL DEFAULT 0,
			friends         INTEGER NOT NULL DEFAULT 0
		)`,

		// Per-user key-value store (level, xp, joined_at).
		`CREATE TABLE IF NOT EXISTS profile (
			user_id TEXT NOT NULL,
			key     TEXT NOT NULL,
			value   TEXT NOT NULL,
			PRIMARY KEY (user_id, key)
		)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
