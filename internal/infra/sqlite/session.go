package sqlite

import (
	"database/sql"
	"time"

	"github.com/planka-fit/planka/internal/domain"
)

// ─── Sessions ───────────────────────────────────────────────────────────────

// InsertSession appends a completed workout to the history.
func (d *DB) InsertSession(s domain.Session) error {
	_, err := d.db.Exec(
		`INSERT INTO sessions (id, user_id, exercise, duration_seconds, completed_at, notes)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.Exercise, s.DurationSeconds, s.CompletedAt.Unix(), s.Notes,
	)
	return err
}

// GetSession retrieves a single session by ID.
func (d *DB) GetSession(id string) (*domain.Session, error) {
	row := d.db.QueryRow(
		`SELECT id, user_id, exercise, duration_seconds, completed_at, notes
		 FROM sessions WHERE id = ?`, id,
	)
	return scanSession(row)
}

// ListSessions returns a user's full history, newest first.
func (d *DB) ListSessions(userID string) ([]domain.Session, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, exercise, duration_seconds, completed_at, notes
		 FROM sessions WHERE user_id = ? ORDER BY completed_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// AppendSessionNote appends feedback text to a session's notes.
// Sessions are otherwise immutable.
func (d *DB) AppendSessionNote(id, note string) error {
	result, err := d.db.Exec(
		`UPDATE sessions
		 SET notes = CASE WHEN notes = '' THEN ? ELSE notes || char(10) || ? END
		 WHERE id = ?`,
		note, note, id,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// SessionCount returns the total number of sessions for a user.
func (d *DB) SessionCount(userID string) (int, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM sessions WHERE user_id = ?`, userID,
	).Scan(&count)
	return count, err
}

// SessionCountSince counts a user's sessions completed at or after t.
func (d *DB) SessionCountSince(userID string, t time.Time) (int, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM sessions WHERE user_id = ? AND completed_at >= ?`,
		userID, t.Unix(),
	).Scan(&count)
	return count, err
}

// LastSessionTime returns the most recent completed_at for a user, or
// the zero time if they have no sessions.
func (d *DB) LastSessionTime(userID string) (time.Time, error) {
	var ts sql.NullInt64
	err := d.db.QueryRow(
		`SELECT MAX(completed_at) FROM sessions WHERE user_id = ?`, userID,
	).Scan(&ts)
	if err != nil {
		return time.Time{}, err
	}
	if !ts.Valid {
		return time.Time{}, nil
	}
	return time.Unix(ts.Int64, 0).UTC(), nil
}

// ActiveUserIDs returns users with at least one session since t.
func (d *DB) ActiveUserIDs(since time.Time) ([]string, error) {
	rows, err := d.db.Query(
		`SELECT DISTINCT user_id FROM sessions WHERE completed_at >= ?`, since.Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanSession(s scanner) (*domain.Session, error) {
	var sess domain.Session
	var completedAt int64

	err := s.Scan(&sess.ID, &sess.UserID, &sess.Exercise,
		&sess.DurationSeconds, &completedAt, &sess.Notes)
	if err == sql.ErrNoRows {
		return nil, nil // Not found, no error
	}
	if err != nil {
		return nil, err
	}

	sess.CompletedAt = time.Unix(completedAt, 0).UTC()
	return &sess, nil
}
