package sqlite

import (
	"database/sql"
	"time"

	"github.com/planka-fit/planka/internal/domain"
)

const dateLayout = "2006-01-02"

// ─── Streaks ────────────────────────────────────────────────────────────────

// GetStreak returns the streak row for a user, or nil if none exists.
func (d *DB) GetStreak(userID string) (*domain.Streak, error) {
	var s domain.Streak
	var lastDate string
	err := d.db.QueryRow(
		`SELECT user_id, current_streak, longest_streak, last_workout_date
		 FROM streaks WHERE user_id = ?`, userID,
	).Scan(&s.UserID, &s.CurrentStreak, &s.LongestStreak, &lastDate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.LastWorkoutDate, err = time.ParseInLocation(dateLayout, lastDate, time.UTC)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpsertStreak writes a user's streak row.
func (d *DB) UpsertStreak(s domain.Streak) error {
	_, err := d.db.Exec(
		`INSERT INTO streaks (user_id, current_streak, longest_streak, last_workout_date)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			current_streak=excluded.current_streak,
			longest_streak=excluded.longest_streak,
			last_workout_date=excluded.last_workout_date`,
		s.UserID, s.CurrentStreak, s.LongestStreak, s.LastWorkoutDate.Format(dateLayout),
	)
	return err
}

// ─── Achievements ───────────────────────────────────────────────────────────

// AwardAchievement records an unlock. Returns false if the user already
// owns it — the composite primary key enforces at-most-once, so
// concurrent evaluations cannot double-award.
func (d *DB) AwardAchievement(a domain.UserAchievement) (bool, error) {
	result, err := d.db.Exec(
		`INSERT OR IGNORE INTO user_achievements
		 (user_id, achievement_id, achievement_name, earned_at, metadata)
		 VALUES (?, ?, ?, ?, ?)`,
		a.UserID, a.AchievementID, a.AchievementName, a.EarnedAt.Unix(), a.Metadata,
	)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil // true = newly unlocked
}

// HasAchievement checks whether a user owns an achievement.
func (d *DB) HasAchievement(userID, achievementID string) (bool, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM user_achievements WHERE user_id = ? AND achievement_id = ?`,
		userID, achievementID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListAchievements returns a user's unlocks, newest first.
func (d *DB) ListAchievements(userID string) ([]domain.UserAchievement, error) {
	rows, err := d.db.Query(
		`SELECT user_id, achievement_id, achievement_name, earned_at, metadata
		 FROM user_achievements WHERE user_id = ? ORDER BY earned_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var achievements []domain.UserAchievement
	for rows.Next() {
		var a domain.UserAchievement
		var earnedAt int64
		if err := rows.Scan(&a.UserID, &a.AchievementID, &a.AchievementName, &earnedAt, &a.Metadata); err != nil {
			return nil, err
		}
		a.EarnedAt = time.Unix(earnedAt, 0).UTC()
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

// AchievementCount returns how many achievements a user has unlocked.
func (d *DB) AchievementCount(userID string) (int, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM user_achievements WHERE user_id = ?`, userID,
	).Scan(&count)
	return count, err
}

// ─── Reward Log ─────────────────────────────────────────────────────────────

// LogReward records a sent reward.
func (d *DB) LogReward(userID, rewardType string, at time.Time) (int64, error) {
	result, err := d.db.Exec(
		`INSERT INTO reward_log (user_id, reward_type, sent_at) VALUES (?, ?, ?)`,
		userID, rewardType, at.Unix(),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListRewards returns a user's sent rewards, newest first, capped at
// limit (unlimited when limit <= 0).
func (d *DB) ListRewards(userID string, limit int) ([]domain.RewardLogEntry, error) {
	if limit <= 0 {
		limit = -1 // sqlite: LIMIT -1 means no limit
	}
	rows, err := d.db.Query(
		`SELECT id, user_id, reward_type, sent_at
		 FROM reward_log WHERE user_id = ? ORDER BY sent_at DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rewards []domain.RewardLogEntry
	for rows.Next() {
		var e domain.RewardLogEntry
		var sentAt int64
		if err := rows.Scan(&e.ID, &e.UserID, &e.RewardType, &sentAt); err != nil {
			return nil, err
		}
		e.SentAt = time.Unix(sentAt, 0).UTC()
		rewards = append(rewards, e)
	}
	return rewards, rows.Err()
}

// RewardCountSince counts rewards sent to a user at or after t.
func (d *DB) RewardCountSince(userID string, t time.Time) (int, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM reward_log WHERE user_id = ? AND sent_at >= ?`,
		userID, t.Unix(),
	).Scan(&count)
	return count, err
}

// LastRewardTime returns when a user last received a reward, or the
// zero time if never.
func (d *DB) LastRewardTime(userID string) (time.Time, error) {
	var ts sql.NullInt64
	err := d.db.QueryRow(
		`SELECT MAX(sent_at) FROM reward_log WHERE user_id = ?`, userID,
	).Scan(&ts)
	if err != nil {
		return time.Time{}, err
	}
	if !ts.Valid {
		return time.Time{}, nil
	}
	return time.Unix(ts.Int64, 0).UTC(), nil
}

// ─── Social Counters ────────────────────────────────────────────────────────

// IncrementSocial bumps one of cheers_sent, cheers_received, friends.
// The column argument is validated by the caller.
func (d *DB) IncrementSocial(userID, column string, delta int) error {
	// column comes from a fixed set in the API layer, never user input
	_, err := d.db.Exec(
		`INSERT INTO social_counters (user_id, `+column+`) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET `+column+` = `+column+` + excluded.`+column,
		userID, delta,
	)
	return err
}

// GetSocialCounters returns a user's social counters (zeroes if absent).
func (d *DB) GetSocialCounters(userID string) (domain.SocialCounters, error) {
	c := domain.SocialCounters{UserID: userID}
	err := d.db.QueryRow(
		`SELECT cheers_sent, cheers_received, friends FROM social_counters WHERE user_id = ?`,
		userID,
	).Scan(&c.CheersSent, &c.CheersReceived, &c.Friends)
	if err == sql.ErrNoRows {
		return c, nil
	}
	return c, err
}

// ─── Profile KV ─────────────────────────────────────────────────────────────

// SetProfile stores a per-user key-value pair.
func (d *DB) SetProfile(userID, key, value string) error {
	_, err := d.db.Exec(
		`INSERT INTO profile (user_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, key) DO UPDATE SET value=excluded.value`,
		userID, key, value,
	)
	return err
}

// GetProfile retrieves a per-user value. Returns "" if key not found.
func (d *DB) GetProfile(userID, key string) (string, error) {
	var value string
	err := d.db.QueryRow(
		`SELECT value FROM profile WHERE user_id = ? AND key = ?`, userID, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}
