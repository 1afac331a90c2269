package engagement

import (
	"fmt"
	"strconv"
	"time"

	"github.com/planka-fit/planka/internal/domain"
	"github.com/planka-fit/planka/internal/infra/sqlite"
)

// eclipseDates is the fixed set of solar eclipse dates the "eclipse"
// criteria recognizes, as UTC calendar dates.
var eclipseDates = map[string]bool{
	"2024-04-08": true,
	"2024-10-02": true,
	"2025-03-29": true,
	"2025-09-21": true,
	"2026-02-17": true,
	"2026-08-12": true,
	"2027-02-06": true,
	"2027-08-02": true,
}

// BuildStats assembles a fresh UserStats snapshot from the user's full
// session history plus social counters and profile state. Single pass
// over already-queried rows; nothing is cached between evaluations.
func BuildStats(db *sqlite.DB, userID string, now time.Time) (domain.UserStats, error) {
	stats := domain.UserStats{
		CategoryCounts:  make(map[string]int),
		CategorySeconds: make(map[string]int),
		CategoryStreaks: make(map[string]int),
		SpecialDates:    make(map[string]bool),
	}

	sessions, err := db.ListSessions(userID) // newest first
	if err != nil {
		return stats, fmt.Errorf("list sessions: %w", err)
	}

	categoryDays := make(map[string]map[time.Time]bool)
	weekDays := make(map[string]map[time.Time]bool) // ISO week → workout days
	var latest time.Time

	for i, sess := range sessions {
		stats.TotalSessions++
		stats.TotalDurationSeconds += sess.DurationSeconds
		if sess.DurationSeconds > stats.LongestSessionSecs {
			stats.LongestSessionSecs = sess.DurationSeconds
		}
		if i == 0 || sess.DurationSeconds < stats.ShortestSessionSecs {
			stats.ShortestSessionSecs = sess.DurationSeconds
		}

		stats.CategoryCounts[sess.Exercise]++
		stats.CategorySeconds[sess.Exercise] += sess.DurationSeconds

		t := sess.CompletedAt.UTC()
		stats.HourCounts[t.Hour()]++
		markSpecialDates(stats.SpecialDates, t)

		day := sess.Day()
		if categoryDays[sess.Exercise] == nil {
			categoryDays[sess.Exercise] = make(map[time.Time]bool)
		}
		categoryDays[sess.Exercise][day] = true

		wk := isoWeek(day)
		if weekDays[wk] == nil {
			weekDays[wk] = make(map[time.Time]bool)
		}
		weekDays[wk][day] = true

		if t.After(latest) {
			latest = t
		}
	}

	for cat, days := range categoryDays {
		stats.CategoryStreaks[cat] = longestRun(days)
	}

	// Weekly day counts, newest first, anchored at the week of the
	// most recent session. Stops after half a year of lookback.
	if !latest.IsZero() {
		week := domain.DateOf(latest)
		for i := 0; i < 26; i++ {
			stats.WeeklyDayCounts = append(stats.WeeklyDayCounts, len(weekDays[isoWeek(week)]))
			week = week.AddDate(0, 0, -7)
		}
	}

	// Momentum: this week's sessions weigh 10 points each plus one
	// point per minute held.
	thisWeek := isoWeek(domain.DateOf(now))
	weekStart := startOfISOWeek(domain.DateOf(now))
	for _, sess := range sessions {
		if isoWeek(sess.Day()) == thisWeek && !sess.Day().Before(weekStart) {
			stats.MomentumScore += 10 + sess.DurationSeconds/60
		}
	}

	social, err := db.GetSocialCounters(userID)
	if err != nil {
		return stats, fmt.Errorf("social counters: %w", err)
	}
	stats.CheersSent = social.CheersSent
	stats.CheersReceived = social.CheersReceived
	stats.Friends = social.Friends

	streak, err := db.GetStreak(userID)
	if err != nil {
		return stats, fmt.Errorf("streak: %w", err)
	}
	if streak != nil {
		stats.CurrentStreak = streak.CurrentStreak
		stats.LongestStreak = streak.LongestStreak
	}

	if lvl, err := db.GetProfile(userID, "level"); err != nil {
		return stats, fmt.Errorf("profile level: %w", err)
	} else if lvl != "" {
		stats.Level, _ = strconv.Atoi(lvl)
	}

	joined := joinDate(db, userID, sessions)
	if !joined.IsZero() {
		stats.AccountAgeDays = int(domain.DateOf(now).Sub(joined).Hours() / 24)
		if !latest.IsZero() {
			stats.MaxSessionAgeDays = int(domain.DateOf(latest).Sub(joined).Hours() / 24)
		}
	}

	return stats, nil
}

// joinDate reads joined_at from the profile KV, falling back to the
// date of the oldest session.
func joinDate(db *sqlite.DB, userID string, sessions []domain.Session) time.Time {
	if v, err := db.GetProfile(userID, "joined_at"); err == nil && v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return domain.DateOf(t)
		}
	}
	if len(sessions) > 0 {
		return sessions[len(sessions)-1].Day() // oldest (list is newest first)
	}
	return time.Time{}
}

func markSpecialDates(flags map[string]bool, t time.Time) {
	if t.Month() == time.February && t.Day() == 29 {
		flags[domain.DateLeapDay] = true
	}
	if t.Weekday() == time.Friday && t.Day() == 13 {
		flags[domain.DateFriday13] = true
	}
	if eclipseDates[t.Format("2006-01-02")] {
		flags[domain.DateEclipse] = true
	}
	if isPalindrome(t.Format("20060102")) {
		flags[domain.DatePalindrome] = true
	}
}

func isPalindrome(s string) bool {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		if s[i] != s[j] {
			return false
		}
	}
	return true
}

// longestRun returns the longest consecutive-day run in a day set.
func longestRun(days map[time.Time]bool) int {
	best := 0
	for day := range days {
		if days[day.AddDate(0, 0, -1)] {
			continue // not a run start
		}
		n := 0
		for d := day; days[d]; d = d.AddDate(0, 0, 1) {
			n++
		}
		if n > best {
			best = n
		}
	}
	return best
}

// isoWeek returns "YYYY-Www" for the given time.
func isoWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// startOfISOWeek returns the Monday starting the ISO week containing t.
func startOfISOWeek(t time.Time) time.Time {
	t = domain.DateOf(t)
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	return t.AddDate(0, 0, -offset)
}
