// Package domain — engagement types.
// Streaks, achievement catalog entries, parsed criteria, user stats
// snapshots, and the reward-timing context/decision pair.
package domain

import "time"

// ─── Streak Types ───────────────────────────────────────────────────────────

// Streak tracks consecutive workout days for one user.
// current_streak resets to 1 after a missed day, increments when the
// prior workout was exactly one calendar day earlier, and is untouched
// by additional sessions on an already-counted day.
type Streak struct {
	UserID          string    `json:"user_id"`
	CurrentStreak   int       `json:"current_streak"`
	LongestStreak   int       `json:"longest_streak"`
	LastWorkoutDate time.Time `json:"last_workout_date"` // UTC midnight
}

// DefaultMilestones are the streak lengths worth celebrating.
// Product-tuned; overridable via the [engagement] config section.
func DefaultMilestones() []int {
	return []int{1, 3, 7, 14, 30, 60, 100}
}

// MilestoneEvent fires when a streak transition lands exactly on a
// milestone value. It never fires for values between milestones or on
// a later save with the same streak.
type MilestoneEvent struct {
	UserID string `json:"user_id"`
	Days   int    `json:"days"`
	First  bool   `json:"first"` // true for the very first session ever
}

// ─── Achievement Types ──────────────────────────────────────────────────────

// Rarity grades achievements for display.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// CatalogEntry is a static achievement definition. Criteria is
// free text, parsed at evaluation time by the criteria package.
type CatalogEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Criteria string `json:"criteria"`
	Rarity   Rarity `json:"rarity"`
	Points   int    `json:"points"`
}

// UserAchievement records an unlock. At most one row exists per
// (user, achievement) pair; existence is the unlock signal.
type UserAchievement struct {
	UserID          string    `json:"user_id"`
	AchievementID   string    `json:"achievement_id"`
	AchievementName string    `json:"achievement_name"`
	EarnedAt        time.Time `json:"earned_at"`
	Metadata        string    `json:"metadata,omitempty"`
}

// CriteriaType tags a parsed criteria descriptor.
type CriteriaType string

const (
	CriteriaSessionCount     CriteriaType = "session_count"
	CriteriaStreak           CriteriaType = "streak"
	CriteriaDurationMax      CriteriaType = "duration_max"
	CriteriaDurationMin      CriteriaType = "duration_min"
	CriteriaCategoryCount    CriteriaType = "category_count"
	CriteriaCategoryStreak   CriteriaType = "category_streak"
	CriteriaCategoryDuration CriteriaType = "category_duration"
	CriteriaTimeOfDay        CriteriaType = "time_of_day"
	CriteriaSpecialDate      CriteriaType = "special_date"
	CriteriaLevelGate        CriteriaType = "level_gate"
	CriteriaSocial           CriteriaType = "social"
	CriteriaMomentum         CriteriaType = "momentum"
	CriteriaCategorySpread   CriteriaType = "category_spread"
	CriteriaMastery          CriteriaType = "mastery"
	CriteriaAccountAge       CriteriaType = "account_age"
	CriteriaConsistency      CriteriaType = "consistency"
	CriteriaUnknown          CriteriaType = "unknown"
)

// Special calendar dates recognized by the parser.
const (
	DateLeapDay    = "leap_day"
	DateFriday13   = "friday_13"
	DateEclipse    = "eclipse"
	DatePalindrome = "palindrome"
)

// Social action kinds recognized by the parser.
const (
	SocialCheersSent     = "cheers_sent"
	SocialCheersReceived = "cheers_received"
	SocialFriends        = "friends"
)

// ParsedCriteria is the structured descriptor produced from a catalog
// entry's criteria text. It is ephemeral — never persisted, recomputed
// on each evaluation pass.
type ParsedCriteria struct {
	Type CriteriaType `json:"type"`

	Count    int    `json:"count,omitempty"`    // session counts, thresholds
	Days     int    `json:"days,omitempty"`     // streak length
	Seconds  int    `json:"seconds,omitempty"`  // duration thresholds
	Minutes  int    `json:"minutes,omitempty"`  // lifetime category duration
	Category string `json:"category,omitempty"` // exercise scope
	Before   int    `json:"before,omitempty"`   // time-of-day: hour bound (exclusive), -1 when unset
	After    int    `json:"after,omitempty"`    // time-of-day: hour bound (inclusive), -1 when unset
	Date     string `json:"date,omitempty"`     // special calendar date kind
	Level    int    `json:"level,omitempty"`    // level gate / mastery level
	Social   string `json:"social,omitempty"`   // social action kind
	Score    int    `json:"score,omitempty"`    // momentum threshold
	Spread   int    `json:"spread,omitempty"`   // distinct categories
	PerWeek  int    `json:"per_week,omitempty"` // consistency: days per week
	Weeks    int    `json:"weeks,omitempty"`    // consistency: week span
	Years    int    `json:"years,omitempty"`    // account age gate

	Raw          string `json:"raw,omitempty"`
	NeedsReview  bool   `json:"needs_review,omitempty"`
	ReviewReason string `json:"review_reason,omitempty"`
}

// UserStats is the aggregate snapshot achievement predicates evaluate
// against. Rebuilt from fresh queries on every evaluation pass.
type UserStats struct {
	TotalSessions        int             `json:"total_sessions"`
	TotalDurationSeconds int             `json:"total_duration_seconds"`
	LongestSessionSecs   int             `json:"longest_session_seconds"`
	ShortestSessionSecs  int             `json:"shortest_session_seconds"`
	CurrentStreak        int             `json:"current_streak"`
	LongestStreak        int             `json:"longest_streak"`
	CategoryCounts       map[string]int  `json:"category_counts"`
	CategorySeconds      map[string]int  `json:"category_seconds"`
	CategoryStreaks      map[string]int  `json:"category_streaks"`
	HourCounts           [24]int         `json:"hour_counts"`
	SpecialDates         map[string]bool `json:"special_dates"`
	CheersSent           int             `json:"cheers_sent"`
	CheersReceived       int             `json:"cheers_received"`
	Friends              int             `json:"friends"`
	Level                int             `json:"level"`
	MomentumScore        int             `json:"momentum_score"`
	WeeklyDayCounts      []int           `json:"weekly_day_counts"` // workout days per ISO week, newest first
	AccountAgeDays       int             `json:"account_age_days"`
	MaxSessionAgeDays    int             `json:"max_session_age_days"` // joined_at → latest session
}

// SessionsBefore returns how many sessions completed strictly before
// the given hour.
func (s UserStats) SessionsBefore(hour int) int {
	n := 0
	for h := 0; h < hour && h < 24; h++ {
		n += s.HourCounts[h]
	}
	return n
}

// SessionsAtOrAfter returns how many sessions completed at or after
// the given hour.
func (s UserStats) SessionsAtOrAfter(hour int) int {
	n := 0
	for h := hour; h < 24; h++ {
		if h >= 0 {
			n += s.HourCounts[h]
		}
	}
	return n
}

// MasteryLevel derives a per-category mastery level: one level per ten
// completed sessions in that category.
func (s UserStats) MasteryLevel(category string) int {
	return s.CategoryCounts[category] / 10
}

// DistinctCategories counts categories with at least one session.
func (s UserStats) DistinctCategories() int {
	n := 0
	for _, c := range s.CategoryCounts {
		if c > 0 {
			n++
		}
	}
	return n
}

// ConsistentWeeks returns how many of the most recent weeks had at
// least perWeek workout days, stopping at the first miss.
func (s UserStats) ConsistentWeeks(perWeek int) int {
	n := 0
	for _, days := range s.WeeklyDayCounts {
		if days < perWeek {
			break
		}
		n++
	}
	return n
}
