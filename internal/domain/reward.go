package domain

import "time"

// ─── Reward Timing ──────────────────────────────────────────────────────────

// Engagement tiers for the reward-timing heuristic.
const (
	EngagementLow    = "low"
	EngagementMedium = "medium"
	EngagementHigh   = "high"
)

// Reward types, in rule order.
const (
	RewardComebackEncourage = "comeback_encourage"
	RewardMilestoneNudge    = "milestone_nudge"
	RewardStreakBoost       = "streak_boost"
	RewardSurpriseXP        = "surprise_xp"
)

// Priorities attached to reward decisions.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// RewardContext is the snapshot the reward-timing decision consumes.
// Gathered fresh per check; the decision function holds no state.
type RewardContext struct {
	TimeOfDay            string    `json:"time_of_day"` // morning/afternoon/evening/night
	DaysSinceLastWorkout int       `json:"days_since_last_workout"`
	CurrentStreak        int       `json:"current_streak"`
	RecentEngagement     string    `json:"recent_engagement"`
	LastRewardTime       time.Time `json:"last_reward_time"`
	WeeklySessionCount   int       `json:"weekly_session_count"`
}

// RewardDecision is the outcome of one reward-timing evaluation.
type RewardDecision struct {
	ShouldSendReward bool   `json:"should_send_reward"`
	RewardType       string `json:"reward_type,omitempty"`
	Priority         string `json:"priority,omitempty"`
	DelayMinutes     int    `json:"delay_minutes,omitempty"`
	Message          string `json:"message,omitempty"`
	XPAmount         int    `json:"xp_amount,omitempty"`
}

// RewardPolicy holds the tunable constants of the reward heuristic.
// The defaults match production tuning; everything here is
// configuration, not behavior (see DESIGN.md).
type RewardPolicy struct {
	CooldownMinutes     int   `json:"cooldown_minutes" toml:"cooldown_minutes"`
	ComebackMinDays     int   `json:"comeback_min_days" toml:"comeback_min_days"`
	ComebackMaxDays     int   `json:"comeback_max_days" toml:"comeback_max_days"`
	MilestoneNudges     []int `json:"milestone_nudges" toml:"milestone_nudges"`
	BoostMinStreak      int   `json:"boost_min_streak" toml:"boost_min_streak"`
	BoostMinWeekly      int   `json:"boost_min_weekly" toml:"boost_min_weekly"`
	SurprisePct         int   `json:"surprise_pct" toml:"surprise_pct"`
	SurpriseMinWeekly   int   `json:"surprise_min_weekly" toml:"surprise_min_weekly"`
	MaxPerDay           int   `json:"max_per_day" toml:"max_per_day"`
	MaxPerWeek          int   `json:"max_per_week" toml:"max_per_week"`
	QuietStart          string `json:"quiet_start" toml:"quiet_start"`
	QuietEnd            string `json:"quiet_end" toml:"quiet_end"`
}

// DefaultRewardPolicy returns the production constants.
func DefaultRewardPolicy() RewardPolicy {
	return RewardPolicy{
		CooldownMinutes:   120,
		ComebackMinDays:   3,
		ComebackMaxDays:   7,
		MilestoneNudges:   []int{2, 6, 13},
		BoostMinStreak:    3,
		BoostMinWeekly:    4,
		SurprisePct:       30,
		SurpriseMinWeekly: 2,
		MaxPerDay:         3,
		MaxPerWeek:        10,
		QuietStart:        "22:00",
		QuietEnd:          "08:00",
	}
}

// RewardLogEntry records one sent reward, for cooldown and cap checks.
type RewardLogEntry struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	RewardType string    `json:"reward_type"`
	SentAt     time.Time `json:"sent_at"`
}
