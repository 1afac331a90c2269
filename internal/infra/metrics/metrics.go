// Package metrics provides Prometheus metrics for Planka — counters
// and histograms for sessions, achievement evaluation and rewards.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Sessions ───────────────────────────────────────────────────────────────

// SessionsRecorded counts completed workout sessions.
var SessionsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "planka",
	Name:      "sessions_recorded_total",
	Help:      "Total workout sessions recorded.",
}, []string{"exercise"})

// MilestonesReached counts streak milestone events.
var MilestonesReached = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "planka",
	Name:      "streak_milestones_total",
	Help:      "Total streak milestone events fired.",
})

// ─── Achievements ───────────────────────────────────────────────────────────

// AchievementsUnlocked counts unlocks by mechanism.
var AchievementsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "planka",
	Name:      "achievements_unlocked_total",
	Help:      "Total achievements unlocked.",
}, []string{"source"}) // catalog | hidden

// EvaluationLatency tracks the full post-save evaluation chain
// duration in seconds.
var EvaluationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "planka",
	Name:      "evaluation_latency_seconds",
	Help:      "Duration of the streak/achievement evaluation chain.",
	Buckets:   prometheus.DefBuckets,
})

// ─── Rewards ────────────────────────────────────────────────────────────────

// RewardsSent counts reward nudges by type.
var RewardsSent = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "planka",
	Name:      "rewards_sent_total",
	Help:      "Total reward nudges sent.",
}, []string{"type"})

// RewardsSuppressed counts reward checks blocked by the outer caps.
var RewardsSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "planka",
	Name:      "rewards_suppressed_total",
	Help:      "Reward checks suppressed before the decision ran.",
}, []string{"reason"}) // quiet_hours | daily_cap | weekly_cap
