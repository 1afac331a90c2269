package engagement

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/planka-fit/planka/internal/domain"
	"github.com/planka-fit/planka/internal/infra/sqlite"
)

// DecideReward is the reward-timing heuristic: ordered rules over a
// context snapshot, first qualifying rule wins. Pure except for the
// injected randomness — pass a seeded *rand.Rand to make it
// deterministic in tests.
func DecideReward(ctx domain.RewardContext, policy domain.RewardPolicy, now time.Time, rng *rand.Rand) domain.RewardDecision {
	// Rule 1: cooldown dominates everything.
	cooldown := time.Duration(policy.CooldownMinutes) * time.Minute
	if !ctx.LastRewardTime.IsZero() && now.Sub(ctx.LastRewardTime) < cooldown {
		return domain.RewardDecision{}
	}

	// Rule 2: comeback window.
	if ctx.DaysSinceLastWorkout >= policy.ComebackMinDays && ctx.DaysSinceLastWorkout <= policy.ComebackMaxDays {
		return domain.RewardDecision{
			ShouldSendReward: true,
			RewardType:       domain.RewardComebackEncourage,
			Priority:         domain.PriorityHigh,
			Message:          fmt.Sprintf("It's been %d days — your core misses you. One plank gets you back on track.", ctx.DaysSinceLastWorkout),
		}
	}

	// Rule 3: one day short of a streak milestone.
	for _, nudge := range policy.MilestoneNudges {
		if ctx.CurrentStreak == nudge {
			return domain.RewardDecision{
				ShouldSendReward: true,
				RewardType:       domain.RewardMilestoneNudge,
				Priority:         domain.PriorityMedium,
				DelayMinutes:     rng.Intn(60),
				Message:          fmt.Sprintf("One more day and you hit a %d-day streak!", ctx.CurrentStreak+1),
			}
		}
	}

	// Rule 4: streak boost for highly engaged users.
	if ctx.CurrentStreak >= policy.BoostMinStreak &&
		ctx.RecentEngagement == domain.EngagementHigh &&
		ctx.WeeklySessionCount >= policy.BoostMinWeekly {
		return domain.RewardDecision{
			ShouldSendReward: true,
			RewardType:       domain.RewardStreakBoost,
			Priority:         domain.PriorityMedium,
			DelayMinutes:     rng.Intn(30),
			Message:          fmt.Sprintf("%d days strong — bonus XP to keep the fire lit.", ctx.CurrentStreak),
			XPAmount:         25 + 2*ctx.CurrentStreak,
		}
	}

	// Rule 5: random surprise for moderately engaged users.
	if ctx.RecentEngagement == domain.EngagementMedium &&
		ctx.WeeklySessionCount >= policy.SurpriseMinWeekly &&
		rng.Intn(100) < policy.SurprisePct {
		return domain.RewardDecision{
			ShouldSendReward: true,
			RewardType:       domain.RewardSurpriseXP,
			Priority:         domain.PriorityLow,
			DelayMinutes:     rng.Intn(120),
			Message:          "Surprise! Bonus XP for showing up this week.",
			XPAmount:         50 + rng.Intn(26),
		}
	}

	return domain.RewardDecision{}
}

// TimeOfDayLabel buckets an hour into the coarse labels the context
// snapshot carries.
func TimeOfDayLabel(t time.Time) string {
	switch h := t.UTC().Hour(); {
	case h >= 5 && h < 12:
		return "morning"
	case h >= 12 && h < 17:
		return "afternoon"
	case h >= 17 && h < 22:
		return "evening"
	default:
		return "night"
	}
}

// ─── Reward Service ─────────────────────────────────────────────────────────

// RewardService wraps the pure decision with the externally enforced
// caps: daily/weekly send limits and quiet hours, both checked before
// the decision function runs. Sends are logged for future cooldowns.
type RewardService struct {
	db     *sqlite.DB
	policy domain.RewardPolicy

	// rand.Rand is not safe for concurrent use; both the HTTP handlers
	// and the scheduler sweep reach Decide, so draws are serialized.
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRewardService creates a reward service with the default policy
// and time-seeded randomness.
func NewRewardService(db *sqlite.DB) *RewardService {
	return NewRewardServiceWithPolicy(db, domain.DefaultRewardPolicy(),
		rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewRewardServiceWithPolicy creates a reward service with a custom
// policy and random source (deterministic in tests).
func NewRewardServiceWithPolicy(db *sqlite.DB, policy domain.RewardPolicy, rng *rand.Rand) *RewardService {
	return &RewardService{db: db, policy: policy, rng: rng}
}

// Policy returns the active reward policy.
func (r *RewardService) Policy() domain.RewardPolicy { return r.policy }

// GatherContext assembles a fresh reward context for a user.
func (r *RewardService) GatherContext(userID string, now time.Time) (domain.RewardContext, error) {
	ctx := domain.RewardContext{TimeOfDay: TimeOfDayLabel(now)}

	last, err := r.db.LastSessionTime(userID)
	if err != nil {
		return ctx, fmt.Errorf("last session: %w", err)
	}
	if !last.IsZero() {
		ctx.DaysSinceLastWorkout = int(domain.DateOf(now).Sub(domain.DateOf(last)).Hours() / 24)
	}

	streak, err := r.db.GetStreak(userID)
	if err != nil {
		return ctx, fmt.Errorf("streak: %w", err)
	}
	if streak != nil {
		ctx.CurrentStreak = streak.CurrentStreak
	}

	weekly, err := r.db.SessionCountSince(userID, now.AddDate(0, 0, -7))
	if err != nil {
		return ctx, fmt.Errorf("weekly count: %w", err)
	}
	ctx.WeeklySessionCount = weekly
	ctx.RecentEngagement = engagementTier(weekly)

	lastReward, err := r.db.LastRewardTime(userID)
	if err != nil {
		return ctx, fmt.Errorf("last reward: %w", err)
	}
	ctx.LastRewardTime = lastReward

	return ctx, nil
}

// CheckResult carries the decision plus the suppression reason when
// the outer caps blocked the check.
type CheckResult struct {
	Decision   domain.RewardDecision `json:"decision"`
	Suppressed string                `json:"suppressed,omitempty"` // quiet_hours | daily_cap | weekly_cap
}

// Check runs the full reward pipeline for a user: caps and quiet hours
// first, then context gathering, then the decision; a positive
// decision is logged so cooldown and caps see it. force bypasses the
// caps and quiet hours (manual "force check") but never the cooldown
// rule inside the decision itself.
func (r *RewardService) Check(userID string, now time.Time, force bool) (CheckResult, error) {
	if !force {
		if r.isQuietHour(now) {
			return CheckResult{Suppressed: "quiet_hours"}, nil
		}

		todayCount, err := r.db.RewardCountSince(userID, domain.DateOf(now))
		if err != nil {
			return CheckResult{}, fmt.Errorf("daily cap: %w", err)
		}
		if todayCount >= r.policy.MaxPerDay {
			return CheckResult{Suppressed: "daily_cap"}, nil
		}

		weekCount, err := r.db.RewardCountSince(userID, now.AddDate(0, 0, -7))
		if err != nil {
			return CheckResult{}, fmt.Errorf("weekly cap: %w", err)
		}
		if weekCount >= r.policy.MaxPerWeek {
			return CheckResult{Suppressed: "weekly_cap"}, nil
		}
	}

	ctx, err := r.GatherContext(userID, now)
	if err != nil {
		return CheckResult{}, err
	}

	return r.Decide(userID, ctx, now)
}

// Decide applies the decision function to a caller-supplied context
// and logs a positive outcome.
func (r *RewardService) Decide(userID string, ctx domain.RewardContext, now time.Time) (CheckResult, error) {
	r.mu.Lock()
	decision := DecideReward(ctx, r.policy, now, r.rng)
	r.mu.Unlock()
	if decision.ShouldSendReward {
		if _, err := r.db.LogReward(userID, decision.RewardType, now); err != nil {
			return CheckResult{}, fmt.Errorf("log reward: %w", err)
		}
	}
	return CheckResult{Decision: decision}, nil
}

// isQuietHour returns true inside the policy's quiet window.
func (r *RewardService) isQuietHour(t time.Time) bool {
	startHour, startMin := parseHHMM(r.policy.QuietStart)
	endHour, endMin := parseHHMM(r.policy.QuietEnd)

	minutes := t.UTC().Hour()*60 + t.UTC().Minute()
	start := startHour*60 + startMin
	end := endHour*60 + endMin

	if start > end {
		// Wraps midnight: e.g., 22:00 – 08:00
		return minutes >= start || minutes < end
	}
	return minutes >= start && minutes < end
}

// engagementTier derives the coarse engagement label from the weekly
// session count.
func engagementTier(weeklySessions int) string {
	switch {
	case weeklySessions >= 4:
		return domain.EngagementHigh
	case weeklySessions >= 2:
		return domain.EngagementMedium
	default:
		return domain.EngagementLow
	}
}

// parseHHMM parses "HH:MM" into hour and minute.
func parseHHMM(s string) (int, int) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h, m
}
