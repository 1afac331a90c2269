// Package engagement implements the Planka engagement engine:
// streak tracking, achievement evaluation (catalog-driven and hidden),
// and reward-timing decisions.
package engagement

import (
	"time"

	"github.com/planka-fit/planka/internal/domain"
	"github.com/planka-fit/planka/internal/infra/sqlite"
)

// StreakService maintains per-user consecutive-day streaks.
// A "day" is a UTC calendar date with at least one completed session.
type StreakService struct {
	db         *sqlite.DB
	milestones []int // ascending
}

// NewStreakService creates a streak service with the default milestone
// list {1, 3, 7, 14, 30, 60, 100}.
func NewStreakService(db *sqlite.DB) *StreakService {
	return NewStreakServiceWithMilestones(db, domain.DefaultMilestones())
}

// NewStreakServiceWithMilestones creates a streak service with a custom
// ascending milestone list.
func NewStreakServiceWithMilestones(db *sqlite.DB, milestones []int) *StreakService {
	return &StreakService{db: db, milestones: milestones}
}

// Current returns the user's streak state. A user with no streak row
// yet gets a zero-value streak.
func (s *StreakService) Current(userID string) (domain.Streak, error) {
	row, err := s.db.GetStreak(userID)
	if err != nil {
		return domain.Streak{}, err
	}
	if row == nil {
		return domain.Streak{UserID: userID}, nil
	}
	return *row, nil
}

// RecordSession advances the streak state machine for a session
// completed at the given time. Returns a milestone event when the
// transition lands exactly on a milestone value, nil otherwise.
//
// Same calendar day: no-op. Prior workout exactly yesterday: streak
// extends. Any longer gap: streak resets to 1.
func (s *StreakService) RecordSession(userID string, at time.Time) (*domain.MilestoneEvent, error) {
	today := domain.DateOf(at)

	row, err := s.db.GetStreak(userID)
	if err != nil {
		return nil, err
	}

	if row == nil {
		// First session ever
		streak := domain.Streak{
			UserID:          userID,
			CurrentStreak:   1,
			LongestStreak:   1,
			LastWorkoutDate: today,
		}
		if err := s.db.UpsertStreak(streak); err != nil {
			return nil, err
		}
		return &domain.MilestoneEvent{UserID: userID, Days: 1, First: true}, nil
	}

	if row.LastWorkoutDate.Equal(today) {
		return nil, nil // Already counted today
	}

	previous := row.CurrentStreak
	yesterday := today.AddDate(0, 0, -1)
	if row.LastWorkoutDate.Equal(yesterday) {
		row.CurrentStreak++
	} else {
		row.CurrentStreak = 1
	}

	if row.CurrentStreak > row.LongestStreak {
		row.LongestStreak = row.CurrentStreak
	}
	row.LastWorkoutDate = today

	if err := s.db.UpsertStreak(*row); err != nil {
		return nil, err
	}

	// Fire only on an upward transition onto a milestone. A reset back
	// to 1 never re-fires the first milestone.
	if row.CurrentStreak > previous && s.isMilestone(row.CurrentStreak) {
		return &domain.MilestoneEvent{UserID: userID, Days: row.CurrentStreak}, nil
	}
	return nil, nil
}

func (s *StreakService) isMilestone(days int) bool {
	for _, m := range s.milestones {
		if m == days {
			return true
		}
		if m > days {
			break
		}
	}
	return false
}
