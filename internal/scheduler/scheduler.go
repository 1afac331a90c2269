package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/planka-fit/planka/internal/app/engagement"
	"github.com/planka-fit/planka/internal/infra/metrics"
	"github.com/planka-fit/planka/internal/infra/sqlite"
)

// lookbackDays bounds the sweep to users seen recently; dormant
// accounts past this window never receive scheduled rewards.
const lookbackDays = 30

// Scheduler runs the periodic reward sweep.
type Scheduler struct {
	scheduler *gocron.Scheduler
	db        *sqlite.DB
	rewards   *engagement.RewardService
	interval  time.Duration
}

func New(db *sqlite.DB, rewards *engagement.RewardService, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		db:        db,
		rewards:   rewards,
		interval:  interval,
	}
}

// Start begins the sweep in the background.
func (s *Scheduler) Start() {
	if _, err := s.scheduler.Every(s.interval).Do(s.sweep); err != nil {
		log.Printf("[scheduler] could not schedule reward sweep: %v", err)
		return
	}
	s.scheduler.StartAsync()
	log.Printf("[scheduler] reward sweep every %s", s.interval)
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// sweep checks every recently active user for a pending reward.
// Per-user failures are logged and skipped so one bad row cannot
// stall the rest of the sweep.
func (s *Scheduler) sweep() {
	now := time.Now().UTC()
	since := now.AddDate(0, 0, -lookbackDays)

	userIDs, err := s.db.ActiveUserIDs(since)
	if err != nil {
		log.Printf("[scheduler] listing active users: %v", err)
		return
	}

	sent := 0
	for _, userID := range userIDs {
		result, err := s.rewards.Check(userID, now, false)
		if err != nil {
			log.Printf("[scheduler] reward check for %s: %v", userID, err)
			continue
		}
		if result.Suppressed != "" {
			metrics.RewardsSuppressed.WithLabelValues(result.Suppressed).Inc()
			continue
		}
		if result.Decision.ShouldSendReward {
			metrics.RewardsSent.WithLabelValues(result.Decision.RewardType).Inc()
			sent++
		}
	}

	log.Printf("[scheduler] sweep complete: %d users checked, %d rewards sent", len(userIDs), sent)
}
