package scheduler

import (
	"testing"
	"time"

	"github.com/planka-fit/planka/internal/app/engagement"
	"github.com/planka-fit/planka/internal/infra/sqlite"
)

func TestScheduler_StartStop(t *testing.T) {
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	s := New(db, engagement.NewRewardService(db), time.Hour)
	s.Start()
	s.Stop()
}

func TestScheduler_DefaultInterval(t *testing.T) {
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	s := New(db, engagement.NewRewardService(db), 0)
	if s.interval != time.Hour {
		t.Errorf("interval = %s, want 1h", s.interval)
	}
}

func TestScheduler_SweepEmptyDB(t *testing.T) {
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	s := New(db, engagement.NewRewardService(db), time.Hour)
	s.sweep() // no users, must not panic
}
