package daemon

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/planka-fit/planka/internal/api"
	"github.com/planka-fit/planka/internal/app/engagement"
	"github.com/planka-fit/planka/internal/domain"
	_ "github.com/planka-fit/planka/internal/infra/metrics" // Register Prometheus metrics
	"github.com/planka-fit/planka/internal/infra/sqlite"
	"github.com/planka-fit/planka/internal/scheduler"
)

// Daemon is the core Planka runtime. It wires together all services.
type Daemon struct {
	Config Config
	DB     *sqlite.DB
	Server *api.Server
	cancel context.CancelFunc

	Streak      *engagement.StreakService
	Achievement *engagement.AchievementService
	Hidden      *engagement.HiddenService
	Reward      *engagement.RewardService
	Profile     *engagement.ProfileService

	Sweep *scheduler.Scheduler
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	dataDir := cfg.Storage.Dir
	if dataDir == "" {
		dataDir = plankaHome()
	}
	db, err := sqlite.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	d := &Daemon{
		Config: cfg,
		DB:     db,
	}

	milestones := cfg.Engagement.Milestones
	if len(milestones) == 0 {
		milestones = domain.DefaultMilestones()
	}
	d.Streak = engagement.NewStreakServiceWithMilestones(db, milestones)
	d.Achievement = engagement.NewAchievementService(db)
	d.Hidden = engagement.NewHiddenService(db)
	d.Profile = engagement.NewProfileService(db)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	d.Reward = engagement.NewRewardServiceWithPolicy(db, cfg.Rewards, rng)

	d.Server = api.NewServer(db, d.Streak, d.Achievement, d.Hidden, d.Reward, d.Profile)
	d.Server.SetCORSOrigins(cfg.API.CORSOrigins)
	if cfg.Telemetry.Prometheus {
		d.Server.EnableMetrics()
	}

	if cfg.Scheduler.Enabled {
		interval := parseDuration(cfg.Scheduler.SweepInterval, time.Hour)
		d.Sweep = scheduler.New(db, d.Reward, interval)
	}

	return d, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if d.Sweep != nil {
		d.Sweep.Start()
	}

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if d.Sweep != nil {
			d.Sweep.Stop()
		}
		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("Planka serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Sweep != nil {
		d.Sweep.Stop()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
