// Package daemon manages the Planka daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/planka-fit/planka/internal/domain"
)

// Config holds all daemon configuration.
type Config struct {
	API        APIConfig           `toml:"api"`
	Storage    StorageConfig       `toml:"storage"`
	Engagement EngagementConfig    `toml:"engagement"`
	Rewards    domain.RewardPolicy `toml:"rewards"`
	Scheduler  SchedulerConfig     `toml:"scheduler"`
	Telemetry  TelemetryConfig     `toml:"telemetry"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// StorageConfig controls the SQLite data directory.
type StorageConfig struct {
	Dir string `toml:"dir"`
}

// EngagementConfig tunes the streak evaluator.
type EngagementConfig struct {
	Milestones []int `toml:"milestones"`
}

// SchedulerConfig controls the background reward sweep.
type SchedulerConfig struct {
	Enabled       bool   `toml:"enabled"`
	SweepInterval string `toml:"sweep_interval"`
}

// TelemetryConfig controls observability surfaces.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := plankaHome()
	return Config{
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        8420,
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Dir: homeDir,
		},
		Engagement: EngagementConfig{
			Milestones: domain.DefaultMilestones(),
		},
		Rewards: domain.DefaultRewardPolicy(),
		Scheduler: SchedulerConfig{
			Enabled:       true,
			SweepInterval: "1h",
		},
		Telemetry: TelemetryConfig{
			Prometheus: false,
		},
	}
}

// LoadConfig reads config from ~/.planka/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(plankaHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet — use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the config to ~/.planka/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(plankaHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// plankaHome returns the Planka data directory.
func plankaHome() string {
	if env := os.Getenv("PLANKA_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".planka")
}

// PlankaHome is exported for use by other packages.
func PlankaHome() string {
	return plankaHome()
}
