package engagement

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/planka-fit/planka/internal/infra/sqlite"
)

// ProfileService manages per-user XP and level state in the profile
// KV store. Levels follow an exponential curve, capped at 100.
type ProfileService struct {
	db *sqlite.DB
}

// NewProfileService creates a profile service.
func NewProfileService(db *sqlite.DB) *ProfileService {
	return &ProfileService{db: db}
}

// XPForLevel returns the cumulative XP required to reach a level.
// 100 * 1.2^(level-1) for level >= 2.
func XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	return int64(100 * math.Pow(1.2, float64(level-1)))
}

// LevelForXP returns the level for a given XP amount.
func LevelForXP(xp int64) int {
	level := 1
	for level < 100 {
		if xp < XPForLevel(level + 1) {
			return level
		}
		level++
	}
	return 100
}

// Touch records first contact with a user: sets joined_at if absent.
func (p *ProfileService) Touch(userID string, at time.Time) error {
	joined, err := p.db.GetProfile(userID, "joined_at")
	if err != nil {
		return fmt.Errorf("get joined_at: %w", err)
	}
	if joined != "" {
		return nil
	}
	return p.db.SetProfile(userID, "joined_at", at.UTC().Format(time.RFC3339))
}

// Level returns the user's current level (1 if no XP yet).
func (p *ProfileService) Level(userID string) (int, error) {
	xp, err := p.currentXP(userID)
	if err != nil {
		return 0, err
	}
	return LevelForXP(xp), nil
}

// AddXP credits experience points and returns (newLevel, leveledUp).
func (p *ProfileService) AddXP(userID string, amount int64) (int, bool, error) {
	if amount <= 0 {
		return 0, false, fmt.Errorf("xp amount must be positive, got %d", amount)
	}

	xp, err := p.currentXP(userID)
	if err != nil {
		return 0, false, err
	}

	oldLevel := LevelForXP(xp)
	newXP := xp + amount

	if err := p.db.SetProfile(userID, "xp", strconv.FormatInt(newXP, 10)); err != nil {
		return 0, false, fmt.Errorf("save xp: %w", err)
	}

	newLevel := LevelForXP(newXP)
	if err := p.db.SetProfile(userID, "level", strconv.Itoa(newLevel)); err != nil {
		return 0, false, fmt.Errorf("save level: %w", err)
	}

	return newLevel, newLevel > oldLevel, nil
}

func (p *ProfileService) currentXP(userID string) (int64, error) {
	s, err := p.db.GetProfile(userID, "xp")
	if err != nil {
		return 0, fmt.Errorf("get xp: %w", err)
	}
	if s == "" {
		return 0, nil
	}
	xp, _ := strconv.ParseInt(s, 10, 64)
	return xp, nil
}
