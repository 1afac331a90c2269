package engagement

import (
	"log"
	"time"

	"github.com/planka-fit/planka/internal/domain"
	"github.com/planka-fit/planka/internal/infra/sqlite"
)

// HiddenAchievement is a surprise achievement with a bespoke predicate
// over raw session rows. These never appear in the text-criteria
// catalog and never go through the parser.
type HiddenAchievement struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Rarity domain.Rarity `json:"rarity"`
	Points int           `json:"points"`
	// Check receives the user's history newest-first plus the
	// evaluation time.
	Check func(sessions []domain.Session, now time.Time) bool `json:"-"`
}

// HiddenCatalog returns the fixed hidden-achievement set.
func HiddenCatalog() []HiddenAchievement {
	return []HiddenAchievement{
		{
			ID: "night_owl", Name: "Night Owl", Rarity: domain.RarityUncommon, Points: 30,
			Check: func(sessions []domain.Session, _ time.Time) bool {
				for _, s := range sessions {
					h := s.CompletedAt.UTC().Hour()
					if h >= 22 || h < 5 {
						return true
					}
				}
				return false
			},
		},
		{
			ID: "early_bird", Name: "Early Bird", Rarity: domain.RarityUncommon, Points: 30,
			Check: func(sessions []domain.Session, _ time.Time) bool {
				for _, s := range sessions {
					h := s.CompletedAt.UTC().Hour()
					if h >= 5 && h < 7 {
						return true
					}
				}
				return false
			},
		},
		{
			ID: "weekend_warrior", Name: "Weekend Warrior", Rarity: domain.RarityRare, Points: 60,
			// Scans newest-first for 5 consecutive weekend sessions;
			// a weekday session resets the run.
			Check: func(sessions []domain.Session, _ time.Time) bool {
				run := 0
				for _, s := range sessions {
					wd := s.CompletedAt.UTC().Weekday()
					if wd == time.Saturday || wd == time.Sunday {
						run++
						if run >= 5 {
							return true
						}
					} else {
						run = 0
					}
				}
				return false
			},
		},
		{
			ID: "lucky_seven", Name: "Lucky Seven", Rarity: domain.RarityLegendary, Points: 200,
			// Exactly 7 sessions this calendar month, checked on the 7th.
			Check: func(sessions []domain.Session, now time.Time) bool {
				if now.UTC().Day() != 7 {
					return false
				}
				y, m, _ := now.UTC().Date()
				count := 0
				for _, s := range sessions {
					sy, sm, _ := s.CompletedAt.UTC().Date()
					if sy == y && sm == m {
						count++
					}
				}
				return count == 7
			},
		},
		{
			ID: "double_down", Name: "Double Down", Rarity: domain.RarityRare, Points: 50,
			// Two sessions completed within an hour of each other.
			Check: func(sessions []domain.Session, _ time.Time) bool {
				for i := 1; i < len(sessions); i++ {
					gap := sessions[i-1].CompletedAt.Sub(sessions[i].CompletedAt)
					if gap >= 0 && gap <= time.Hour {
						return true
					}
				}
				return false
			},
		},
	}
}

// HiddenService evaluates the hidden-achievement set. It shares the
// user_achievements table with the catalog evaluator, so the same
// at-most-once guarantee applies.
type HiddenService struct {
	db   *sqlite.DB
	defs []HiddenAchievement
}

// NewHiddenService creates a hidden-achievement service.
func NewHiddenService(db *sqlite.DB) *HiddenService {
	return &HiddenService{db: db, defs: HiddenCatalog()}
}

// CheckAndUnlock runs every hidden predicate against the user's raw
// history and awards the ones that hold. A history-fetch failure
// degrades to "no new unlocks".
func (h *HiddenService) CheckAndUnlock(userID string, now time.Time) ([]HiddenAchievement, error) {
	sessions, err := h.db.ListSessions(userID)
	if err != nil {
		log.Printf("[engagement] hidden check for %s failed: %v", userID, err)
		return nil, nil
	}

	var newlyUnlocked []HiddenAchievement
	for _, def := range h.defs {
		owned, err := h.db.HasAchievement(userID, def.ID)
		if err != nil {
			return nil, err
		}
		if owned {
			continue
		}
		if !def.Check(sessions, now) {
			continue
		}

		isNew, err := h.db.AwardAchievement(domain.UserAchievement{
			UserID:          userID,
			AchievementID:   def.ID,
			AchievementName: def.Name,
			EarnedAt:        now,
			Metadata:        "hidden",
		})
		if err != nil {
			return nil, err
		}
		if isNew {
			newlyUnlocked = append(newlyUnlocked, def)
		}
	}
	return newlyUnlocked, nil
}

// TotalCount returns the number of hidden achievements defined.
func (h *HiddenService) TotalCount() int {
	return len(h.defs)
}
