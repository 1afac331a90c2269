package engagement

import (
	"log"
	"time"

	"github.com/planka-fit/planka/internal/app/criteria"
	"github.com/planka-fit/planka/internal/domain"
	"github.com/planka-fit/planka/internal/infra/sqlite"
)

// AchievementService evaluates the text-criteria achievement catalog.
// Criteria are re-parsed from the catalog's free text on every pass.
type AchievementService struct {
	db      *sqlite.DB
	catalog []domain.CatalogEntry
}

// NewAchievementService creates an achievement service over the full
// static catalog.
func NewAchievementService(db *sqlite.DB) *AchievementService {
	return &AchievementService{db: db, catalog: criteria.Catalog()}
}

// CheckAndUnlock re-derives the user's stats snapshot, evaluates every
// catalog entry, and awards the ones that newly qualify. Returns the
// newly unlocked entries (idempotent — owned achievements are skipped,
// and the storage key makes a concurrent double-award a no-op).
//
// A stats-fetch failure degrades to "no new unlocks": it is logged and
// the next session save retries from scratch.
func (a *AchievementService) CheckAndUnlock(userID string, now time.Time) ([]domain.CatalogEntry, error) {
	stats, err := BuildStats(a.db, userID, now)
	if err != nil {
		log.Printf("[engagement] stats snapshot for %s failed: %v", userID, err)
		return nil, nil
	}
	return a.checkWithStats(userID, stats, now)
}

// CheckWithStats evaluates against a caller-supplied snapshot.
// Used by tests and by callers that already built the snapshot.
func (a *AchievementService) CheckWithStats(userID string, stats domain.UserStats, now time.Time) ([]domain.CatalogEntry, error) {
	return a.checkWithStats(userID, stats, now)
}

func (a *AchievementService) checkWithStats(userID string, stats domain.UserStats, now time.Time) ([]domain.CatalogEntry, error) {
	var newlyUnlocked []domain.CatalogEntry

	for _, entry := range a.catalog {
		owned, err := a.db.HasAchievement(userID, entry.ID)
		if err != nil {
			return nil, err
		}
		if owned {
			continue
		}

		parsed := criteria.Parse(entry.Criteria, entry.ID, entry.Name)
		if parsed.NeedsReview {
			continue // unearnable until a developer resolves it
		}
		if !criteria.Satisfied(parsed, stats) {
			continue
		}

		isNew, err := a.db.AwardAchievement(domain.UserAchievement{
			UserID:          userID,
			AchievementID:   entry.ID,
			AchievementName: entry.Name,
			EarnedAt:        now,
		})
		if err != nil {
			return nil, err
		}
		if isNew {
			newlyUnlocked = append(newlyUnlocked, entry)
		}
	}

	return newlyUnlocked, nil
}

// ListUnlocked returns all achievements the user has earned.
func (a *AchievementService) ListUnlocked(userID string) ([]domain.UserAchievement, error) {
	return a.db.ListAchievements(userID)
}

// Catalog returns all catalog definitions (for display).
func (a *AchievementService) Catalog() []domain.CatalogEntry {
	return a.catalog
}

// CatalogStatus is a catalog entry annotated with its parse and unlock
// state for one user.
type CatalogStatus struct {
	domain.CatalogEntry
	Unlocked     bool   `json:"unlocked"`
	NeedsReview  bool   `json:"needs_review,omitempty"`
	ReviewReason string `json:"review_reason,omitempty"`
}

// CatalogFor annotates the catalog with a user's unlock state.
// Needs-review entries are surfaced rather than hidden so the gap is
// visible to developers.
func (a *AchievementService) CatalogFor(userID string) ([]CatalogStatus, error) {
	owned, err := a.db.ListAchievements(userID)
	if err != nil {
		return nil, err
	}
	ownedSet := make(map[string]bool, len(owned))
	for _, ua := range owned {
		ownedSet[ua.AchievementID] = true
	}

	out := make([]CatalogStatus, 0, len(a.catalog))
	for _, entry := range a.catalog {
		parsed := criteria.Parse(entry.Criteria, entry.ID, entry.Name)
		out = append(out, CatalogStatus{
			CatalogEntry: entry,
			Unlocked:     ownedSet[entry.ID],
			NeedsReview:  parsed.NeedsReview,
			ReviewReason: parsed.ReviewReason,
		})
	}
	return out, nil
}
