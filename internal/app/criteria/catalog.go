package criteria

import (
	"fmt"

	"github.com/planka-fit/planka/internal/domain"
)

// Lookup returns the catalog entry with the given ID.
func Lookup(id string) (domain.CatalogEntry, error) {
	for _, entry := range Catalog() {
		if entry.ID == id {
			return entry, nil
		}
	}
	return domain.CatalogEntry{}, fmt.Errorf("%w: %s", domain.ErrUnknownAchievement, id)
}

// Catalog returns the full achievement catalog. Static reference data:
// criteria stay free text and are parsed on every evaluation pass.
func Catalog() []domain.CatalogEntry {
	return []domain.CatalogEntry{
		// ── Getting started ────────────────────────────────────────────
		{ID: "first_session", Name: "First Plank", Criteria: "Complete your first session", Rarity: domain.RarityCommon, Points: 10},
		{ID: "sessions_10", Name: "Getting Into It", Criteria: "Complete 10 sessions", Rarity: domain.RarityCommon, Points: 20},
		{ID: "sessions_50", Name: "Half Century", Criteria: "Complete 50 sessions", Rarity: domain.RarityUncommon, Points: 50},
		{ID: "sessions_250", Name: "Core Devotee", Criteria: "Complete 250 sessions", Rarity: domain.RarityEpic, Points: 150},

		// ── Streaks ────────────────────────────────────────────────────
		{ID: "streak_3", Name: "Warming Up", Criteria: "3-day streak", Rarity: domain.RarityCommon, Points: 15},
		{ID: "streak_7", Name: "Week One Done", Criteria: "7-day streak", Rarity: domain.RarityUncommon, Points: 40},
		{ID: "streak_30", Name: "Iron Month", Criteria: "30-day streak", Rarity: domain.RarityEpic, Points: 200},

		// ── Endurance ──────────────────────────────────────────────────
		{ID: "quick_15", Name: "Quick Burn", Criteria: "Session <= 15 seconds", Rarity: domain.RarityCommon, Points: 5},
		{ID: "endurance_120", Name: "Two-Minute Club", Criteria: "Hold a session for at least 120 seconds", Rarity: domain.RarityRare, Points: 60},
		{ID: "endurance_300", Name: "Five-Minute Titan", Criteria: "Hold a session for at least 300 seconds", Rarity: domain.RarityLegendary, Points: 300},

		// ── Variety ────────────────────────────────────────────────────
		{ID: "side_20", Name: "Sideways", Criteria: "Complete 20 side plank sessions", Rarity: domain.RarityUncommon, Points: 40},
		{ID: "side_streak_5", Name: "Leaning In", Criteria: "5-day side plank streak", Rarity: domain.RarityRare, Points: 70},
		{ID: "side_hour", Name: "An Hour Askew", Criteria: "Accumulate 60 minutes of side plank", Rarity: domain.RarityRare, Points: 80},
		{ID: "spread_4", Name: "Well Rounded", Criteria: "Complete sessions in 4 different exercises", Rarity: domain.RarityUncommon, Points: 45},
		{ID: "mastery_side", Name: "Side Master", Criteria: "Reach mastery level 3 in side plank", Rarity: domain.RarityEpic, Points: 120},

		// ── Timing ─────────────────────────────────────────────────────
		{ID: "early_5", Name: "Dawn Patrol", Criteria: "Complete 5 sessions before 7am", Rarity: domain.RarityUncommon, Points: 35},
		{ID: "late_5", Name: "Midnight Oil", Criteria: "Complete 5 sessions after 10pm", Rarity: domain.RarityUncommon, Points: 35},
		{ID: "leap_day", Name: "Bonus Day", Criteria: "Complete a session on leap day", Rarity: domain.RarityRare, Points: 50},
		{ID: "friday_13", Name: "Fearless", Criteria: "Complete a session on Friday the 13th", Rarity: domain.RarityRare, Points: 50},
		{ID: "eclipse", Name: "Totality", Criteria: "Complete a session during an eclipse", Rarity: domain.RarityLegendary, Points: 250},
		{ID: "palindrome", Name: "Mirror Mirror", Criteria: "Complete a session on a palindrome date", Rarity: domain.RarityEpic, Points: 100},

		// ── Progression ────────────────────────────────────────────────
		{ID: "level_10", Name: "Double Digits", Criteria: "Reach level 10 and complete 100 sessions", Rarity: domain.RarityRare, Points: 90},
		{ID: "momentum_100", Name: "Unstoppable", Criteria: "Reach a weekly momentum score of 100", Rarity: domain.RarityRare, Points: 75},
		{ID: "anniversary", Name: "Year One", Criteria: "Complete a workout one year after joining", Rarity: domain.RarityRare, Points: 100},
		{ID: "consistency_3x4", Name: "Clockwork", Criteria: "Work out 3 days a week for 4 weeks", Rarity: domain.RarityRare, Points: 85},

		// ── Social ─────────────────────────────────────────────────────
		{ID: "cheer_25", Name: "Hype Crew", Criteria: "Send 25 cheers", Rarity: domain.RarityUncommon, Points: 30},
		{ID: "cheered_25", Name: "Crowd Favorite", Criteria: "Receive 25 cheers", Rarity: domain.RarityUncommon, Points: 30},
		{ID: "friends_5", Name: "Plank Squad", Criteria: "Add 5 friends", Rarity: domain.RarityCommon, Points: 20},

		// ── Needs-review set ───────────────────────────────────────────
		// These parse to needs-review by ID and are unearnable until the
		// criteria ambiguity is resolved.
		{ID: "perfectionist", Name: "Perfectionist", Criteria: "Complete 10 sessions without breaks", Rarity: domain.RarityEpic, Points: 110},
		{ID: "personal_best", Name: "Record Breaker", Criteria: "Beat your personal best", Rarity: domain.RarityUncommon, Points: 40},
		{ID: "summer_program", Name: "Summer Shred", Criteria: "Finish the summer program", Rarity: domain.RarityRare, Points: 80},
		{ID: "sync_session", Name: "In Sync", Criteria: "Complete a session at the same time as a friend", Rarity: domain.RarityRare, Points: 60},
	}
}
