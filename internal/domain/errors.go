package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidDuration = errors.New("session duration must be positive")
	ErrMissingExercise = errors.New("session exercise is required")

	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrMissingUser  = errors.New("user id is required")

	// Achievement errors
	ErrUnknownAchievement = errors.New("achievement not in catalog")

	// Reward errors
	ErrInvalidEngagement = errors.New("recent_engagement must be low, medium or high")
)
