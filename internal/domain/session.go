// Package domain defines the core types shared by every Planka layer.
// It has no dependencies outside the standard library so that storage,
// services and the API can all import it freely.
package domain

import "time"

// Session is a single completed workout. Sessions are append-only:
// once written they are never updated except for feedback text
// appended to Notes.
type Session struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Exercise        string    `json:"exercise"`
	DurationSeconds int       `json:"duration_seconds"`
	CompletedAt     time.Time `json:"completed_at"`
	Notes           string    `json:"notes,omitempty"`
}

// Day returns the UTC calendar date of the session, truncated to
// midnight. All streak arithmetic works on these values.
func (s Session) Day() time.Time {
	return DateOf(s.CompletedAt)
}

// DateOf truncates a timestamp to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SocialCounters tracks the per-user social activity feeding the
// social achievement criteria.
type SocialCounters struct {
	UserID         string `json:"user_id"`
	CheersSent     int    `json:"cheers_sent"`
	CheersReceived int    `json:"cheers_received"`
	Friends        int    `json:"friends"`
}
