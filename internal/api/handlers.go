package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/planka-fit/planka/internal/app/criteria"
	"github.com/planka-fit/planka/internal/app/engagement"
	"github.com/planka-fit/planka/internal/domain"
	"github.com/planka-fit/planka/internal/infra/metrics"
)

// ─── Sessions ───────────────────────────────────────────────────────────────

type recordSessionRequest struct {
	Exercise        string     `json:"exercise"`
	DurationSeconds int        `json:"duration_seconds"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

type unlockedAchievement struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Rarity domain.Rarity `json:"rarity"`
	Points int           `json:"points"`
	Source string        `json:"source"` // catalog | hidden
}

type recordSessionResponse struct {
	Session   domain.Session         `json:"session"`
	Streak    domain.Streak          `json:"streak"`
	Milestone *domain.MilestoneEvent `json:"milestone,omitempty"`
	Unlocked  []unlockedAchievement  `json:"unlocked"`
	Level     int                    `json:"level"`
	LeveledUp bool                   `json:"leveled_up"`
}

// handleRecordSession persists a completed workout and runs the
// evaluation chain: streak update, catalog achievements, hidden
// achievements. Evaluator fetch failures degrade to empty results;
// only the session insert itself is fatal.
func (s *Server) handleRecordSession(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req recordSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Exercise == "" {
		writeError(w, http.StatusBadRequest, domain.ErrMissingExercise.Error())
		return
	}
	if req.DurationSeconds <= 0 {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidDuration.Error())
		return
	}

	completedAt := time.Now().UTC()
	if req.CompletedAt != nil {
		completedAt = req.CompletedAt.UTC()
	}

	sess := domain.Session{
		ID:              uuid.NewString(),
		UserID:          userID,
		Exercise:        req.Exercise,
		DurationSeconds: req.DurationSeconds,
		CompletedAt:     completedAt,
		Notes:           req.Notes,
	}
	if err := s.db.InsertSession(sess); err != nil {
		writeError(w, http.StatusInternalServerError, "could not save session")
		return
	}
	metrics.SessionsRecorded.WithLabelValues(sess.Exercise).Inc()

	start := time.Now()
	resp := s.evaluate(userID, sess, completedAt)
	metrics.EvaluationLatency.Observe(time.Since(start).Seconds())

	writeJSON(w, http.StatusCreated, resp)
}

// evaluate runs the post-save chain. Each stage tolerates the previous
// one failing; a failed fetch yields an empty result, not an error.
func (s *Server) evaluate(userID string, sess domain.Session, now time.Time) recordSessionResponse {
	resp := recordSessionResponse{Session: sess, Unlocked: []unlockedAchievement{}}

	_ = s.profiles.Touch(userID, now)

	milestone, err := s.streaks.RecordSession(userID, sess.CompletedAt)
	if err == nil && milestone != nil {
		resp.Milestone = milestone
		metrics.MilestonesReached.Inc()
	}
	if streak, err := s.streaks.Current(userID); err == nil {
		resp.Streak = streak
	}

	// Base XP for showing up, plus one point per 10 seconds held.
	xp := int64(10 + sess.DurationSeconds/10)

	catalogNew, err := s.achievements.CheckAndUnlock(userID, now)
	if err == nil {
		for _, entry := range catalogNew {
			resp.Unlocked = append(resp.Unlocked, unlockedAchievement{
				ID: entry.ID, Name: entry.Name, Rarity: entry.Rarity,
				Points: entry.Points, Source: "catalog",
			})
			xp += int64(entry.Points)
			metrics.AchievementsUnlocked.WithLabelValues("catalog").Inc()
		}
	}

	hiddenNew, err := s.hidden.CheckAndUnlock(userID, now)
	if err == nil {
		for _, def := range hiddenNew {
			resp.Unlocked = append(resp.Unlocked, unlockedAchievement{
				ID: def.ID, Name: def.Name, Rarity: def.Rarity,
				Points: def.Points, Source: "hidden",
			})
			xp += int64(def.Points)
			metrics.AchievementsUnlocked.WithLabelValues("hidden").Inc()
		}
	}

	if level, up, err := s.profiles.AddXP(userID, xp); err == nil {
		resp.Level = level
		resp.LeveledUp = up
	}

	return resp
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	sessions, err := s.db.ListSessions(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

type feedbackRequest struct {
	Note string `json:"note"`
}

// handleSessionFeedback appends feedback text to a session's notes —
// the only mutation sessions allow.
func (s *Server) handleSessionFeedback(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Note == "" {
		writeError(w, http.StatusBadRequest, "note is required")
		return
	}

	if err := s.db.AppendSessionNote(sessionID, req.Note); err != nil {
		if err == domain.ErrSessionNotFound {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Engagement Reads ───────────────────────────────────────────────────────

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	streak, err := s.streaks.Current(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, streak)
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	list, err := s.achievements.ListUnlocked(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []domain.UserAchievement{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"achievements": list})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	stats, err := engagement.BuildStats(s.db, userID, time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	total, err := s.db.SessionCount(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if total == 0 {
		writeError(w, http.StatusNotFound, domain.ErrUserNotFound.Error())
		return
	}
	streak, err := s.streaks.Current(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	unlocked, err := s.db.AchievementCount(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	level, err := s.profiles.Level(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":        userID,
		"total_sessions": total,
		"streak":         streak,
		"achievements":   unlocked,
		"level":          level,
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	catalog, err := s.achievements.CatalogFor(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"catalog": catalog})
}

func (s *Server) handleCatalogEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := criteria.Lookup(chi.URLParam(r, "achievementID"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// ─── Social Counters ────────────────────────────────────────────────────────

type cheersRequest struct {
	Kind  string `json:"kind"` // sent | received
	Count int    `json:"count"`
}

func (s *Server) handleCheers(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req cheersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Count <= 0 {
		req.Count = 1
	}

	var column string
	switch req.Kind {
	case "sent":
		column = "cheers_sent"
	case "received":
		column = "cheers_received"
	default:
		writeError(w, http.StatusBadRequest, "kind must be sent or received")
		return
	}

	if err := s.db.IncrementSocial(userID, column, req.Count); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	counters, err := s.db.GetSocialCounters(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, counters)
}

type friendsRequest struct {
	Count int `json:"count"`
}

func (s *Server) handleFriends(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req friendsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Count <= 0 {
		req.Count = 1
	}

	if err := s.db.IncrementSocial(userID, "friends", req.Count); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	counters, err := s.db.GetSocialCounters(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, counters)
}

// ─── Reward Check ───────────────────────────────────────────────────────────

type rewardCheckRequest struct {
	UserID  string                `json:"user_id,omitempty"`
	Context *domain.RewardContext `json:"context,omitempty"`
}

// handleRewardCheck evaluates reward timing. With a caller-supplied
// context the decision function runs directly on it; otherwise the
// context is gathered fresh for user_id, with caps and quiet hours
// enforced first. ?force=1 bypasses the caps (manual force check).
func (s *Server) handleRewardCheck(w http.ResponseWriter, r *http.Request) {
	var req rewardCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.rewardCheck(w, r, req)
}

func (s *Server) handleUserRewardCheck(w http.ResponseWriter, r *http.Request) {
	var req rewardCheckRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	req.UserID = chi.URLParam(r, "userID")
	s.rewardCheck(w, r, req)
}

// rewardHistoryLimit caps the /rewards list response.
const rewardHistoryLimit = 50

func (s *Server) handleRewardHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	rewards, err := s.db.ListRewards(userID, rewardHistoryLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rewards == nil {
		rewards = []domain.RewardLogEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rewards": rewards})
}

func validEngagement(tier string) bool {
	switch tier {
	case "", domain.EngagementLow, domain.EngagementMedium, domain.EngagementHigh:
		return true
	}
	return false
}

func (s *Server) rewardCheck(w http.ResponseWriter, r *http.Request, req rewardCheckRequest) {
	now := time.Now().UTC()

	var result engagement.CheckResult
	var err error
	switch {
	case req.Context != nil:
		if !validEngagement(req.Context.RecentEngagement) {
			writeError(w, http.StatusBadRequest, domain.ErrInvalidEngagement.Error())
			return
		}
		userID := req.UserID
		if userID == "" {
			userID = "manual"
		}
		result, err = s.rewards.Decide(userID, *req.Context, now)
	case req.UserID != "":
		force := r.URL.Query().Get("force") == "1"
		result, err = s.rewards.Check(req.UserID, now, force)
	default:
		writeError(w, http.StatusBadRequest, domain.ErrMissingUser.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if result.Suppressed != "" {
		metrics.RewardsSuppressed.WithLabelValues(result.Suppressed).Inc()
	} else if result.Decision.ShouldSendReward {
		metrics.RewardsSent.WithLabelValues(result.Decision.RewardType).Inc()
	}

	writeJSON(w, http.StatusOK, result)
}
