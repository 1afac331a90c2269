package api

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/planka-fit/planka/internal/app/engagement"
	"github.com/planka-fit/planka/internal/domain"
	"github.com/planka-fit/planka/internal/infra/sqlite"
)

func newTestServer(t *testing.T) (*Server, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	rng := rand.New(rand.NewSource(7))
	srv := NewServer(db,
		engagement.NewStreakService(db),
		engagement.NewAchievementService(db),
		engagement.NewHiddenService(db),
		engagement.NewRewardServiceWithPolicy(db, domain.DefaultRewardPolicy(), rng),
		engagement.NewProfileService(db),
	)
	return srv, db
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// ─── Health ─────────────────────────────────────────────────────────────────

func TestAPI_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doJSON(t, srv.Handler(), "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	var body map[string]string
	json.NewDecoder(w.Body).Decode(&body)
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

// ─── Sessions ───────────────────────────────────────────────────────────────

func TestAPI_RecordSession(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	body := `{"exercise": "standard plank", "duration_seconds": 60, "completed_at": "2026-07-01T12:00:00Z"}`
	w := doJSON(t, h, "POST", "/api/users/alice/sessions", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Session struct {
			ID       string `json:"id"`
			Exercise string `json:"exercise"`
		} `json:"session"`
		Streak struct {
			CurrentStreak int `json:"current_streak"`
		} `json:"streak"`
		Milestone *struct {
			Days  int  `json:"days"`
			First bool `json:"first"`
		} `json:"milestone"`
		Unlocked []struct {
			ID     string `json:"id"`
			Source string `json:"source"`
		} `json:"unlocked"`
		Level int `json:"level"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Session.ID == "" {
		t.Error("session id missing")
	}
	if resp.Streak.CurrentStreak != 1 {
		t.Errorf("streak = %d, want 1", resp.Streak.CurrentStreak)
	}
	if resp.Milestone == nil || resp.Milestone.Days != 1 || !resp.Milestone.First {
		t.Errorf("milestone = %+v, want first 1-day event", resp.Milestone)
	}

	found := false
	for _, u := range resp.Unlocked {
		if u.ID == "first_session" && u.Source == "catalog" {
			found = true
		}
	}
	if !found {
		t.Errorf("unlocked = %+v, want first_session", resp.Unlocked)
	}
	if resp.Level < 1 {
		t.Errorf("level = %d, want >= 1", resp.Level)
	}
}

func TestAPI_RecordSession_Validation(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	w := doJSON(t, h, "POST", "/api/users/alice/sessions", `{"duration_seconds": 60}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing exercise: status = %d, want 400", w.Code)
	}

	w = doJSON(t, h, "POST", "/api/users/alice/sessions", `{"exercise": "standard plank", "duration_seconds": 0}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("zero duration: status = %d, want 400", w.Code)
	}
}

func TestAPI_ListSessions(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	doJSON(t, h, "POST", "/api/users/alice/sessions",
		`{"exercise": "standard plank", "duration_seconds": 60, "completed_at": "2026-07-01T12:00:00Z"}`)
	doJSON(t, h, "POST", "/api/users/alice/sessions",
		`{"exercise": "side plank", "duration_seconds": 45, "completed_at": "2026-07-02T12:00:00Z"}`)

	w := doJSON(t, h, "GET", "/api/users/alice/sessions", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Sessions []domain.Session `json:"sessions"`
	}
	json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.Sessions) != 2 {
		t.Fatalf("len = %d, want 2", len(resp.Sessions))
	}
	if resp.Sessions[0].Exercise != "side plank" {
		t.Errorf("newest first expected, got %q", resp.Sessions[0].Exercise)
	}
}

func TestAPI_SessionFeedback(t *testing.T) {
	srv, db := newTestServer(t)
	h := srv.Handler()

	_ = db.InsertSession(domain.Session{
		ID: "s1", UserID: "alice", Exercise: "standard plank",
		DurationSeconds: 60, CompletedAt: time.Now().UTC(),
	})

	w := doJSON(t, h, "POST", "/api/users/alice/sessions/s1/feedback", `{"note": "good form"}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}

	sess, _ := db.GetSession("s1")
	if sess.Notes != "good form" {
		t.Errorf("notes = %q", sess.Notes)
	}

	w = doJSON(t, h, "POST", "/api/users/alice/sessions/nope/feedback", `{"note": "x"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing session: status = %d, want 404", w.Code)
	}
}

// ─── Engagement Reads ───────────────────────────────────────────────────────

func TestAPI_StreakAndSummary(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	doJSON(t, h, "POST", "/api/users/alice/sessions",
		`{"exercise": "standard plank", "duration_seconds": 60, "completed_at": "2026-07-01T12:00:00Z"}`)
	doJSON(t, h, "POST", "/api/users/alice/sessions",
		`{"exercise": "standard plank", "duration_seconds": 60, "completed_at": "2026-07-02T12:00:00Z"}`)

	w := doJSON(t, h, "GET", "/api/users/alice/streak", "")
	var streak domain.Streak
	json.NewDecoder(w.Body).Decode(&streak)
	if streak.CurrentStreak != 2 {
		t.Errorf("streak = %d, want 2", streak.CurrentStreak)
	}

	w = doJSON(t, h, "GET", "/api/users/alice/summary", "")
	var summary struct {
		TotalSessions int `json:"total_sessions"`
		Achievements  int `json:"achievements"`
		Level         int `json:"level"`
	}
	json.NewDecoder(w.Body).Decode(&summary)
	if summary.TotalSessions != 2 {
		t.Errorf("total = %d, want 2", summary.TotalSessions)
	}
	if summary.Achievements == 0 {
		t.Error("expected at least one achievement")
	}
}

func TestAPI_Catalog(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	w := doJSON(t, h, "GET", "/api/catalog", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Catalog []struct {
			ID          string `json:"id"`
			NeedsReview bool   `json:"needs_review"`
		} `json:"catalog"`
	}
	json.NewDecoder(w.Body).Decode(&resp)

	if len(resp.Catalog) == 0 {
		t.Fatal("empty catalog")
	}
	review := 0
	for _, e := range resp.Catalog {
		if e.NeedsReview {
			review++
		}
	}
	if review != 4 {
		t.Errorf("needs-review entries = %d, want 4", review)
	}
}

// ─── Social ─────────────────────────────────────────────────────────────────

func TestAPI_Cheers(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	w := doJSON(t, h, "POST", "/api/users/alice/cheers", `{"kind": "sent", "count": 25}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var counters domain.SocialCounters
	json.NewDecoder(w.Body).Decode(&counters)
	if counters.CheersSent != 25 {
		t.Errorf("cheers_sent = %d, want 25", counters.CheersSent)
	}

	w = doJSON(t, h, "POST", "/api/users/alice/cheers", `{"kind": "upside-down"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad kind: status = %d, want 400", w.Code)
	}
}

func TestAPI_Friends(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	w := doJSON(t, h, "POST", "/api/users/alice/friends", `{"count": 5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var counters domain.SocialCounters
	json.NewDecoder(w.Body).Decode(&counters)
	if counters.Friends != 5 {
		t.Errorf("friends = %d, want 5", counters.Friends)
	}
}

// ─── Reward Check ───────────────────────────────────────────────────────────

func TestAPI_RewardCheckWithContext(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	// A caller-supplied context bypasses gathering; 5 days since the
	// last workout puts the decision in the comeback window.
	body := `{"user_id": "alice", "context": {"days_since_last_workout": 5}}`
	w := doJSON(t, h, "POST", "/api/rewards/check", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var result struct {
		Decision domain.RewardDecision `json:"decision"`
	}
	json.NewDecoder(w.Body).Decode(&result)
	if !result.Decision.ShouldSendReward {
		t.Fatal("expected a reward decision")
	}
	if result.Decision.RewardType != domain.RewardComebackEncourage {
		t.Errorf("type = %s, want comeback_encourage", result.Decision.RewardType)
	}
	if result.Decision.Priority != domain.PriorityHigh {
		t.Errorf("priority = %s, want high", result.Decision.Priority)
	}
}

func TestAPI_RewardCheckNeedsUser(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	w := doJSON(t, h, "POST", "/api/rewards/check", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAPI_RewardCheckCooldownInContext(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	// Last reward minutes ago: the cooldown rule must win even though
	// the comeback window matches.
	recent := time.Now().UTC().Add(-10 * time.Minute).Format(time.RFC3339)
	body := `{"user_id": "alice", "context": {"days_since_last_workout": 5, "last_reward_time": "` + recent + `"}}`
	w := doJSON(t, h, "POST", "/api/rewards/check", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var result struct {
		Decision domain.RewardDecision `json:"decision"`
	}
	json.NewDecoder(w.Body).Decode(&result)
	if result.Decision.ShouldSendReward {
		t.Errorf("cooldown should suppress, got %+v", result.Decision)
	}
}

func TestAPI_RewardCheckInvalidEngagement(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	body := `{"user_id": "alice", "context": {"days_since_last_workout": 5, "recent_engagement": "extreme"}}`
	w := doJSON(t, h, "POST", "/api/rewards/check", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "recent_engagement") {
		t.Errorf("body = %s, want engagement validation error", w.Body.String())
	}
}

func TestAPI_RewardHistory(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	w := doJSON(t, h, "GET", "/api/users/alice/rewards", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Rewards []domain.RewardLogEntry `json:"rewards"`
	}
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Rewards == nil || len(resp.Rewards) != 0 {
		t.Fatalf("fresh user rewards = %+v, want empty list", resp.Rewards)
	}

	body := `{"user_id": "alice", "context": {"days_since_last_workout": 5}}`
	if w := doJSON(t, h, "POST", "/api/rewards/check", body); w.Code != http.StatusOK {
		t.Fatalf("reward check status = %d", w.Code)
	}

	w = doJSON(t, h, "GET", "/api/users/alice/rewards", "")
	resp.Rewards = nil
	json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.Rewards) != 1 {
		t.Fatalf("rewards = %d, want 1", len(resp.Rewards))
	}
	if resp.Rewards[0].RewardType != domain.RewardComebackEncourage {
		t.Errorf("type = %s, want comeback_encourage", resp.Rewards[0].RewardType)
	}
}

// ─── Misc ───────────────────────────────────────────────────────────────────

func TestAPI_SummaryUnknownUser(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	w := doJSON(t, h, "GET", "/api/users/ghost/summary", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestAPI_CatalogEntry(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	w := doJSON(t, h, "GET", "/api/catalog/first_session", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var entry domain.CatalogEntry
	json.NewDecoder(w.Body).Decode(&entry)
	if entry.Name != "First Plank" {
		t.Errorf("name = %q, want First Plank", entry.Name)
	}

	w = doJSON(t, h, "GET", "/api/catalog/no_such_badge", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", w.Code)
	}
}

func TestAPI_CORSOrigins(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	// Unconfigured: any origin.
	w := doJSON(t, h, "GET", "/health", "")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("default allow-origin = %q, want *", got)
	}

	srv.SetCORSOrigins([]string{"https://app.planka.fit"})
	h = srv.Handler()

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "https://app.planka.fit")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.planka.fit" {
		t.Errorf("allow-origin = %q, want the configured origin", got)
	}

	req = httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow-origin = %q for unlisted origin, want unset", got)
	}
}
