package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/planka-fit/planka/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// ─── Database Lifecycle ─────────────────────────────────────────────────────

func TestOpen_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Join(dir, "planka.db")); os.IsNotExist(err) {
		t.Error("planka.db should exist")
	}
}

func TestOpen_Ping(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
}

// ─── Sessions ───────────────────────────────────────────────────────────────

func TestInsertSession_RoundTrip(t *testing.T) {
	db := newTestDB(t)

	at := time.Date(2026, 7, 1, 12, 30, 0, 0, time.UTC)
	sess := domain.Session{
		ID:              "s1",
		UserID:          "alice",
		Exercise:        "side plank",
		DurationSeconds: 75,
		CompletedAt:     at,
		Notes:           "felt strong",
	}
	if err := db.InsertSession(sess); err != nil {
		t.Fatalf("InsertSession() error: %v", err)
	}

	got, err := db.GetSession("s1")
	if err != nil {
		t.Fatalf("GetSession() error: %v", err)
	}
	if got == nil {
		t.Fatal("GetSession() returned nil")
	}
	if got.Exercise != "side plank" || got.DurationSeconds != 75 {
		t.Errorf("got %+v", got)
	}
	if !got.CompletedAt.Equal(at) {
		t.Errorf("CompletedAt = %v, want %v", got.CompletedAt, at)
	}
}

func TestGetSession_Missing(t *testing.T) {
	db := newTestDB(t)
	got, err := db.GetSession("nope")
	if err != nil {
		t.Fatalf("GetSession() error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing session, got %+v", got)
	}
}

func TestListSessions_NewestFirst(t *testing.T) {
	db := newTestDB(t)

	base := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_ = db.InsertSession(domain.Session{
			ID: string(rune('a' + i)), UserID: "alice", Exercise: "standard plank",
			DurationSeconds: 60, CompletedAt: base.AddDate(0, 0, i),
		})
	}

	sessions, err := db.ListSessions("alice")
	if err != nil {
		t.Fatalf("ListSessions() error: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("len = %d, want 3", len(sessions))
	}
	if sessions[0].ID != "c" || sessions[2].ID != "a" {
		t.Errorf("order = %s..%s, want c..a", sessions[0].ID, sessions[2].ID)
	}
}

func TestAppendSessionNote(t *testing.T) {
	db := newTestDB(t)

	_ = db.InsertSession(domain.Session{
		ID: "s1", UserID: "alice", Exercise: "standard plank",
		DurationSeconds: 60, CompletedAt: time.Now().UTC(),
	})

	if err := db.AppendSessionNote("s1", "shaky at the end"); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := db.AppendSessionNote("s1", "better form next time"); err != nil {
		t.Fatalf("second append: %v", err)
	}

	got, _ := db.GetSession("s1")
	want := "shaky at the end\nbetter form next time"
	if got.Notes != want {
		t.Errorf("Notes = %q, want %q", got.Notes, want)
	}
}

func TestAppendSessionNote_Missing(t *testing.T) {
	db := newTestDB(t)
	if err := db.AppendSessionNote("nope", "hi"); err != domain.ErrSessionNotFound {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestActiveUserIDs(t *testing.T) {
	db := newTestDB(t)

	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	_ = db.InsertSession(domain.Session{ID: "s1", UserID: "alice", Exercise: "standard plank", DurationSeconds: 60, CompletedAt: now})
	_ = db.InsertSession(domain.Session{ID: "s2", UserID: "bob", Exercise: "standard plank", DurationSeconds: 60, CompletedAt: now.AddDate(0, 0, -60)})

	ids, err := db.ActiveUserIDs(now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("ActiveUserIDs() error: %v", err)
	}
	if len(ids) != 1 || ids[0] != "alice" {
		t.Errorf("ids = %v, want [alice]", ids)
	}
}

// ─── Streaks ────────────────────────────────────────────────────────────────

func TestStreakRow_RoundTrip(t *testing.T) {
	db := newTestDB(t)

	got, err := db.GetStreak("alice")
	if err != nil {
		t.Fatalf("GetStreak() error: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil streak for fresh user")
	}

	day := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	s := domain.Streak{UserID: "alice", CurrentStreak: 4, LongestStreak: 9, LastWorkoutDate: day}
	if err := db.UpsertStreak(s); err != nil {
		t.Fatalf("UpsertStreak() error: %v", err)
	}

	got, err = db.GetStreak("alice")
	if err != nil {
		t.Fatalf("GetStreak() error: %v", err)
	}
	if got.CurrentStreak != 4 || got.LongestStreak != 9 {
		t.Errorf("got %+v", got)
	}
	if !got.LastWorkoutDate.Equal(day) {
		t.Errorf("LastWorkoutDate = %v, want %v", got.LastWorkoutDate, day)
	}

	// Upsert overwrites
	s.CurrentStreak = 5
	_ = db.UpsertStreak(s)
	got, _ = db.GetStreak("alice")
	if got.CurrentStreak != 5 {
		t.Errorf("after upsert CurrentStreak = %d, want 5", got.CurrentStreak)
	}
}

// ─── Achievements ───────────────────────────────────────────────────────────

func TestAwardAchievement_AtMostOnce(t *testing.T) {
	db := newTestDB(t)

	a := domain.UserAchievement{
		UserID: "alice", AchievementID: "first_session",
		AchievementName: "First Plank", EarnedAt: time.Now().UTC(),
	}

	isNew, err := db.AwardAchievement(a)
	if err != nil {
		t.Fatalf("AwardAchievement() error: %v", err)
	}
	if !isNew {
		t.Error("first award should be new")
	}

	isNew, err = db.AwardAchievement(a)
	if err != nil {
		t.Fatalf("second award: %v", err)
	}
	if isNew {
		t.Error("second award must be a no-op")
	}

	count, _ := db.AchievementCount("alice")
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestHasAchievement(t *testing.T) {
	db := newTestDB(t)

	ok, _ := db.HasAchievement("alice", "streak_7")
	if ok {
		t.Error("fresh user should own nothing")
	}

	_, _ = db.AwardAchievement(domain.UserAchievement{
		UserID: "alice", AchievementID: "streak_7",
		AchievementName: "Week One Done", EarnedAt: time.Now().UTC(),
	})

	ok, _ = db.HasAchievement("alice", "streak_7")
	if !ok {
		t.Error("expected ownership after award")
	}
	ok, _ = db.HasAchievement("bob", "streak_7")
	if ok {
		t.Error("awards must not leak across users")
	}
}

// ─── Reward Log ─────────────────────────────────────────────────────────────

func TestRewardLog(t *testing.T) {
	db := newTestDB(t)

	noon := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	if _, err := db.LogReward("alice", "streak_boost", noon); err != nil {
		t.Fatalf("LogReward() error: %v", err)
	}
	if _, err := db.LogReward("alice", "surprise_xp", noon.Add(time.Hour)); err != nil {
		t.Fatalf("LogReward() error: %v", err)
	}

	count, err := db.RewardCountSince("alice", noon)
	if err != nil {
		t.Fatalf("RewardCountSince() error: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	count, _ = db.RewardCountSince("alice", noon.Add(30*time.Minute))
	if count != 1 {
		t.Errorf("count since 12:30 = %d, want 1", count)
	}

	last, err := db.LastRewardTime("alice")
	if err != nil {
		t.Fatalf("LastRewardTime() error: %v", err)
	}
	if !last.Equal(noon.Add(time.Hour)) {
		t.Errorf("last = %v, want 13:00", last)
	}

	last, _ = db.LastRewardTime("bob")
	if !last.IsZero() {
		t.Errorf("fresh user last reward = %v, want zero", last)
	}
}

func TestListRewards(t *testing.T) {
	db := newTestDB(t)

	noon := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	for i, rt := range []string{"streak_boost", "surprise_xp", "milestone_nudge"} {
		if _, err := db.LogReward("alice", rt, noon.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("LogReward() error: %v", err)
		}
	}

	rewards, err := db.ListRewards("alice", 0)
	if err != nil {
		t.Fatalf("ListRewards() error: %v", err)
	}
	if len(rewards) != 3 {
		t.Fatalf("len = %d, want 3", len(rewards))
	}
	if rewards[0].RewardType != "milestone_nudge" || !rewards[0].SentAt.Equal(noon.Add(2*time.Hour)) {
		t.Errorf("newest = %s at %v, want milestone_nudge at 14:00", rewards[0].RewardType, rewards[0].SentAt)
	}
	if rewards[0].UserID != "alice" || rewards[0].ID == 0 {
		t.Errorf("entry = %+v, want populated user and row id", rewards[0])
	}

	limited, _ := db.ListRewards("alice", 2)
	if len(limited) != 2 || limited[1].RewardType != "surprise_xp" {
		t.Errorf("limited = %+v, want newest two", limited)
	}

	none, err := db.ListRewards("bob", 10)
	if err != nil {
		t.Fatalf("ListRewards() error: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("fresh user rewards = %d, want 0", len(none))
	}
}

// ─── Social Counters & Profile ──────────────────────────────────────────────

func TestIncrementSocial(t *testing.T) {
	db := newTestDB(t)

	c, err := db.GetSocialCounters("alice")
	if err != nil {
		t.Fatalf("GetSocialCounters() error: %v", err)
	}
	if c.CheersSent != 0 || c.Friends != 0 {
		t.Errorf("fresh counters = %+v, want zeroes", c)
	}

	_ = db.IncrementSocial("alice", "cheers_sent", 3)
	_ = db.IncrementSocial("alice", "cheers_sent", 2)
	_ = db.IncrementSocial("alice", "friends", 1)

	c, _ = db.GetSocialCounters("alice")
	if c.CheersSent != 5 {
		t.Errorf("CheersSent = %d, want 5", c.CheersSent)
	}
	if c.Friends != 1 {
		t.Errorf("Friends = %d, want 1", c.Friends)
	}
}

func TestProfileKV(t *testing.T) {
	db := newTestDB(t)

	v, err := db.GetProfile("alice", "xp")
	if err != nil {
		t.Fatalf("GetProfile() error: %v", err)
	}
	if v != "" {
		t.Errorf("missing key = %q, want empty", v)
	}

	_ = db.SetProfile("alice", "xp", "150")
	_ = db.SetProfile("alice", "xp", "200") // overwrite

	v, _ = db.GetProfile("alice", "xp")
	if v != "200" {
		t.Errorf("xp = %q, want 200", v)
	}

	v, _ = db.GetProfile("bob", "xp")
	if v != "" {
		t.Error("profile values must not leak across users")
	}
}
