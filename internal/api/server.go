// Package api provides the Planka HTTP server: session recording (which
// drives the evaluation chain), engagement reads, social counters, and
// the reward-timing check endpoint.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/planka-fit/planka/internal/app/engagement"
	"github.com/planka-fit/planka/internal/infra/sqlite"
)

// Server is the Planka HTTP API server.
type Server struct {
	db           *sqlite.DB
	streaks      *engagement.StreakService
	achievements *engagement.AchievementService
	hidden       *engagement.HiddenService
	rewards      *engagement.RewardService
	profiles     *engagement.ProfileService

	metricsEnabled bool
	corsOrigins    []string
}

// NewServer creates an API server over the engagement services.
func NewServer(db *sqlite.DB, streaks *engagement.StreakService,
	achievements *engagement.AchievementService, hidden *engagement.HiddenService,
	rewards *engagement.RewardService, profiles *engagement.ProfileService) *Server {
	return &Server{
		db:           db,
		streaks:      streaks,
		achievements: achievements,
		hidden:       hidden,
		rewards:      rewards,
		profiles:     profiles,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetCORSOrigins restricts CORS to the given origins. Empty (or a "*"
// entry) allows any origin.
func (s *Server) SetCORSOrigins(origins []string) { s.corsOrigins = origins }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Post("/sessions", s.handleRecordSession)
			r.Get("/sessions", s.handleListSessions)
			r.Post("/sessions/{sessionID}/feedback", s.handleSessionFeedback)
			r.Get("/streak", s.handleStreak)
			r.Get("/achievements", s.handleAchievements)
			r.Get("/stats", s.handleStats)
			r.Get("/summary", s.handleSummary)
			r.Post("/cheers", s.handleCheers)
			r.Post("/friends", s.handleFriends)
			r.Get("/rewards", s.handleRewardHistory)
			r.Post("/rewards/check", s.handleUserRewardCheck)
		})

		r.Get("/catalog", s.handleCatalog)
		r.Get("/catalog/{achievementID}", s.handleCatalogEntry)
		r.Post("/rewards/check", s.handleRewardCheck)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for the mobile/web clients. With
// configured origins only a matching Origin is echoed back; otherwise
// any origin is allowed.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowedOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if origin != "*" {
				w.Header().Set("Vary", "Origin")
			}
		}
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// allowedOrigin resolves the Access-Control-Allow-Origin value for a
// request origin, or "" when the origin is not allowed.
func (s *Server) allowedOrigin(origin string) string {
	if len(s.corsOrigins) == 0 {
		return "*"
	}
	for _, o := range s.corsOrigins {
		if o == "*" {
			return "*"
		}
		if o == origin && origin != "" {
			return origin
		}
	}
	return ""
}
