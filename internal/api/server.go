// Package api serves the application over a JSON HTTP API.
package api

import (
	"context"
	"net/http"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/julianstephens/reto21d/internal/app"
	"github.com/julianstephens/reto21d/internal/constants"
	"github.com/julianstephens/reto21d/internal/logger"
)

type Config struct {
	Addr string
	// Token, when set, is required as a bearer token on /api/v1
	Token          string
	AllowedOrigins []string
	RateLimit      rate.Limit
	RateBurst      int
	RequestTimeout time.Duration
	// TrustProxy takes the client address from X-Forwarded-For and
	// X-Real-IP. Only set it behind a reverse proxy that overwrites them.
	TrustProxy bool
}

type Server struct {
	app     *app.App
	cfg     Config
	limiter *rateLimiter
	router  *mux.Router
}

func New(a *app.App, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = constants.DefaultListenAddr
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = constants.DefaultRateLimit
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = constants.DefaultRateBurst
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 5 * time.Second
	}

	s := &Server{
		app:     a,
		cfg:     cfg,
		limiter: newRateLimiter(cfg.RateLimit, cfg.RateBurst),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := mux.NewRouter()
	if s.app.Metrics != nil {
		r.Use(s.app.Metrics.Middleware)
		r.Handle("/metrics", s.app.Metrics.Handler()).Methods("GET")
	}
	r.HandleFunc("/health", s.health).Methods("GET")

	v1 := r.PathPrefix("/api/v1").Subrouter()
	if s.cfg.TrustProxy {
		v1.Use(gorillaHandlers.ProxyHeaders)
	}
	v1.Use(s.limiter.Middleware)
	v1.Use(bearerAuth(s.cfg.Token))
	v1.Use(requestTimeout(s.cfg.RequestTimeout))

	v1.HandleFunc("/summary", s.getSummary).Methods("GET")

	v1.HandleFunc("/habits", s.listHabits).Methods("GET")
	v1.HandleFunc("/habits", s.createHabit).Methods("POST")
	v1.HandleFunc("/habits/{id:[0-9]+}", s.getHabit).Methods("GET")
	v1.HandleFunc("/habits/{id:[0-9]+}", s.updateHabit).Methods("PUT")
	v1.HandleFunc("/habits/{id:[0-9]+}", s.deleteHabit).Methods("DELETE")
	v1.HandleFunc("/habits/{id:[0-9]+}/toggle", s.toggleHabit).Methods("POST")
	v1.HandleFunc("/habits/{id:[0-9]+}/streaks", s.habitStreaks).Methods("GET")

	v1.HandleFunc("/challenges", s.listChallenges).Methods("GET")
	v1.HandleFunc("/challenges", s.startChallenge).Methods("POST")
	v1.HandleFunc("/challenges/active", s.activeChallenge).Methods("GET")
	v1.HandleFunc("/challenges/active/days", s.completeDay).Methods("POST")
	v1.HandleFunc("/challenges/{id:[0-9]+}", s.updateChallenge).Methods("PUT")
	v1.HandleFunc("/challenges/{id:[0-9]+}", s.deleteChallenge).Methods("DELETE")
	v1.HandleFunc("/challenges/{id:[0-9]+}/mini-challenges", s.listMiniChallenges).Methods("GET")
	v1.HandleFunc("/mini-challenges/{id:[0-9]+}/complete", s.completeMiniChallenge).Methods("POST")

	v1.HandleFunc("/progress", s.listProgress).Methods("GET")
	v1.HandleFunc("/progress/trend", s.progressTrend).Methods("GET")
	v1.HandleFunc("/progress/weekly", s.weeklyComparison).Methods("GET")

	v1.HandleFunc("/points", s.getPoints).Methods("GET")
	v1.HandleFunc("/points/history", s.pointsHistory).Methods("GET")
	v1.HandleFunc("/points/moments", s.recordMoment).Methods("POST")

	v1.HandleFunc("/achievements", s.listAchievements).Methods("GET")
	v1.HandleFunc("/achievements/check", s.checkAchievements).Methods("POST")
	v1.HandleFunc("/achievements/{key}/progress", s.achievementProgress).Methods("GET")

	v1.HandleFunc("/notifications/settings", s.getNotificationSettings).Methods("GET")
	v1.HandleFunc("/notifications/settings", s.saveNotificationSettings).Methods("PUT")
	v1.HandleFunc("/notifications/test", s.testNotification).Methods("POST")

	v1.HandleFunc("/assessments/compare", s.compareAssessments).Methods("GET")
	v1.HandleFunc("/assessments/{kind}", s.getAssessment).Methods("GET")
	v1.HandleFunc("/assessments/{kind}", s.saveAssessment).Methods("PUT")
	v1.HandleFunc("/assessments/{kind}/complete", s.completeAssessment).Methods("POST")

	v1.HandleFunc("/privacy/consents", s.getConsents).Methods("GET")
	v1.HandleFunc("/privacy/consents/{name}", s.updateConsent).Methods("PUT")
	v1.HandleFunc("/privacy/export", s.exportData).Methods("GET")
	v1.HandleFunc("/privacy/deletion-requests", s.listDeletionRequests).Methods("GET")
	v1.HandleFunc("/privacy/deletion-requests", s.requestDeletion).Methods("POST")
	v1.HandleFunc("/privacy/data", s.clearData).Methods("DELETE")

	s.router = r
}

// Handler is the router wrapped in the CORS policy
func (s *Server) Handler() http.Handler {
	cors := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(s.cfg.AllowedOrigins),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length", "Content-Disposition"}),
	)
	return cors(s.router)
}

// Serve listens until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  constants.DefaultReadTimeout * time.Second,
		WriteTimeout: constants.DefaultWriteTimeout * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go s.limiter.cleanup(cleanupCtx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", s.cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
		return err
	}
	logger.Info("Server shutdown complete")
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if _, err := s.app.Habits.GetAll(r.Context()); err != nil {
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok", "date": s.app.Today()})
}
