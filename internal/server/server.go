// Package server exposes habit sessions over a JSON HTTP API. Each session id
// owns an isolated engine state and login gate.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lifequest/internal/auth"
	"lifequest/internal/config"
	"lifequest/internal/engine"
	"lifequest/internal/metrics"
)

const (
	sessionCookie = "lq_session"
	sessionHeader = "X-Session-ID"
)

type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	auth     *auth.Service
	metrics  *metrics.Metrics
	sessions *SessionManager
	limiter  *RateLimiter
	router   *mux.Router
}

func New(cfg *config.Config, authSvc *auth.Service, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		auth:    authSvc,
		metrics: m,
		limiter: NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst, logger),
	}
	s.sessions = NewSessionManager(s.newSession)
	s.sessions.onCount = m.SetSessions
	s.sessions.onEvict = s.limiter.Forget
	s.limiter.known = s.sessions.Has
	s.router = s.routes()
	return s
}

func (s *Server) Sessions() *SessionManager { return s.sessions }

func (s *Server) newSession() (*engine.Session, *auth.Gate) {
	gate := auth.NewGate(s.auth)
	sess := engine.NewSession(engine.NewState(s.cfg.EngineOptions()), gate)
	sess.OnChange(s.metrics.Listener())
	return sess, gate
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.UseEncodedPath()
	r.Use(s.logRequests, s.metrics.InstrumentHandler, s.limiter.Handler)

	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/session", s.handleCreateSession).Methods(http.MethodPost)
	api.HandleFunc("/session", s.withSession(s.handleEndSession)).Methods(http.MethodDelete)
	api.HandleFunc("/signup", s.withSession(s.handleSignup)).Methods(http.MethodPost)
	api.HandleFunc("/login", s.withSession(s.handleLogin)).Methods(http.MethodPost)
	api.HandleFunc("/logout", s.withSession(s.handleLogout)).Methods(http.MethodPost)

	api.HandleFunc("/state", s.withSession(s.handleState)).Methods(http.MethodGet)
	api.HandleFunc("/progress", s.withSession(s.handleProgress)).Methods(http.MethodGet)

	api.HandleFunc("/habits", s.withSession(s.handleAddHabit)).Methods(http.MethodPost)
	api.HandleFunc("/habits/{name}", s.withSession(s.handleNamed(engine.CmdDeleteHabit))).Methods(http.MethodDelete)
	api.HandleFunc("/habits/{name}/complete", s.withSession(s.handleNamed(engine.CmdComplete))).Methods(http.MethodPost)
	api.HandleFunc("/habits/{name}/uncomplete", s.withSession(s.handleNamed(engine.CmdUncomplete))).Methods(http.MethodPost)

	api.HandleFunc("/rewards", s.withSession(s.handleAddReward)).Methods(http.MethodPost)
	api.HandleFunc("/rewards/{name}", s.withSession(s.handleNamed(engine.CmdDeleteReward))).Methods(http.MethodDelete)
	api.HandleFunc("/rewards/{name}/redeem", s.withSession(s.handleNamed(engine.CmdRedeem))).Methods(http.MethodPost)

	api.HandleFunc("/reset/{scope}", s.withSession(s.handleReset)).Methods(http.MethodPost)
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	loc, err := s.cfg.Location()
	if err != nil {
		return err
	}
	sweeper, err := NewSweeper(s.cfg.Server.SweepSchedule, loc, s.sessions, s.cfg.GetSessionTTL(), s.logger)
	if err != nil {
		return err
	}
	sweeper.Start()
	defer sweeper.Stop()

	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
