// internal/httpserver/server.go
//
// HTTP server wiring for the Funfair backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/metrics".
//   - Session endpoints (optional auth): /sessions/* for navigation, the nine games and the tutor.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + progress endpoints: /auth/*, /progress/me.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Every session request runs under that session's lock (plus the Redis
//     lock when sessions are shared); the only work done outside it is
//     waiting for the assistant.

package httpserver

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/ashkam58/pythongrade3/internal/config"
	"github.com/ashkam58/pythongrade3/internal/curriculum"
	"github.com/ashkam58/pythongrade3/internal/daily"
	"github.com/ashkam58/pythongrade3/internal/game"
	"github.com/ashkam58/pythongrade3/internal/metrics"
	"github.com/ashkam58/pythongrade3/internal/progress"
	"github.com/ashkam58/pythongrade3/internal/store"
	"github.com/ashkam58/pythongrade3/internal/tutor"
)

// Assistant is the model backend: tutoring plus Bug Smash generation.
type Assistant interface {
	tutor.Assistant
	GenerateBug(ctx context.Context) (game.BugDraft, error)
}

// Deps are the collaborators a Server needs.
type Deps struct {
	Config    config.Config
	Sessions  store.Store
	DB        *sql.DB
	Content   *curriculum.Content
	Assistant Assistant
	Metrics   *metrics.Recorder

	// Locker, when set, also serializes each session across processes.
	Locker store.Locker

	// Rand and Now default to the global source and time.Now.
	Rand game.Rand
	Now  func() time.Time
}

// Server bundles router, session store, database-backed stores and the assistant.
type Server struct {
	r         *chi.Mux
	cfg       config.Config
	sessions  store.Store
	learners  *progress.Store
	daily     *daily.Store
	content   *curriculum.Content
	assistant Assistant
	metrics   *metrics.Recorder
	rnd       game.Rand
	now       func() time.Time
	locks     *keyedMutex
	locker    store.Locker
	calls     *inflight
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{
		r:         chi.NewRouter(),
		cfg:       d.Config,
		sessions:  d.Sessions,
		learners:  progress.NewStore(d.DB),
		daily:     daily.NewStore(d.DB),
		content:   d.Content,
		assistant: d.Assistant,
		metrics:   d.Metrics,
		rnd:       d.Rand,
		now:       d.Now,
		locks:     newKeyedMutex(),
		locker:    d.Locker,
		calls:     newInflight(),
	}
	if s.rnd == nil {
		s.rnd = game.DefaultRand
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	timeout := d.Config.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(accessLog)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(timeout))
	s.r.Use(jsonContentType)
	s.r.Use(cors(d.Config.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "python-funfair",
			"endpoints": []string{"/health", "/metrics", "POST /sessions", "/sessions/{id}/*", "/daily/*", "/auth/*", "/progress/me"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	// Sessions and Daily Challenge: OPTIONAL AUTH (guests can play)
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		s.mountSessions(r)
		s.mountDaily(r)
		r.Get("/progress/me", s.handleProgress)
	})

	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Message: r.URL.Path})
	})
	return s
}

// Handler returns the root handler for an http.Server.
func (s *Server) Handler() http.Handler { return s.r }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// accessLog writes one zerolog line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("requestId", chimw.GetReqID(r.Context())).
			Msg("http")
	})
}
