// internal/httpserver/server.go
//
// HTTP host for the arcade engines.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/games", "/metrics".
//   - Session endpoints (token required): input events, pause, snapshot,
//     restart, close, and the websocket event stream.
//   - Score listing per title, and the daily mode under /daily.
//
// Notes:
//   - The host renders nothing. Input arrives as discrete JSON events and
//     presentation updates leave as JSON messages on the websocket.
//   - One player per session; sessions share nothing but the score recorder.

package httpserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robalobadob/arcade/internal/daily"
	"github.com/robalobadob/arcade/internal/games"
	"github.com/robalobadob/arcade/internal/scores"
	"github.com/robalobadob/arcade/internal/session"
	"github.com/robalobadob/arcade/internal/store"
)

// Options configure a Server. Zero values get defaults in New.
type Options struct {
	Settings     games.Settings
	Seed         int64 // 0 seeds every game from the clock
	JWTSecret    string
	ClientOrigin string
	DailySalt    string
	Scheduler    session.Scheduler // nil means real timers
	Now          func() time.Time
}

// Server bundles router, live sessions, recorder and event hub.
type Server struct {
	r     *chi.Mux
	store store.Store
	rec   scores.Recorder
	daily *daily.Store // nil disables /daily
	hub   *Hub
	opts  Options

	lockMu sync.Mutex
	locked map[string]struct{} // sessions that cannot be restarted
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, rec scores.Recorder, dd *daily.Store, opts Options) *Server {
	if opts.Settings.Minesweeper.Width == 0 && opts.Settings.Snake.Width == 0 {
		opts.Settings = games.DefaultSettings()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.JWTSecret == "" {
		opts.JWTSecret = "dev_secret_change_me"
	}
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	if opts.DailySalt == "" {
		opts.DailySalt = "local_dev_salt"
	}
	s := &Server{
		r:      chi.NewRouter(),
		store:  st,
		rec:    rec,
		daily:  dd,
		hub:    NewHub(),
		opts:   opts,
		locked: make(map[string]struct{}),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(cors(opts.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"arcade","endpoints":["/health","/games","POST /games/{title}/new","/sessions/{id}/*","/scores/{title}","/daily/*","/metrics"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Handle("/metrics", promhttp.Handler())

	s.mountGames()
	s.mountScores()
	if s.daily != nil {
		s.mountDaily()
	}

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})
	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

func (s *Server) lock(id string) {
	s.lockMu.Lock()
	s.locked[id] = struct{}{}
	s.lockMu.Unlock()
}

func (s *Server) unlock(id string) {
	s.lockMu.Lock()
	delete(s.locked, id)
	s.lockMu.Unlock()
}

func (s *Server) isLocked(id string) bool {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	_, ok := s.locked[id]
	return ok
}

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
