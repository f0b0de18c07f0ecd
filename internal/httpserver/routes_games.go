// internal/httpserver/routes_games.go
//
// Game session routes.
//   - GET    /games                      → playable titles
//   - POST   /games/{title}/new          → start a session, returns id + token
//   - GET    /sessions/{id}              → snapshot
//   - DELETE /sessions/{id}              → close the session
//   - POST   /sessions/{id}/new          → restart the game in place (409 on daily boards)
//   - POST   /sessions/{id}/pause        → toggle pause
//   - POST   /sessions/{id}/primary      → Minesweeper reveal   {x,y}
//   - POST   /sessions/{id}/secondary    → Minesweeper flag     {x,y}
//   - POST   /sessions/{id}/double       → Minesweeper chord    {x,y}
//   - POST   /sessions/{id}/direction    → Snake steer          {dir} or {x,y}
//   - GET    /sessions/{id}/events       → websocket event stream
//
// Input a game does not understand is a 400; input the game ignores (wrong
// state, reversal, already revealed) is a 200 with accepted=false.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arcade/internal/games"
	"github.com/robalobadob/arcade/internal/grid"
	"github.com/robalobadob/arcade/internal/metrics"
	"github.com/robalobadob/arcade/internal/minesweeper"
	"github.com/robalobadob/arcade/internal/session"
	"github.com/robalobadob/arcade/internal/snake"
	"github.com/robalobadob/arcade/internal/store"
)

// Input capabilities, checked per variant.
type minefield interface {
	PrimaryAction(c grid.Coord) minesweeper.Result
	SecondaryAction(c grid.Coord) bool
	DoubleAction(c grid.Coord) minesweeper.Result
}

type steerable interface {
	DirectionInput(d grid.Coord) bool
}

var namedDirections = map[string]grid.Coord{
	"up":    snake.Up,
	"down":  snake.Down,
	"left":  snake.Left,
	"right": snake.Right,
}

func (s *Server) mountGames() {
	s.r.Get("/games", s.handleTitles)
	s.r.Post("/games/{title}/new", s.handleNewGame)

	s.r.Route("/sessions/{id}", func(r chi.Router) {
		r.Use(s.requireSession())
		r.Get("/", s.handleSnapshot)
		r.Delete("/", s.handleClose)
		r.Post("/new", s.handleRestart)
		r.Post("/pause", s.handlePause)
		r.Post("/primary", s.handleCell("primary"))
		r.Post("/secondary", s.handleCell("secondary"))
		r.Post("/double", s.handleCell("double"))
		r.Post("/direction", s.handleDirection)
		r.Get("/events", s.handleEvents)
	})
}

type titleRes struct {
	Title          string `json:"title"`
	SortDescending bool   `json:"sortDescending"`
}

func (s *Server) handleTitles(w http.ResponseWriter, r *http.Request) {
	out := []titleRes{}
	for _, t := range games.Titles() {
		in, _ := games.Lookup(t)
		out = append(out, titleRes{Title: in.Title, SortDescending: in.SortDescending})
	}
	_ = json.NewEncoder(w).Encode(out)
}

// newGameRes is returned whenever a session is created or rejoined.
type newGameRes struct {
	ID        string         `json:"id"`
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Snapshot  games.Snapshot `json:"snapshot"`
	Date      string         `json:"date,omitempty"` // daily only
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	in, err := games.Lookup(chi.URLParam(r, "title"))
	if err != nil {
		http.Error(w, `{"error":"unknown_title"}`, http.StatusNotFound)
		return
	}
	res, err := s.createSession(r.Context(), in.Title, games.Deps{Recorder: s.rec, Seed: s.opts.Seed}, false)
	if err != nil {
		log.Error().Err(err).Str("game", in.Title).Msg("create session")
		http.Error(w, `{"error":"create_failed"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(res)
}

// createSession builds a variant wired to the hub, stores it and issues its
// token. deps supplies the recorder, seed and watcher; the host fills in the
// rest. A locked session refuses restarts.
func (s *Server) createSession(ctx context.Context, title string, deps games.Deps, locked bool) (newGameRes, error) {
	id := store.NewID()
	deps.Publisher = s.hub.Publisher(id)
	deps.Scheduler = s.opts.Scheduler
	deps.Clock = s.opts.Now
	v, err := games.New(title, s.opts.Settings, deps)
	if err != nil {
		return newGameRes{}, fmt.Errorf("new %s: %w", title, err)
	}
	if err := s.store.Save(ctx, id, v); err != nil {
		v.Close()
		return newGameRes{}, fmt.Errorf("save session: %w", err)
	}
	res, err := s.issue(id, v)
	if err != nil {
		_ = s.store.Delete(ctx, id)
		return newGameRes{}, err
	}
	if locked {
		s.lock(id)
	}
	log.Info().Str("session", id).Str("game", v.Title()).Msg("session started")
	return res, nil
}

func (s *Server) issue(id string, v games.Variant) (newGameRes, error) {
	tok, exp, err := s.signSessionToken(id, v.Title())
	if err != nil {
		return newGameRes{}, fmt.Errorf("sign token: %w", err)
	}
	return newGameRes{ID: id, Token: tok, ExpiresAt: exp, Snapshot: v.Snapshot()}, nil
}

// variant loads the session named in the URL or answers 404.
func (s *Server) variant(w http.ResponseWriter, r *http.Request) (games.Variant, string, bool) {
	id := chi.URLParam(r, "id")
	v, err := s.store.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).Str("session", id).Msg("load session")
		}
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return nil, "", false
	}
	return v, id, true
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	v, _, ok := s.variant(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(v.Snapshot())
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	v, id, ok := s.variant(w, r)
	if !ok {
		return
	}
	s.hub.CloseSession(id)
	s.unlock(id)
	if err := s.store.Delete(r.Context(), id); err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	log.Info().Str("session", id).Str("game", v.Title()).Msg("session closed")
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	v, id, ok := s.variant(w, r)
	if !ok {
		return
	}
	if s.isLocked(id) {
		http.Error(w, `{"error":"daily_locked"}`, http.StatusConflict)
		return
	}
	if err := v.NewGame(); err != nil {
		log.Error().Err(err).Str("session", id).Msg("restart game")
		http.Error(w, `{"error":"restart_failed"}`, http.StatusInternalServerError)
		return
	}
	metrics.Actions.WithLabelValues(v.Title(), "new").Inc()
	_ = json.NewEncoder(w).Encode(v.Snapshot())
}

type pauseRes struct {
	State session.State `json:"state"`
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	v, _, ok := s.variant(w, r)
	if !ok {
		return
	}
	metrics.Actions.WithLabelValues(v.Title(), "pause").Inc()
	_ = json.NewEncoder(w).Encode(pauseRes{State: v.TogglePause()})
}

type cellReq struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// actionRes reports what an input event did.
type actionRes struct {
	Accepted bool          `json:"accepted"`
	Started  bool          `json:"started,omitempty"`
	Revealed int           `json:"revealed,omitempty"`
	Outcome  string        `json:"outcome,omitempty"`
	State    session.State `json:"state"`
}

func (s *Server) handleCell(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _, ok := s.variant(w, r)
		if !ok {
			return
		}
		mf, ok := v.(minefield)
		if !ok {
			http.Error(w, `{"error":"unsupported_action"}`, http.StatusBadRequest)
			return
		}
		var req cellReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
			return
		}
		c := grid.C(req.X, req.Y)

		var res actionRes
		switch action {
		case "secondary":
			res.Accepted = mf.SecondaryAction(c)
		default:
			var out minesweeper.Result
			if action == "double" {
				out = mf.DoubleAction(c)
			} else {
				out = mf.PrimaryAction(c)
			}
			res.Accepted = out.Revealed > 0
			res.Started = out.Started
			res.Revealed = out.Revealed
			res.Outcome = out.Outcome.String()
		}
		if res.Accepted {
			metrics.Actions.WithLabelValues(v.Title(), action).Inc()
		}
		res.State = v.State()
		_ = json.NewEncoder(w).Encode(res)
	}
}

type dirReq struct {
	Dir string `json:"dir"`
	X   int    `json:"x"`
	Y   int    `json:"y"`
}

func (s *Server) handleDirection(w http.ResponseWriter, r *http.Request) {
	v, _, ok := s.variant(w, r)
	if !ok {
		return
	}
	sv, ok := v.(steerable)
	if !ok {
		http.Error(w, `{"error":"unsupported_action"}`, http.StatusBadRequest)
		return
	}
	var req dirReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	d := grid.C(req.X, req.Y)
	if req.Dir != "" {
		nd, ok := namedDirections[strings.ToLower(req.Dir)]
		if !ok {
			http.Error(w, `{"error":"bad_direction"}`, http.StatusBadRequest)
			return
		}
		d = nd
	}
	res := actionRes{Accepted: sv.DirectionInput(d)}
	if res.Accepted {
		metrics.Actions.WithLabelValues(v.Title(), "direction").Inc()
	}
	res.State = v.State()
	_ = json.NewEncoder(w).Encode(res)
}

// snapshotMsg is the first message on every event stream.
type snapshotMsg struct {
	Type     string         `json:"type"`
	Snapshot games.Snapshot `json:"snapshot"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	v, id, ok := s.variant(w, r)
	if !ok {
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			o := r.Header.Get("Origin")
			return o == "" || o == s.opts.ClientOrigin
		},
	}
	first, err := json.Marshal(snapshotMsg{Type: "snapshot", Snapshot: v.Snapshot()})
	if err != nil {
		http.Error(w, `{"error":"snapshot_failed"}`, http.StatusInternalServerError)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Str("session", id).Msg("websocket upgrade")
		return
	}
	s.hub.Subscribe(id, conn, first)
}
