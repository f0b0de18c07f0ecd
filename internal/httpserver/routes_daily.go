// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily mode.
// Exposes two endpoints under /daily:
//   - POST /daily/{title}/new         → start (or rejoin) today's board
//   - GET  /daily/{title}/leaderboard → top results for today (or ?date=)
//
// Every player gets the same board per title per day, seeded from date + salt.
// A player's first finished game of the day (won or lost) is kept in
// daily_results; after that /new answers played=true. Daily sessions cannot be
// restarted in place. Players are identified by an anonymous cookie.

package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arcade/internal/daily"
	"github.com/robalobadob/arcade/internal/games"
	"github.com/robalobadob/arcade/internal/store"
)

const anonCookieName = "arcade_anon"

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	mu       sync.Mutex        // guards sessions
	sessions map[string]string // player|date|title → session ID
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily() {
	dd := &dailyServer{srv: s, store: s.daily, sessions: make(map[string]string)}
	s.r.Route("/daily/{title}", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// ensureAnonID returns an existing anon cookie or sets a new one.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := store.NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     anonCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  s.opts.Now().Add(180 * 24 * time.Hour),
	})
	return id
}

// playedRes answers /new once today's result is in.
type playedRes struct {
	Date   string `json:"date"`
	Played bool   `json:"played"`
}

func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	in, err := games.Lookup(chi.URLParam(r, "title"))
	if err != nil {
		http.Error(w, `{"error":"unknown_title"}`, http.StatusNotFound)
		return
	}
	player := d.srv.ensureAnonID(w, r)
	now := d.srv.opts.Now()
	date := daily.DateKey(now)

	// Already played (persisted in DB).
	played, err := d.store.AlreadyPlayed(r.Context(), player, date, in.Title)
	if err != nil {
		log.Error().Err(err).Msg("daily already played")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	if played {
		_ = json.NewEncoder(w).Encode(playedRes{Date: date, Played: true})
		return
	}

	// Rejoin a live session for today.
	key := player + "|" + date + "|" + in.Title
	d.mu.Lock()
	defer d.mu.Unlock()
	if id, ok := d.sessions[key]; ok {
		if v, err := d.srv.store.Get(r.Context(), id); err == nil {
			res, err := d.srv.issue(id, v)
			if err != nil {
				http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
				return
			}
			res.Date = date
			_ = json.NewEncoder(w).Encode(res)
			return
		}
		delete(d.sessions, key)
	}

	seed := daily.Seed(now, d.srv.opts.DailySalt, in.Title)
	res, err := d.srv.createSession(r.Context(), in.Title, games.Deps{
		Recorder: d.store.Recorder(d.srv.rec, player, date),
		Seed:     seed,
		Watch:    d.store.LossWatcher(player, date, in.Title),
	}, true)
	if err != nil {
		log.Error().Err(err).Str("game", in.Title).Msg("create daily session")
		http.Error(w, `{"error":"create_failed"}`, http.StatusInternalServerError)
		return
	}
	d.sessions[key] = res.ID
	res.Date = date
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(res)
}

// lbRes is returned by /daily/{title}/leaderboard.
type lbRes struct {
	Title string  `json:"title"`
	Date  string  `json:"date"`
	Top   []lbRow `json:"top"`
}

type lbRow struct {
	daily.LBRow
	Score string `json:"score"`
}

func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	in, err := games.Lookup(chi.URLParam(r, "title"))
	if err != nil {
		http.Error(w, `{"error":"unknown_title"}`, http.StatusNotFound)
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.srv.opts.Now())
	}
	rows, err := d.store.Leaderboard(r.Context(), date, in.Title, in.SortDescending, queryInt(r, "limit", 20))
	if err != nil {
		log.Error().Err(err).Msg("daily leaderboard")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	out := lbRes{Title: in.Title, Date: date, Top: make([]lbRow, 0, len(rows))}
	for _, row := range rows {
		out.Top = append(out.Top, lbRow{LBRow: row, Score: in.FormatScore(row.Raw)})
	}
	_ = json.NewEncoder(w).Encode(out)
}
