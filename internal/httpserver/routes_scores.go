// internal/httpserver/routes_scores.go
//
// GET /scores/{title}?limit=N&min=S&max=S → ranked score history for a
// title, best first, with each score formatted the way the game shows it.
// min and max are inclusive bounds written in that same format ("01:30" for
// Minesweeper, "12" for Snake).

package httpserver

import (
	"encoding/json"
	"math"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arcade/internal/games"
	"github.com/robalobadob/arcade/internal/scores"
)

const defaultScoreLimit = 20

func (s *Server) mountScores() {
	s.r.Get("/scores/{title}", s.handleScores)
}

type scoreRow struct {
	Rank  int       `json:"rank"`
	Score string    `json:"score"`
	Raw   float64   `json:"raw"`
	At    time.Time `json:"at"`
}

type scoresRes struct {
	Title      string     `json:"title"`
	Descending bool       `json:"descending"`
	Lines      []string   `json:"lines"`
	Entries    []scoreRow `json:"entries"`
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	in, err := games.Lookup(chi.URLParam(r, "title"))
	if err != nil {
		http.Error(w, `{"error":"unknown_title"}`, http.StatusNotFound)
		return
	}
	limit := queryInt(r, "limit", defaultScoreLimit)
	lo, hi, err := scoreBounds(r, in)
	if err != nil {
		http.Error(w, `{"error":"bad_score"}`, http.StatusBadRequest)
		return
	}

	res := scoresRes{Title: in.Title, Descending: in.SortDescending, Lines: []string{}, Entries: []scoreRow{}}
	if s.rec != nil {
		es, err := s.rec.History(r.Context(), in.Title, in.SortDescending)
		if err != nil {
			log.Error().Err(err).Str("game", in.Title).Msg("score history")
			http.Error(w, `{"error":"history_failed"}`, http.StatusInternalServerError)
			return
		}
		es = slices.DeleteFunc(es, func(e scores.Entry) bool { return e.Raw < lo || e.Raw > hi })
		if limit > 0 && len(es) > limit {
			es = es[:limit]
		}
		res.Lines = scores.Ranked(es, in.FormatScore)
		for i, e := range es {
			res.Entries = append(res.Entries, scoreRow{Rank: i + 1, Score: in.FormatScore(e.Raw), Raw: e.Raw, At: e.At})
		}
	}
	_ = json.NewEncoder(w).Encode(res)
}

// queryInt reads a positive integer query parameter, or def.
func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// scoreBounds parses the optional min and max filters with the title's own
// score parser. Missing bounds are open.
func scoreBounds(r *http.Request, in games.Info) (lo, hi float64, err error) {
	lo, hi = math.Inf(-1), math.Inf(1)
	q := r.URL.Query()
	if v := q.Get("min"); v != "" {
		if lo, err = in.ParseScore(v); err != nil {
			return 0, 0, err
		}
	}
	if v := q.Get("max"); v != "" {
		if hi, err = in.ParseScore(v); err != nil {
			return 0, 0, err
		}
	}
	return lo, hi, nil
}
