package httpserver

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	_ "github.com/mattn/go-sqlite3"

	"github.com/robalobadob/arcade/assets"
	"github.com/robalobadob/arcade/internal/daily"
	"github.com/robalobadob/arcade/internal/games"
	"github.com/robalobadob/arcade/internal/minesweeper"
	"github.com/robalobadob/arcade/internal/scores"
	"github.com/robalobadob/arcade/internal/session"
	"github.com/robalobadob/arcade/internal/snake"
	"github.com/robalobadob/arcade/internal/store"
)

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

// idleScheduler never fires; the host tests drive input, not time.
type idleScheduler struct{}

func (idleScheduler) Start(time.Duration, session.TickFunc) session.Handle { return idleHandle{} }

type idleHandle struct{}

func (idleHandle) Pause()        {}
func (idleHandle) Resume()       {}
func (idleHandle) Cancel()       {}
func (idleHandle) Running() bool { return false }

func newTestServer(t *testing.T, set games.Settings, dd *daily.Store) (*Server, *scores.Memory) {
	t.Helper()
	rec := scores.NewMemory()
	s := New(store.NewMemoryStore(), rec, dd, Options{
		Settings:  set,
		Seed:      7,
		JWTSecret: "test_secret",
		Scheduler: idleScheduler{},
		Now:       func() time.Time { return testNow },
	})
	return s, rec
}

func do(t *testing.T, s *Server, method, path, token string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func start(t *testing.T, s *Server, title string) newGameRes {
	t.Helper()
	w := do(t, s, http.MethodPost, "/games/"+title+"/new", "", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("new %s: %d %s", title, w.Code, w.Body.String())
	}
	res := decode[newGameRes](t, w)
	if res.ID == "" || res.Token == "" {
		t.Fatalf("new %s: %+v", title, res)
	}
	return res
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, games.DefaultSettings(), nil)
	w := do(t, s, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("health: %d %s", w.Code, w.Body.String())
	}
	w = do(t, s, http.MethodGet, "/games", "", nil)
	titles := decode[[]titleRes](t, w)
	if len(titles) != 2 || titles[0].Title != games.TitleMinesweeper || !titles[1].SortDescending {
		t.Fatalf("titles=%+v", titles)
	}
}

func TestNewGameUnknownTitle(t *testing.T) {
	s, _ := newTestServer(t, games.DefaultSettings(), nil)
	if w := do(t, s, http.MethodPost, "/games/tetris/new", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("code=%d", w.Code)
	}
}

func TestSessionRequiresItsOwnToken(t *testing.T) {
	s, _ := newTestServer(t, games.DefaultSettings(), nil)
	a := start(t, s, "minesweeper")
	b := start(t, s, "snake")

	if w := do(t, s, http.MethodGet, "/sessions/"+a.ID, "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", w.Code)
	}
	if w := do(t, s, http.MethodGet, "/sessions/"+a.ID, b.Token, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("other session's token: %d", w.Code)
	}
	if w := do(t, s, http.MethodGet, "/sessions/"+a.ID, "garbage", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: %d", w.Code)
	}
	w := do(t, s, http.MethodGet, "/sessions/"+a.ID+"?token="+a.Token, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("query token: %d", w.Code)
	}
	snap := decode[games.Snapshot](t, w)
	if snap.Title != games.TitleMinesweeper || snap.State != session.None || snap.Mines == nil {
		t.Fatalf("snapshot=%+v", snap)
	}
}

func TestMinesweeperActions(t *testing.T) {
	s, _ := newTestServer(t, games.DefaultSettings(), nil)
	g := start(t, s, "Minesweeper")
	path := "/sessions/" + g.ID

	w := do(t, s, http.MethodPost, path+"/primary", g.Token, cellReq{X: 5, Y: 5})
	res := decode[actionRes](t, w)
	if !res.Accepted || !res.Started || res.State != session.Running {
		t.Fatalf("primary=%+v", res)
	}
	// Revealing the same cell again does nothing.
	res = decode[actionRes](t, do(t, s, http.MethodPost, path+"/primary", g.Token, cellReq{X: 5, Y: 5}))
	if res.Accepted {
		t.Fatalf("repeat reveal accepted: %+v", res)
	}
	if w := do(t, s, http.MethodPost, path+"/direction", g.Token, dirReq{Dir: "up"}); w.Code != http.StatusBadRequest {
		t.Fatalf("direction on minesweeper: %d", w.Code)
	}
	if w := do(t, s, http.MethodPost, path+"/primary", g.Token, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("empty body: %d", w.Code)
	}

	p := decode[pauseRes](t, do(t, s, http.MethodPost, path+"/pause", g.Token, nil))
	if p.State != session.Paused {
		t.Fatalf("pause=%v", p.State)
	}
	res = decode[actionRes](t, do(t, s, http.MethodPost, path+"/secondary", g.Token, cellReq{X: 0, Y: 0}))
	if res.Accepted || res.State != session.Paused {
		t.Fatalf("flag while paused: %+v", res)
	}

	snap := decode[games.Snapshot](t, do(t, s, http.MethodPost, path+"/new", g.Token, nil))
	if snap.State != session.None || snap.Mines.Generated {
		t.Fatalf("restart=%+v", snap)
	}
}

func TestSnakeDirection(t *testing.T) {
	s, _ := newTestServer(t, games.DefaultSettings(), nil)
	g := start(t, s, "snake")
	path := "/sessions/" + g.ID

	res := decode[actionRes](t, do(t, s, http.MethodPost, path+"/direction", g.Token, dirReq{Dir: "left"}))
	if res.Accepted || res.State != session.None {
		t.Fatalf("reversal=%+v", res)
	}
	res = decode[actionRes](t, do(t, s, http.MethodPost, path+"/direction", g.Token, dirReq{X: 0, Y: -1}))
	if !res.Accepted || res.State != session.Running {
		t.Fatalf("up=%+v", res)
	}
	if w := do(t, s, http.MethodPost, path+"/direction", g.Token, dirReq{Dir: "sideways"}); w.Code != http.StatusBadRequest {
		t.Fatalf("bad direction: %d", w.Code)
	}
	if w := do(t, s, http.MethodPost, path+"/primary", g.Token, cellReq{}); w.Code != http.StatusBadRequest {
		t.Fatalf("reveal on snake: %d", w.Code)
	}
	snap := decode[games.Snapshot](t, do(t, s, http.MethodGet, path, g.Token, nil))
	if snap.Snake == nil || snap.Snake.Point == nil || snap.Snake.Direction != snake.Up {
		t.Fatalf("snapshot=%+v", snap.Snake)
	}
}

func TestCloseSession(t *testing.T) {
	s, _ := newTestServer(t, games.DefaultSettings(), nil)
	g := start(t, s, "snake")
	if w := do(t, s, http.MethodDelete, "/sessions/"+g.ID, g.Token, nil); w.Code != http.StatusOK {
		t.Fatalf("delete: %d", w.Code)
	}
	if w := do(t, s, http.MethodGet, "/sessions/"+g.ID, g.Token, nil); w.Code != http.StatusNotFound {
		t.Fatalf("after delete: %d", w.Code)
	}
}

func TestScoresRanked(t *testing.T) {
	s, rec := newTestServer(t, games.DefaultSettings(), nil)
	ctx := context.Background()
	for i, raw := range []float64{3, 11, 7} {
		e := scores.Entry{Title: games.TitleSnake, Raw: raw, At: testNow.Add(time.Duration(i) * time.Minute)}
		if err := rec.Record(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	res := decode[scoresRes](t, do(t, s, http.MethodGet, "/scores/snake?limit=2", "", nil))
	if !res.Descending || len(res.Entries) != 2 || res.Entries[0].Raw != 11 {
		t.Fatalf("scores=%+v", res)
	}
	if want := "1. 11 - 10/17/26 12:01:00"; res.Lines[0] != want {
		t.Fatalf("line=%q want %q", res.Lines[0], want)
	}

	res = decode[scoresRes](t, do(t, s, http.MethodGet, "/scores/minesweeper", "", nil))
	if res.Descending || len(res.Lines) != 0 {
		t.Fatalf("empty title=%+v", res)
	}
}

func TestScoresFilteredByFormattedBounds(t *testing.T) {
	s, rec := newTestServer(t, games.DefaultSettings(), nil)
	ctx := context.Background()
	for i, raw := range []float64{45, 95, 150, 200} {
		e := scores.Entry{Title: games.TitleMinesweeper, Raw: raw, At: testNow.Add(time.Duration(i) * time.Minute)}
		if err := rec.Record(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	res := decode[scoresRes](t, do(t, s, http.MethodGet, "/scores/minesweeper?min=01:00&max=02:30", "", nil))
	if len(res.Entries) != 2 || res.Entries[0].Score != "01:35" || res.Entries[1].Score != "02:30" {
		t.Fatalf("entries=%+v", res.Entries)
	}
	if !strings.HasPrefix(res.Lines[0], "1. 01:35 - ") {
		t.Fatalf("lines=%v", res.Lines)
	}
	if w := do(t, s, http.MethodGet, "/scores/minesweeper?min=soon", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad bound: %d", w.Code)
	}
}

func TestWinIsRecorded(t *testing.T) {
	set := games.DefaultSettings()
	set.Minesweeper = minesweeper.Config{Width: 4, Height: 4, Density: 0}
	s, rec := newTestServer(t, set, nil)
	g := start(t, s, "minesweeper")

	res := decode[actionRes](t, do(t, s, http.MethodPost, "/sessions/"+g.ID+"/primary", g.Token, cellReq{}))
	if res.Outcome != "win" || res.State != session.Win {
		t.Fatalf("res=%+v", res)
	}
	es, _ := rec.History(context.Background(), games.TitleMinesweeper, false)
	if len(es) != 1 {
		t.Fatalf("recorded %+v", es)
	}
	lines := decode[scoresRes](t, do(t, s, http.MethodGet, "/scores/minesweeper", "", nil)).Lines
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "1. 00:00 - ") {
		t.Fatalf("lines=%v", lines)
	}
}

func TestEventStream(t *testing.T) {
	s, _ := newTestServer(t, games.DefaultSettings(), nil)
	srv := httptest.NewServer(s.Router())
	defer srv.Close()
	g := start(t, s, "minesweeper")

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/" + g.ID + "/events?token=" + g.Token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))

	var first snapshotMsg
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatal(err)
	}
	if first.Type != "snapshot" || first.Snapshot.Title != games.TitleMinesweeper {
		t.Fatalf("first message=%+v", first)
	}

	waitFor(t, func() bool { return s.hub.Subscribers(g.ID) == 1 })
	do(t, s, http.MethodPost, "/sessions/"+g.ID+"/secondary", g.Token, cellReq{X: 2, Y: 3})

	for {
		var e games.Event
		if err := conn.ReadJSON(&e); err != nil {
			t.Fatalf("read: %v", err)
		}
		if e.Type == games.EventCell {
			if e.At == nil || e.At.X != 2 || e.At.Y != 3 || e.Cell.State != "flagged" {
				t.Fatalf("cell event=%+v", e)
			}
			break
		}
	}

	do(t, s, http.MethodDelete, "/sessions/"+g.ID, g.Token, nil)
	waitFor(t, func() bool { return s.hub.Subscribers(g.ID) == 0 })
}

func TestHubDropsSlowSubscriber(t *testing.T) {
	h := NewHub()
	sub := &subscriber{send: make(chan []byte, 1)}
	h.subs["s1"] = map[*subscriber]struct{}{sub: {}}
	pub := h.Publisher("s1")

	pub.Publish(games.Event{Type: games.EventScore, Value: 1})
	if h.Subscribers("s1") != 1 {
		t.Fatal("subscriber dropped with room in its buffer")
	}
	pub.Publish(games.Event{Type: games.EventScore, Value: 2})
	if h.Subscribers("s1") != 0 {
		t.Fatal("full subscriber kept")
	}
	<-sub.send
	if _, ok := <-sub.send; ok {
		t.Fatal("send channel left open")
	}
	// Publishing with nobody listening is a no-op.
	pub.Publish(games.Event{Type: games.EventScore, Value: 3})
}

func openDailyDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	names, _ := assets.Migrations()
	for _, n := range names {
		text, _ := assets.Migration(n)
		if _, err := db.Exec(text); err != nil {
			t.Fatalf("apply %s: %v", n, err)
		}
	}
	return db
}

// startDaily opens today's board and returns it with the player's cookie.
func startDaily(t *testing.T, s *Server, title string) (newGameRes, *http.Cookie) {
	t.Helper()
	w := do(t, s, http.MethodPost, "/daily/"+title+"/new", "", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("daily new: %d %s", w.Code, w.Body.String())
	}
	var anon *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == anonCookieName {
			anon = c
		}
	}
	if anon == nil {
		t.Fatal("no anon cookie")
	}
	return decode[newGameRes](t, w), anon
}

func TestDailyOncePerDay(t *testing.T) {
	set := games.DefaultSettings()
	set.Minesweeper = minesweeper.Config{Width: 4, Height: 4, Density: 0}
	s, _ := newTestServer(t, set, daily.NewStore(openDailyDB(t)))

	g, anon := startDaily(t, s, "minesweeper")
	if g.Date != "2026-10-17" {
		t.Fatalf("date=%q", g.Date)
	}

	// Asking again before finishing rejoins the same session.
	again := decode[newGameRes](t, do(t, s, http.MethodPost, "/daily/minesweeper/new", "", nil, anon))
	if again.ID != g.ID {
		t.Fatalf("rejoin gave %s, want %s", again.ID, g.ID)
	}

	do(t, s, http.MethodPost, "/sessions/"+g.ID+"/primary", g.Token, cellReq{})

	played := decode[playedRes](t, do(t, s, http.MethodPost, "/daily/minesweeper/new", "", nil, anon))
	if !played.Played {
		t.Fatalf("second daily game allowed: %+v", played)
	}

	lb := decode[lbRes](t, do(t, s, http.MethodGet, "/daily/minesweeper/leaderboard", "", nil))
	if len(lb.Top) != 1 || lb.Top[0].PlayerID != anon.Value || lb.Top[0].Score != "00:00" {
		t.Fatalf("leaderboard=%+v", lb)
	}
}

func TestDailyLossUsesUpTheDay(t *testing.T) {
	set := games.DefaultSettings()
	set.Minesweeper = minesweeper.Config{Width: 10, Height: 10, Density: 0.9}
	s, _ := newTestServer(t, set, daily.NewStore(openDailyDB(t)))

	g, anon := startDaily(t, s, "minesweeper")
	lost := false
	for y := 0; y < 10 && !lost; y++ {
		for x := 0; x < 10 && !lost; x++ {
			w := do(t, s, http.MethodPost, "/sessions/"+g.ID+"/primary", g.Token, cellReq{X: x, Y: y})
			lost = decode[actionRes](t, w).State == session.Lose
		}
	}
	if !lost {
		t.Fatal("never hit a bomb")
	}

	w := do(t, s, http.MethodPost, "/sessions/"+g.ID+"/new", g.Token, nil)
	if w.Code != http.StatusConflict || !strings.Contains(w.Body.String(), "daily_locked") {
		t.Fatalf("restart of a daily board: %d %s", w.Code, w.Body.String())
	}
	if snap := decode[games.Snapshot](t, do(t, s, http.MethodGet, "/sessions/"+g.ID, g.Token, nil)); snap.State != session.Lose {
		t.Fatalf("state after refused restart=%v", snap.State)
	}

	played := decode[playedRes](t, do(t, s, http.MethodPost, "/daily/minesweeper/new", "", nil, anon))
	if !played.Played {
		t.Fatalf("loss did not count as played: %+v", played)
	}
	lb := decode[lbRes](t, do(t, s, http.MethodGet, "/daily/minesweeper/leaderboard", "", nil))
	if len(lb.Top) != 0 {
		t.Fatalf("loss ranked: %+v", lb.Top)
	}

	// Ordinary sessions still restart.
	free := start(t, s, "minesweeper")
	if w := do(t, s, http.MethodPost, "/sessions/"+free.ID+"/new", free.Token, nil); w.Code != http.StatusOK {
		t.Fatalf("restart: %d %s", w.Code, w.Body.String())
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
