package config

import (
	"errors"
	"testing"

	"github.com/robalobadob/arcade/internal/grid"
	"github.com/robalobadob/arcade/internal/minesweeper"
	"github.com/robalobadob/arcade/internal/snake"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "SCORES_BACKEND", "SEED", "MINES_WIDTH", "SNAKE_BODY", "SNAKE_WRAP"} {
		t.Setenv(k, "")
	}
	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.Port != "5175" || c.ScoresBackend != BackendSQLite || c.Seed != 0 {
		t.Fatalf("defaults: %+v", c)
	}
	if c.Games.Minesweeper != minesweeper.DefaultConfig() {
		t.Fatalf("minesweeper=%+v", c.Games.Minesweeper)
	}
	if len(c.Games.Snake.Body) != 3 || c.Games.Snake.Direction != snake.Right {
		t.Fatalf("snake=%+v", c.Games.Snake)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SCORES_BACKEND", "Memory")
	t.Setenv("SEED", "42")
	t.Setenv("MINES_WIDTH", "30")
	t.Setenv("MINES_HEIGHT", "16")
	t.Setenv("MINES_DENSITY", "0.15")
	t.Setenv("SNAKE_BODY", "0,0; 0,1 ;0,2")
	t.Setenv("SNAKE_DIRECTION", "0,1")
	t.Setenv("SNAKE_WRAP", "true")
	t.Setenv("SNAKE_SPEED", "8")

	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.ScoresBackend != BackendMemory || c.Seed != 42 {
		t.Fatalf("c=%+v", c)
	}
	ms := c.Games.Minesweeper
	if ms.Width != 30 || ms.Height != 16 || ms.Density != 0.15 {
		t.Fatalf("minesweeper=%+v", ms)
	}
	sn := c.Games.Snake
	if !sn.Wrap || sn.Speed != 8 || sn.Direction != snake.Down || sn.Body[2] != grid.C(0, 2) {
		t.Fatalf("snake=%+v", sn)
	}
}

func TestLoadRejects(t *testing.T) {
	cases := map[string][2]string{
		"bad number":      {"MINES_WIDTH", "wide"},
		"zero size":       {"MINES_HEIGHT", "0"},
		"huge board":      {"MINES_WIDTH", "100000"},
		"density":         {"MINES_DENSITY", "1"},
		"body":            {"SNAKE_BODY", "1,1;x"},
		"short body":      {"SNAKE_BODY", "1,1"},
		"diagonal":        {"SNAKE_DIRECTION", "1,1"},
		"bool":            {"SNAKE_WRAP", "maybe"},
		"unknown backend": {"SCORES_BACKEND", "mongo"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); !errors.Is(err, ErrInvalid) {
				t.Fatalf("%s=%s: err=%v", kv[0], kv[1], err)
			}
		})
	}
}

func TestPostgresNeedsURL(t *testing.T) {
	t.Setenv("SCORES_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err=%v", err)
	}
}

func TestParseCoords(t *testing.T) {
	got, err := ParseCoords("1,8;2,8;3,8;")
	if err != nil {
		t.Fatal(err)
	}
	want := []grid.Coord{{X: 1, Y: 8}, {X: 2, Y: 8}, {X: 3, Y: 8}}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
	if _, err := ParseCoord("3"); err == nil {
		t.Fatal("ParseCoord accepted a single number")
	}
}
