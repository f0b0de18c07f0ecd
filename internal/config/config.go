// internal/config/config.go
//
// Process configuration read from the environment.
// Responsibilities:
//   - Read every setting with a default (getEnv style); main loads .env first.
//   - Parse numbers, booleans and the snake body/direction coordinate lists.
//   - Validate the engine settings before anything is built.

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/robalobadob/arcade/internal/games"
	"github.com/robalobadob/arcade/internal/grid"
)

// ErrInvalid is wrapped by every error Load returns.
var ErrInvalid = errors.New("invalid configuration")

// Score recorder backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config is everything main needs to wire the process.
type Config struct {
	Port         string
	LogLevel     string
	ClientOrigin string
	JWTSecret    string
	DailySalt    string
	Seed         int64

	ScoresBackend string
	ScoresFile    string
	DBPath        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DatabaseURL   string

	Games games.Settings
}

// Load reads the environment. Unset keys fall back to defaults; malformed
// values are errors.
func Load() (Config, error) {
	c := Config{
		Port:          getEnv("PORT", "5175"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		ClientOrigin:  getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		JWTSecret:     getEnv("JWT_SECRET", "dev_secret_change_me"),
		DailySalt:     getEnv("DAILY_SALT", "local_dev_salt"),
		ScoresBackend: strings.ToLower(getEnv("SCORES_BACKEND", BackendSQLite)),
		ScoresFile:    getEnv("SCORES_FILE", "./data/scores.json"),
		DBPath:        getEnv("DB_PATH", "./data/arcade.db"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Games:         games.DefaultSettings(),
	}

	var errs []error
	c.Seed = int64(intEnv("SEED", 0, &errs))
	c.RedisDB = intEnv("REDIS_DB", 0, &errs)

	ms := &c.Games.Minesweeper
	ms.Width = intEnv("MINES_WIDTH", ms.Width, &errs)
	ms.Height = intEnv("MINES_HEIGHT", ms.Height, &errs)
	ms.Density = floatEnv("MINES_DENSITY", ms.Density, &errs)

	sn := &c.Games.Snake
	sn.Width = intEnv("SNAKE_WIDTH", sn.Width, &errs)
	sn.Height = intEnv("SNAKE_HEIGHT", sn.Height, &errs)
	sn.Speed = floatEnv("SNAKE_SPEED", sn.Speed, &errs)
	sn.Acceleration = floatEnv("SNAKE_ACCELERATION", sn.Acceleration, &errs)
	sn.Wrap = boolEnv("SNAKE_WRAP", sn.Wrap, &errs)
	if v := os.Getenv("SNAKE_BODY"); v != "" {
		body, err := ParseCoords(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SNAKE_BODY: %w", err))
		} else {
			sn.Body = body
		}
	}
	if v := os.Getenv("SNAKE_DIRECTION"); v != "" {
		d, err := ParseCoord(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SNAKE_DIRECTION: %w", err))
		} else {
			sn.Direction = d
		}
	}

	switch c.ScoresBackend {
	case BackendMemory, BackendFile, BackendSQLite, BackendRedis:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("SCORES_BACKEND=postgres needs DATABASE_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("SCORES_BACKEND: unknown backend %q", c.ScoresBackend))
	}

	if err := c.Games.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return c, nil
}

// ParseCoord parses "x,y".
func ParseCoord(s string) (grid.Coord, error) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return grid.Coord{}, fmt.Errorf("coordinate %q: want x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return grid.Coord{}, fmt.Errorf("coordinate %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return grid.Coord{}, fmt.Errorf("coordinate %q: %w", s, err)
	}
	return grid.C(x, y), nil
}

// ParseCoords parses "x,y;x,y;...", tail first.
func ParseCoords(s string) ([]grid.Coord, error) {
	var out []grid.Coord
	for _, part := range strings.Split(s, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParseCoord(part)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func intEnv(k string, def int, errs *[]error) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return n
}

func floatEnv(k string, def float64, errs *[]error) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return f
}

func boolEnv(k string, def bool, errs *[]error) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return b
}
