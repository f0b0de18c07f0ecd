package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arcade/internal/config"
	"github.com/robalobadob/arcade/internal/daily"
	"github.com/robalobadob/arcade/internal/httpserver"
	"github.com/robalobadob/arcade/internal/scores"
	"github.com/robalobadob/arcade/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := openDB(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	defer db.Close()
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	rec, closeRec, err := openRecorder(cfg, db)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.ScoresBackend).Msg("open score recorder")
	}
	defer closeRec()

	srv := httpserver.New(store.NewMemoryStore(), rec, daily.NewStore(db), httpserver.Options{
		Settings:     cfg.Games,
		Seed:         cfg.Seed,
		JWTSecret:    cfg.JWTSecret,
		ClientOrigin: cfg.ClientOrigin,
		DailySalt:    cfg.DailySalt,
	})
	log.Info().Str("port", cfg.Port).Str("scores", cfg.ScoresBackend).Msg("starting arcade server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// openRecorder builds the configured score backend. The returned func
// releases it.
func openRecorder(cfg config.Config, db *sql.DB) (scores.Recorder, func(), error) {
	nop := func() {}
	switch cfg.ScoresBackend {
	case config.BackendMemory:
		return scores.NewMemory(), nop, nil
	case config.BackendFile:
		f, err := scores.NewFile(cfg.ScoresFile)
		return f, nop, err
	case config.BackendSQLite:
		return scores.NewSQLite(db), nop, nil
	case config.BackendRedis:
		r, err := scores.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nop, err
		}
		return r, func() { _ = r.Close() }, nil
	case config.BackendPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		p, err := scores.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nop, err
		}
		if err := p.EnsureSchema(ctx); err != nil {
			p.Close()
			return nil, nop, err
		}
		return p, p.Close, nil
	default:
		return nil, nop, fmt.Errorf("unknown scores backend %q", cfg.ScoresBackend)
	}
}
