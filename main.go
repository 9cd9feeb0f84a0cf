package main

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/rhymegrid/internal/challenge"
	"github.com/robalobadob/rhymegrid/internal/config"
	"github.com/robalobadob/rhymegrid/internal/decoy"
	"github.com/robalobadob/rhymegrid/internal/httpserver"
	"github.com/robalobadob/rhymegrid/internal/patterns"
	"github.com/robalobadob/rhymegrid/internal/rating"
	"github.com/robalobadob/rhymegrid/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := patterns.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load pattern catalog")
	}

	db, err := openDB(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	ratings := rating.NewStore(rating.NewSQLiteRepository(db))
	generator := challenge.NewGenerator(ratings, decoy.New())
	policy := challenge.DefaultPolicy()
	policy.MaxAttempts = cfg.GenMaxAttempts
	pipeline := challenge.NewPipeline(generator, policy)

	srv := httpserver.New(cfg, db, store.NewPuzzleStore(), store.NewSessionStore(), ratings, pipeline)
	log.Info().Str("port", cfg.Port).Msg("starting go-server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
