package main

import (
	"errors"
	"flag"

	"sketch-rooms/internal/config"
	"sketch-rooms/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

func main() {
	source := flag.String("source", "file://db/migrations", "migration source url")
	down := flag.Bool("down", false, "roll back one migration instead of applying all")
	flag.Parse()

	dotenvErr := config.LoadDotEnv(".env")
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if dotenvErr != nil {
		log.Warn().Err(dotenvErr).Msg("failed to load .env")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is not set")
	}

	m, err := migrate.New(*source, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("migration setup failed")
	}
	defer m.Close()

	if *down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal().Err(err).Msg("database migration failed")
	}
	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		log.Warn().Err(verr).Msg("read migration version failed")
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("database migrations applied")
}
