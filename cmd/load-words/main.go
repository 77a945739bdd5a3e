package main

import (
	"flag"

	"sketch-rooms/internal/config"
	"sketch-rooms/internal/db"
	"sketch-rooms/internal/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	filePath := flag.String("file", "words.csv", "path to a language,word csv")
	flag.Parse()

	dotenvErr := config.LoadDotEnv(".env")
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if dotenvErr != nil {
		log.Warn().Err(dotenvErr).Msg("failed to load .env")
	}

	conn, err := db.Open(cfg.DBOptions())
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	inserted, err := db.LoadWordLibrary(conn, *filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("failed to load words")
	}
	log.Info().Int("inserted", inserted).Str("file", *filePath).Msg("word library loaded")
}
