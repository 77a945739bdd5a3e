package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"sketch-rooms/internal/config"
	"sketch-rooms/internal/db"
	"sketch-rooms/internal/feed"
	"sketch-rooms/internal/game"
	"sketch-rooms/internal/logger"
	"sketch-rooms/internal/server"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	dotenvErr := config.LoadDotEnv(".env")
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if dotenvErr != nil {
		log.Warn().Err(dotenvErr).Msg("failed to load .env")
	}

	words := game.NewWordBank(cfg.DefaultLanguage, game.DefaultWordLists())
	conn := openDatabase(cfg, words)

	var opts []game.Option
	var mirror *feed.Mirror
	if cfg.NATSURL != "" {
		m, err := feed.Connect(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			log.Warn().Err(err).Str("url", cfg.NATSURL).Msg("room feed mirror disabled")
		} else {
			mirror = m
			opts = append(opts, game.WithFeedMirror(mirror))
		}
	}

	srv := server.New(conn, cfg, words, opts...)
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("sketch-rooms server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	srv.Close()
	mirror.Close()
	if conn != nil {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// openDatabase connects the optional word store and event log. Without
// DATABASE_URL the server runs on the built-in word lists only.
func openDatabase(cfg config.Config, words *game.WordBank) *gorm.DB {
	if cfg.DatabaseURL == "" {
		log.Info().Msg("DATABASE_URL not set, using built-in word lists")
		return nil
	}
	conn, err := db.Open(cfg.DBOptions())
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}
	lists, err := db.LoadWordLists(conn)
	if err != nil {
		log.Error().Err(err).Msg("load word library failed")
		return conn
	}
	for lang, list := range lists {
		words.Replace(lang, list)
	}
	log.Info().Int("languages", len(lists)).Msg("word library loaded")
	return conn
}
