package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"sketch-rooms/internal/logger"

	"github.com/rs/zerolog/log"
)

var migrationName = regexp.MustCompile(`^[a-z0-9_]+$`)

func main() {
	name := flag.String("name", "", "migration name, snake_case")
	dir := flag.String("dir", filepath.Join("db", "migrations"), "migrations directory")
	flag.Parse()

	logger.Setup("info", "console")

	if *name == "" {
		log.Fatal().Msg("migration name is required")
	}
	if !migrationName.MatchString(*name) {
		log.Fatal().Str("name", *name).Msg("migration name must be lowercase snake_case")
	}

	version := time.Now().UTC().Format("20060102150405")
	base := fmt.Sprintf("%s_%s", version, *name)
	upPath := filepath.Join(*dir, base+".up.sql")
	downPath := filepath.Join(*dir, base+".down.sql")

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("create migrations dir")
	}
	if err := writeFile(upPath, "-- "+*name+" (up)\n"); err != nil {
		log.Fatal().Err(err).Msg("create up migration")
	}
	if err := writeFile(downPath, "-- "+*name+" (down)\n"); err != nil {
		log.Fatal().Err(err).Msg("create down migration")
	}

	log.Info().Str("up", upPath).Str("down", downPath).Msg("migration files created")
}

// writeFile refuses to overwrite an existing migration.
func writeFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
