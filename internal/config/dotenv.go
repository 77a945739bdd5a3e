package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"sketch-rooms/internal/db"
	"sketch-rooms/internal/game"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Port                     string
	MaxPlayers               int
	RoundSeconds             int
	WinningScore             int
	RoundDelaySeconds        int
	ChatHistoryCap           int
	DefaultLanguage          string
	RevealWordToGuessers     bool
	DBDriver                 string
	DatabaseURL              string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
	NATSURL                  string
	NATSSubject              string
	ChatRatePerSecond        float64
	ChatRateBurst            int
	LogLevel                 string
	LogFormat                string
}

func Default() Config {
	return Config{
		Port:                     "8080",
		MaxPlayers:               8,
		RoundSeconds:             60,
		WinningScore:             1000,
		RoundDelaySeconds:        3,
		ChatHistoryCap:           100,
		DefaultLanguage:          "en",
		RevealWordToGuessers:     true,
		DBDriver:                 "postgres",
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
		NATSSubject:              "sketch.rooms",
		ChatRatePerSecond:        4,
		ChatRateBurst:            8,
		LogLevel:                 "info",
		LogFormat:                "console",
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("PORT"); raw != "" {
		cfg.Port = raw
	}
	if raw := os.Getenv("MAX_PLAYERS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 1 {
			cfg.MaxPlayers = value
		}
	}
	if raw := os.Getenv("ROUND_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.RoundSeconds = value
		}
	}
	if raw := os.Getenv("WINNING_SCORE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.WinningScore = value
		}
	}
	if raw := os.Getenv("ROUND_DELAY_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.RoundDelaySeconds = value
		}
	}
	if raw := os.Getenv("CHAT_HISTORY_CAP"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.ChatHistoryCap = value
		}
	}
	if raw := os.Getenv("DEFAULT_LANGUAGE"); raw != "" {
		cfg.DefaultLanguage = strings.ToLower(strings.TrimSpace(raw))
	}
	if raw := os.Getenv("REVEAL_WORD"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.RevealWordToGuessers = value
		}
	}
	if raw := os.Getenv("DB_DRIVER"); raw != "" {
		cfg.DBDriver = strings.ToLower(raw)
	}
	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		cfg.DatabaseURL = raw
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_IDLE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxIdleTimeSeconds = value
		}
	}
	if raw := os.Getenv("NATS_URL"); raw != "" {
		cfg.NATSURL = raw
	}
	if raw := os.Getenv("NATS_SUBJECT"); raw != "" {
		cfg.NATSSubject = raw
	}
	if raw := os.Getenv("CHAT_RATE_PER_SECOND"); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil && value > 0 {
			cfg.ChatRatePerSecond = value
		}
	}
	if raw := os.Getenv("CHAT_RATE_BURST"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.ChatRateBurst = value
		}
	}
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		cfg.LogLevel = raw
	}
	if raw := os.Getenv("LOG_FORMAT"); raw != "" {
		cfg.LogFormat = raw
	}
	return cfg
}

// GameSettings converts the tunables into the room engine settings.
func (c Config) GameSettings() game.Settings {
	return game.Settings{
		MaxPlayers:           c.MaxPlayers,
		RoundSeconds:         c.RoundSeconds,
		WinningScore:         c.WinningScore,
		RoundDelay:           time.Duration(c.RoundDelaySeconds) * time.Second,
		ChatHistoryCap:       c.ChatHistoryCap,
		DefaultLanguage:      c.DefaultLanguage,
		RevealWordToGuessers: c.RevealWordToGuessers,
	}
}

func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

// DBOptions returns the connection settings for db.Open.
func (c Config) DBOptions() db.Options {
	return db.Options{
		Driver:          c.DBDriver,
		DSN:             c.DatabaseURL,
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(c.DBConnMaxLifetimeSeconds) * time.Second,
		ConnMaxIdleTime: time.Duration(c.DBConnMaxIdleTimeSeconds) * time.Second,
	}
}
