package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs the global zerolog logger. format "json" writes structured
// lines; anything else uses the console writer.
func Setup(level, format string) {
	Configure(os.Stdout, level, format)
}

func Configure(out io.Writer, level, format string) {
	writer := out
	if !strings.EqualFold(strings.TrimSpace(format), "json") {
		writer = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}
	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(ParseLevel(level))
}

func ParseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}
