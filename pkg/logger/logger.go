// Package logx configures the process-global zerolog logger.
package logx

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Level is one of debug, info, warn, error. Unknown values fall back
	// to info.
	Level        string `split_words:"true" default:"info"`
	PrettyFormat bool   `split_words:"true" default:"false"`
}

// Init replaces the global logger. Call once at startup, before any
// component logs.
func Init(opts ...Config) {
	conf := Config{Level: "info"}
	if len(opts) > 0 {
		conf = opts[0]
	}

	var out io.Writer = os.Stdout
	if conf.PrettyFormat {
		out = zerolog.NewConsoleWriter()
	}

	log.Logger = zerolog.New(out).
		Level(parseLevel(conf.Level)).
		With().
		Timestamp().
		Caller().
		Stack().
		Logger()
}

func parseLevel(raw string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
