// Package logging provides application-wide logging configuration.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Log output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var debugEnabled bool

// Init initializes the global logger on stderr in the given format.
func Init(debug bool, format string) error {
	switch format {
	case FormatConsole, "":
		InitWriter(os.Stderr, debug, false)
	case FormatJSON:
		InitWriter(os.Stderr, debug, true)
	default:
		return fmt.Errorf("unknown log format %q, want %s or %s", format, FormatConsole, FormatJSON)
	}
	return nil
}

// InitWriter initializes the global logger on w. JSON output skips the
// console formatting, for piping into other tools.
func InitWriter(w io.Writer, debug, json bool) {
	debugEnabled = debug
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if json {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	})
}

// DebugEnabled reports whether debug logging is enabled.
func DebugEnabled() bool {
	return debugEnabled
}
