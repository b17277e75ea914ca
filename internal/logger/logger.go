// Package logger owns the process-wide zerolog logger.
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the global logger. Packages that are not handed a logger use it.
var Logger = log.Logger

// Config controls level and output format of the global logger.
type Config struct {
	Level        string    `json:"level"`
	Format       string    `json:"format"` // "json" or "pretty"
	TimeFormat   string    `json:"time_format"`
	ReportCaller bool      `json:"report_caller"`
	Output       io.Writer `json:"-"`
}

// Init replaces the global logger according to config.
// Unknown levels fall back to info. Output defaults to stderr so that stdout stays
// free for command output.
func Init(config Config) {
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil || config.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	if config.Format == "pretty" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: config.TimeFormat}
	}

	if config.TimeFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	} else {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	builder := zerolog.New(out).Level(level).With().Timestamp()
	if config.ReportCaller {
		builder = builder.Caller()
	}

	Logger = builder.Logger()
	log.Logger = Logger
}

// Nop returns a logger that discards everything. Used as the default for injected loggers.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

func Debug() *zerolog.Event { return Logger.Debug() }

func Info() *zerolog.Event { return Logger.Info() }

func Warn() *zerolog.Event { return Logger.Warn() }

func Error() *zerolog.Event { return Logger.Error() }

func Fatal() *zerolog.Event { return Logger.Fatal() }

// Ctx returns the logger stored in ctx, or the disabled logger when there is none.
func Ctx(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithContext stores the global logger in ctx.
func WithContext(ctx context.Context) context.Context {
	return Logger.WithContext(ctx)
}
