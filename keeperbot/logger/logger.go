package logger

import (
	"io"
	"os"
	"time"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
)

// New creates a zerolog logger writing to stdout. format is "json" or
// "console"; sampler keeps one line in five.
func New(level int, format string, sampler bool) zerolog.Logger {
	return NewWithWriter(os.Stdout, level, format, sampler)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(out io.Writer, level int, format string, sampler bool) zerolog.Logger {
	if format != "json" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(out).
		Level(zerolog.Level(level)).
		With().
		Timestamp().
		Logger()

	if sampler {
		logger = logger.Sample(&zerolog.BasicSampler{N: 5})
	}
	return logger
}

// Component scopes l to one part of the bot.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// ChainLogger adapts l for the in-process chain so keeper logs share the
// bot's output.
func ChainLogger(l zerolog.Logger) log.Logger {
	return log.NewCustomLogger(Component(l, "chain"))
}
