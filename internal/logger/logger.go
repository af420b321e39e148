package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger. Production emits JSON lines,
// development a human-readable console.
func Init(production bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stdout
	if !production {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// SetLevel applies a textual level such as "debug" or "warn". Unknown values fall back to info.
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		log.Warn().Str("loglevel", level).Msg("unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// ErrorWithStack starts an error event for err with a "stack" field. The
// stack already attached to err is used when there is one, otherwise the
// caller's.
func ErrorWithStack(err error) *zerolog.Event {
	var st stackTracer
	if !errors.As(err, &st) {
		st = errors.WithStack(err).(stackTracer)
	}
	return log.Error().Err(err).Str("stack", fmt.Sprintf("%+v", st.StackTrace()))
}
