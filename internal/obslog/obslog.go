// Package obslog wraps github.com/rs/zerolog, the teacher's structured
// logging library (its root logger.go re-exports monitoring's event
// types over the same idiom: a logger constructed once and injected by
// reference into whatever needs it). cmd/blockflow-cli builds one per run
// and logs the diagnostics the core returns. internal/flatten,
// internal/propagator and internal/runtime take no *Logger; internal/flatten
// logs its loop-breaking warning through zerolog's global logger.
package obslog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog.Logger so core packages depend on this package's
// small surface instead of zerolog directly.
type Logger struct {
	zl zerolog.Logger
}

// New builds a Logger writing level-tagged JSON to w, parsing level
// (zerolog's level names: "debug", "info", "warn", "error") with "info"
// as the fallback for anything unrecognized.
func New(w io.Writer, level string) *Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zl := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// NewConsole builds a Logger writing to stderr, the default for
// cmd/blockflow-cli.
func NewConsole(level string) *Logger {
	return New(os.Stderr, level)
}

// Nop returns a Logger that discards everything, used by packages and
// tests that accept a *Logger but have nothing worth logging yet.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// Block scopes every following log line to the given block id and kind,
// mirroring the teacher's "attach workflow/execution id" log-field idiom.
func (l *Logger) Block(blockID, kind string) *Logger {
	return &Logger{zl: l.zl.With().Str("block_id", blockID).Str("kind", kind).Logger()}
}

func (l *Logger) Debug(msg string, kv ...any) { l.event(l.zl.Debug(), msg, kv) }
func (l *Logger) Info(msg string, kv ...any)  { l.event(l.zl.Info(), msg, kv) }
func (l *Logger) Warn(msg string, kv ...any)  { l.event(l.zl.Warn(), msg, kv) }
func (l *Logger) Error(err error, msg string, kv ...any) {
	l.event(l.zl.Error().Err(err), msg, kv)
}

func (l *Logger) event(e *zerolog.Event, msg string, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, kv[i+1])
	}
	e.Msg(msg)
}
