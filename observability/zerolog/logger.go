// Package zerolog adapts github.com/rs/zerolog to core.Logger.
package zerolog

import (
	"io"
	"time"

	"github.com/Swind/go-executor/core"
	"github.com/rs/zerolog"
)

// Logger writes core.Logger calls as zerolog events.
type Logger struct {
	Z zerolog.Logger
}

// compile time assertion
var _ core.Logger = (*Logger)(nil)

// New wraps z.
func New(z zerolog.Logger) *Logger {
	return &Logger{Z: z}
}

// NewJSON returns a Logger writing JSON lines with timestamps to w, at level
// and above.
func NewJSON(w io.Writer, level zerolog.Level) *Logger {
	return New(zerolog.New(w).Level(level).With().Timestamp().Logger())
}

// NewConsole returns a Logger writing human readable lines to w.
func NewConsole(w io.Writer, level zerolog.Level) *Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	return New(zerolog.New(out).Level(level).With().Timestamp().Logger())
}

func (x *Logger) Debug(msg string, fields ...core.Field) { write(x.Z.Debug(), msg, fields) }
func (x *Logger) Info(msg string, fields ...core.Field)  { write(x.Z.Info(), msg, fields) }
func (x *Logger) Warn(msg string, fields ...core.Field)  { write(x.Z.Warn(), msg, fields) }
func (x *Logger) Error(msg string, fields ...core.Field) { write(x.Z.Error(), msg, fields) }

func write(event *zerolog.Event, msg string, fields []core.Field) {
	// nil when the level is disabled
	if event == nil {
		return
	}
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			event.Str(f.Key, v)
		case int:
			event.Int(f.Key, v)
		case int64:
			event.Int64(f.Key, v)
		case uint64:
			event.Uint64(f.Key, v)
		case bool:
			event.Bool(f.Key, v)
		case time.Duration:
			event.Dur(f.Key, v)
		case error:
			event.AnErr(f.Key, v)
		case core.TaskID:
			event.Stringer(f.Key, v)
		default:
			event.Interface(f.Key, v)
		}
	}
	event.Msg(msg)
}
