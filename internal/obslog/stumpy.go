package obslog

import (
	"io"
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// stumpyLogger adapts a github.com/joeycumines/logiface logger, using the
// stumpy JSON backend, to the Logger interface.
type stumpyLogger struct {
	min Level
	l   *logiface.Logger[*stumpy.Event]
}

// NewStumpyLogger builds a structured JSON Logger: records written to w,
// filtered to levels at or above min. A Store uses it only when it is
// passed via WithLogger; the store's default is the no-op logger.
func NewStumpyLogger(w io.Writer, min Level) Logger {
	if w == nil {
		w = os.Stderr
	}
	return &stumpyLogger{
		min: min,
		l: stumpy.L.New(
			stumpy.L.WithStumpy(stumpy.WithWriter(w)),
			logiface.WithLevel[*stumpy.Event](toLogifaceLevel(min)),
		),
	}
}

func (s *stumpyLogger) IsEnabled(level Level) bool {
	return level >= s.min
}

func (s *stumpyLogger) Log(level Level, msg string, err error, fields ...Field) {
	if !s.IsEnabled(level) {
		return
	}

	b := s.builder(level)
	if b == nil {
		return
	}
	if err != nil {
		b = b.Err(err)
	}
	for _, f := range fields {
		b = addField(b, f)
	}
	b.Log(msg)
}

func (s *stumpyLogger) builder(level Level) *logiface.Builder[*stumpy.Event] {
	switch level {
	case LevelDebug:
		return s.l.Debug()
	case LevelInfo:
		return s.l.Info()
	case LevelWarn:
		return s.l.Warning()
	case LevelError:
		return s.l.Err()
	default:
		return s.l.Info()
	}
}

// addField dispatches on the dynamic type of a Field's value, since
// logiface.Builder's fluent API is typed per field kind rather than
// accepting interface{} generically.
func addField(b *logiface.Builder[*stumpy.Event], f Field) *logiface.Builder[*stumpy.Event] {
	switch v := f.Value.(type) {
	case string:
		return b.Str(f.Key, v)
	case int:
		return b.Int(f.Key, v)
	case int64:
		return b.Int64(f.Key, v)
	case bool:
		return b.Bool(f.Key, v)
	case error:
		return b.Any(f.Key, v)
	default:
		return b.Any(f.Key, v)
	}
}

func toLogifaceLevel(l Level) logiface.Level {
	switch l {
	case LevelDebug:
		return logiface.LevelDebug
	case LevelInfo:
		return logiface.LevelInformational
	case LevelWarn:
		return logiface.LevelWarning
	case LevelError:
		return logiface.LevelError
	default:
		return logiface.LevelInformational
	}
}
