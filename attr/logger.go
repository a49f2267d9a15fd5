package attr

import (
	"log/slog"
	"os"
)

// Logger receives engine diagnostics. Only the ambiguity warnings of
// tied modifier orderings and skipped-instance notices go through it;
// the engine never logs on the happy path of a tick.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type slogLogger struct {
	logger *slog.Logger
}

// NewDefaultLogger returns a Logger writing text to stderr at the
// given level.
func NewDefaultLogger(level slog.Level) Logger {
	return &slogLogger{
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})),
	}
}

const logPrefix = "[attrparty] "

func (l *slogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(logPrefix+msg, args...)
}

func (l *slogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(logPrefix+msg, args...)
}
