package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/benzlokzik/singlefile-webserver/internal/config"
)

// LogFields carries structured key/value context for a single log entry.
type LogFields map[string]interface{}

// Logger is the application-wide structured logger. It wraps zerolog behind
// the small leveled surface the rest of the codebase uses.
type Logger struct {
	zl     zerolog.Logger
	output io.Closer // non-nil only for file targets, closed by Close
}

// New creates a Logger from the logging configuration. File targets are
// opened in append mode; "stdout" and "stderr" select the standard streams.
func New(cfg *config.LoggingConfig) (*Logger, error) {
	if cfg == nil {
		return nil, fmt.Errorf("logging configuration cannot be nil")
	}

	var out io.Writer = os.Stderr
	var closer io.Closer
	switch {
	case cfg.Target == "stdout":
		out = os.Stdout
	case cfg.Target == "stderr" || cfg.Target == "":
		out = os.Stderr
	case config.IsFilePath(cfg.Target):
		f, err := os.OpenFile(cfg.Target, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", cfg.Target, err)
		}
		out = f
		closer = f
	}

	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "2006-01-02 15:04:05"}
	}

	zl := zerolog.New(out).Level(zerologLevel(cfg.Level)).With().Timestamp().Logger()
	return &Logger{zl: zl, output: closer}, nil
}

// NewDiscard returns a logger that drops everything. Used by tests and as a
// safe fallback when a component is handed a nil logger.
func NewDiscard() *Logger {
	return &Logger{zl: zerolog.New(io.Discard).Level(zerolog.Disabled)}
}

func zerologLevel(level config.LogLevel) zerolog.Level {
	switch level {
	case config.LogLevelDebug:
		return zerolog.DebugLevel
	case config.LogLevelInfo:
		return zerolog.InfoLevel
	case config.LogLevelWarning:
		return zerolog.WarnLevel
	case config.LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *Logger) emit(ev *zerolog.Event, msg string, fields LogFields) {
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *Logger) Debug(msg string, fields LogFields) { l.emit(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields LogFields)  { l.emit(l.zl.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields LogFields)  { l.emit(l.zl.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields LogFields) { l.emit(l.zl.Error(), msg, fields) }

// Close releases a file-backed log target. Safe on stream-backed loggers.
func (l *Logger) Close() error {
	if l.output != nil {
		return l.output.Close()
	}
	return nil
}
