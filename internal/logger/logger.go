// Package logger wraps zerolog with the options used by the deskshell
// daemon, the terminal UI and the CLI.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger owns the sinks behind a zerolog.Logger.
type Logger struct {
	zlog    zerolog.Logger
	level   zerolog.Level
	file    *os.File
	writers []io.Writer
	mu      sync.Mutex
}

type Option func(*Logger) error

// WithConsole writes human-readable output to stderr. Stdout is left to
// command output and the terminal UI.
func WithConsole() Option {
	return func(l *Logger) error {
		l.writers = append(l.writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
		return nil
	}
}

// WithWriter writes JSON lines to w.
func WithWriter(w io.Writer) Option {
	return func(l *Logger) error {
		l.writers = append(l.writers, w)
		return nil
	}
}

// WithLevel sets the minimum level.
func WithLevel(level zerolog.Level) Option {
	return func(l *Logger) error {
		l.level = level
		return nil
	}
}

// WithFile appends plain console-formatted output to path, creating parent
// directories as needed. A leading ~ is expanded.
func WithFile(path string) Option {
	return func(l *Logger) error {
		expanded, err := expandHome(path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(expanded), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(expanded, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = f
		l.writers = append(l.writers, zerolog.ConsoleWriter{
			Out:        f,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		})
		return nil
	}
}

// New creates a logger. Without any sink option the logger discards output.
func New(opts ...Option) (*Logger, error) {
	l := &Logger{level: zerolog.InfoLevel}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			l.Close()
			return nil, fmt.Errorf("failed to apply logger option: %w", err)
		}
	}

	var out io.Writer
	switch len(l.writers) {
	case 0:
		out = io.Discard
	case 1:
		out = l.writers[0]
	default:
		out = zerolog.MultiLevelWriter(l.writers...)
	}
	l.zlog = zerolog.New(out).Level(l.level).With().Timestamp().Logger()
	return l, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop(), level: zerolog.Disabled}
}

// Zerolog exposes the underlying logger for packages that take one directly.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zlog
}

// Component returns a child zerolog.Logger tagged with a component name.
func (l *Logger) Component(name string) zerolog.Logger {
	return l.zlog.With().Str("component", name).Logger()
}

// Level returns the configured minimum level.
func (l *Logger) Level() zerolog.Level {
	return l.level
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Debug logs a debug message with alternating key/value fields.
func (l *Logger) Debug(msg string, fields ...interface{}) {
	logFields(l.zlog.Debug(), fields...).Msg(msg)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...interface{}) {
	logFields(l.zlog.Info(), fields...).Msg(msg)
}

// Warn logs a warning.
func (l *Logger) Warn(msg string, fields ...interface{}) {
	logFields(l.zlog.Warn(), fields...).Msg(msg)
}

// Error logs err with a message.
func (l *Logger) Error(msg string, err error, fields ...interface{}) {
	event := l.zlog.Error()
	if err != nil {
		event = event.Err(err)
	}
	logFields(event, fields...).Msg(msg)
}

// ParseLevel maps a config level name to a zerolog level. The empty string
// means info.
func ParseLevel(name string) (zerolog.Level, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(normalized)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

func logFields(event *zerolog.Event, fields ...interface{}) *zerolog.Event {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		event = event.Interface(key, fields[i+1])
	}
	return event
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
