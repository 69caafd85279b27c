package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// ParseLevel maps a config string to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return level, nil
}

// OpenFile appends JSON records to dir/name, creating both as needed. The
// returned closer syncs and closes the file.
func OpenFile(dir, name string, opts Options) (*slog.Logger, io.Closer, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(NewJSONHandler(f, opts)), syncCloser{f}, nil
}

// BotLogName is the per-bot log file name.
func BotLogName(playerID uint32) string {
	return fmt.Sprintf("khala_bot_%d.log", playerID)
}

type syncCloser struct{ f *os.File }

func (c syncCloser) Close() error {
	_ = c.f.Sync()
	return c.f.Close()
}
