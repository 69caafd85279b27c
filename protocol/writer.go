package protocol

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/brensch/khala/game"
	"github.com/brensch/khala/logging"
)

// Writer sends the bot's lines back to the engine. Each call writes exactly
// one newline-terminated line and flushes it.
type Writer struct {
	w   *bufio.Writer
	log *slog.Logger
}

func NewWriter(w io.Writer, log *slog.Logger) *Writer {
	return &Writer{w: bufio.NewWriter(w), log: logging.OrDiscard(log)}
}

func (w *Writer) SetLogger(log *slog.Logger) { w.log = logging.OrDiscard(log) }

// Ready announces the bot name. It is sent once, after initialization.
func (w *Writer) Ready(name string) error {
	if name == "" || strings.ContainsAny(name, "\r\n") {
		return fmt.Errorf("invalid bot name %q", name)
	}
	return w.writeLine(name)
}

// EndTurn sends this turn's commands. An empty slice sends an empty line.
func (w *Writer) EndTurn(cmds []game.Command) error {
	return w.writeLine(game.EncodeCommands(cmds))
}

func (w *Writer) writeLine(s string) error {
	if _, err := w.w.WriteString(s); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	w.log.Debug("wrote line", "text", s)
	return nil
}
