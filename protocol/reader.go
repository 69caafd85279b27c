// Package protocol implements the Halite engine's line-oriented text protocol:
// one-time game initialization, per-turn world synchronization and the
// per-turn command line written back to the engine.
//
// Every read is positional. A malformed line leaves the rest of the stream
// misaligned, so parse failures are returned as *ProtocolError and are never
// recovered locally.
package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/brensch/khala/logging"
)

// ErrStreamClosed is returned when the engine's input ends.
var ErrStreamClosed = errors.New("input stream closed")

// ProtocolError describes a line that does not match the expected shape.
type ProtocolError struct {
	Line     int    // 1-based line number in the stream
	Text     string // raw line, without the newline
	Expected string // shape the reader was looking for
	Err      error
}

func (e *ProtocolError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("protocol: expected %s: %v", e.Expected, e.Err)
	}
	return fmt.Sprintf("protocol: line %d %q: expected %s: %v", e.Line, e.Text, e.Expected, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// IsEndOfGame reports whether err is a clean end of input at a turn boundary
// rather than a stream that was cut off mid-sequence.
func IsEndOfGame(err error) bool {
	var pe *ProtocolError
	return errors.Is(err, ErrStreamClosed) && !errors.As(err, &pe)
}

// LineReader reads the engine stream one line at a time.
type LineReader struct {
	r    *bufio.Reader
	log  *slog.Logger
	line int
	text string
}

func NewLineReader(r io.Reader, log *slog.Logger) *LineReader {
	return &LineReader{
		r:   bufio.NewReaderSize(r, 64*1024),
		log: logging.OrDiscard(log),
	}
}

func (r *LineReader) SetLogger(log *slog.Logger) { r.log = logging.OrDiscard(log) }

// Line is the number of the last line read.
func (r *LineReader) Line() int { return r.line }

// LastLine is the text of the last line read, for diagnostics.
func (r *LineReader) LastLine() string { return r.text }

// ReadLine returns the next line without its terminator. A final line with
// no trailing newline is still returned; the read after it reports
// ErrStreamClosed.
func (r *LineReader) ReadLine() (string, error) {
	s, err := r.r.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: %v", ErrStreamClosed, err)
		}
		if s == "" {
			return "", ErrStreamClosed
		}
	}
	s = strings.TrimRight(s, "\r\n")
	r.line++
	r.text = s
	r.log.Debug("read line", "line", r.line, "text", s)
	return s, nil
}

// Next reads a line and splits it into tokens.
func (r *LineReader) Next() ([]string, error) {
	s, err := r.ReadLine()
	if err != nil {
		return nil, err
	}
	return Tokenize(s), nil
}

// errorf builds a ProtocolError for the last line read.
func (r *LineReader) errorf(expected, format string, args ...any) *ProtocolError {
	return &ProtocolError{
		Line:     r.line,
		Text:     r.text,
		Expected: expected,
		Err:      fmt.Errorf(format, args...),
	}
}

// readUints reads one line of exactly n unsigned integers.
func (r *LineReader) readUints(expected string, n int) ([]uint32, error) {
	tokens, err := r.Next()
	if err != nil {
		return nil, &ProtocolError{Line: r.line + 1, Expected: expected, Err: err}
	}
	if len(tokens) != n {
		return nil, r.errorf(expected, "got %d tokens, want %d", len(tokens), n)
	}
	return r.parseUints(expected, tokens)
}

func (r *LineReader) parseUints(expected string, tokens []string) ([]uint32, error) {
	out := make([]uint32, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseUint(tok, 10, 32)
		if err != nil {
			return nil, r.errorf(expected, "token %d %q is not an unsigned integer", i, tok)
		}
		out[i] = uint32(v)
	}
	return out, nil
}
