// Package logging provides the slog handlers and sinks used by the bot.
//
// The engine owns stdout and stdin, so bot logs always go to a file (or are
// discarded). Components take a *slog.Logger and never require one: nil means
// discard.
package logging

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Options configures a JSONHandler.
type Options struct {
	Level     slog.Leveler
	AddSource bool
	// Indent renders each record as indented JSON, which is easier to read
	// in postmortem dumps but several lines per record.
	Indent bool
}

// JSONHandler is a slog.Handler that writes one JSON object per record with
// grouped attributes nested as objects.
type JSONHandler struct {
	w    io.Writer
	mu   *sync.Mutex
	opts Options

	// scope holds WithGroup and WithAttrs calls in the order they were made.
	scope []scope
}

// scope is either an opened group or attributes added at that depth.
type scope struct {
	group string
	attrs []slog.Attr
}

func NewJSONHandler(w io.Writer, opts Options) *JSONHandler {
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}
	return &JSONHandler{w: w, mu: &sync.Mutex{}, opts: opts}
}

func (h *JSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *JSONHandler) Handle(_ context.Context, r slog.Record) error {
	payload := h.build(0, r)

	if !r.Time.IsZero() {
		payload[slog.TimeKey] = r.Time.Format(time.RFC3339Nano)
	}
	payload[slog.LevelKey] = r.Level.String()
	payload[slog.MessageKey] = r.Message
	if h.opts.AddSource {
		if src := sourceFromPC(r.PC); src != "" {
			payload[slog.SourceKey] = src
		}
	}

	var (
		b   []byte
		err error
	)
	if h.opts.Indent {
		b, err = json.MarshalIndent(payload, "", "  ")
	} else {
		b, err = json.Marshal(payload)
	}
	if err != nil {
		b = []byte(`{"level":` + strconv.Quote(r.Level.String()) +
			`,"msg":` + strconv.Quote(r.Message) +
			`,"log_error":` + strconv.Quote(err.Error()) + `}`)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.w.Write(append(b, '\n'))
	return err
}

// build collects the attributes from scope[i:] and the record. A group is
// only emitted when something lands in it.
func (h *JSONHandler) build(i int, r slog.Record) map[string]any {
	m := map[string]any{}
	for ; i < len(h.scope) && h.scope[i].group == ""; i++ {
		for _, a := range h.scope[i].attrs {
			putAttr(m, a)
		}
	}
	if i == len(h.scope) {
		r.Attrs(func(a slog.Attr) bool {
			putAttr(m, a)
			return true
		})
		return m
	}
	if inner := h.build(i+1, r); len(inner) > 0 {
		m[h.scope[i].group] = inner
	}
	return m
}

func (h *JSONHandler) with(s scope) *JSONHandler {
	clone := *h
	clone.scope = append(append(make([]scope, 0, len(h.scope)+1), h.scope...), s)
	return &clone
}

func (h *JSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return h.with(scope{attrs: append([]slog.Attr(nil), attrs...)})
}

func (h *JSONHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.with(scope{group: name})
}

func putAttr(dst map[string]any, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		// Empty keys inline the group.
		if a.Key == "" {
			for _, c := range v.Group() {
				putAttr(dst, c)
			}
			return
		}
		m, ok := dst[a.Key].(map[string]any)
		if !ok {
			m = map[string]any{}
		}
		for _, c := range v.Group() {
			putAttr(m, c)
		}
		if len(m) > 0 {
			dst[a.Key] = m
		}
		return
	}
	if a.Key == "" {
		return
	}
	dst[a.Key] = valueToAny(v)
}

func valueToAny(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return v.Any()
	default:
		return v.String()
	}
}

func sourceFromPC(pc uintptr) string {
	if pc == 0 {
		return ""
	}
	frames := runtime.CallersFrames([]uintptr{pc})
	f, _ := frames.Next()
	if f.File == "" {
		return ""
	}
	file := f.File
	if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
		file = file[idx+1:]
	}
	return file + ":" + strconv.Itoa(f.Line)
}
