package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/slogtest"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestJSONHandlerWritesOneObjectPerRecord(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewJSONHandler(&buf, Options{Level: slog.LevelDebug}))

	log.Info("turn synced", "turn", 3, "ships", 2)
	log.With("player", 1).WithGroup("cell").Debug("patched", "x", 4, "y", 5)
	log.Error("desync", "err", errors.New("bad line"))

	recs := decodeLines(t, &buf)
	if len(recs) != 3 {
		t.Fatalf("records=%d want=3:\n%s", len(recs), buf.String())
	}
	if recs[0]["msg"] != "turn synced" || recs[0]["turn"] != float64(3) {
		t.Fatalf("record 0: %v", recs[0])
	}
	cell, ok := recs[1]["cell"].(map[string]any)
	if !ok || cell["x"] != float64(4) || recs[1]["player"] != float64(1) || cell["player"] != nil {
		t.Fatalf("record 1: %v", recs[1])
	}
	if recs[2]["err"] != "bad line" || recs[2]["level"] != "ERROR" {
		t.Fatalf("record 2: %v", recs[2])
	}
}

func TestJSONHandlerSatisfiesHandlerContract(t *testing.T) {
	var buf bytes.Buffer
	h := NewJSONHandler(&buf, Options{Level: slog.LevelDebug})
	results := func() []map[string]any {
		recs := decodeLines(t, &buf)
		buf.Reset()
		return recs
	}
	if err := slogtest.TestHandler(h, results); err != nil {
		t.Fatal(err)
	}
}

func TestJSONHandlerGroupsAndTime(t *testing.T) {
	var buf bytes.Buffer
	h := NewJSONHandler(&buf, Options{})

	nested := h.WithGroup("G").WithAttrs([]slog.Attr{slog.Int("a", 1)}).WithGroup("H")
	if err := nested.Handle(context.Background(), slog.NewRecord(time.Time{}, slog.LevelInfo, "no time", 0)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "deep", 0)
	r.AddAttrs(slog.Int("b", 2), slog.Group("empty"))
	if err := nested.Handle(context.Background(), r); err != nil {
		t.Fatalf("handle: %v", err)
	}

	recs := decodeLines(t, &buf)
	if len(recs) != 2 {
		t.Fatalf("records=%d want=2", len(recs))
	}
	if _, ok := recs[0]["time"]; ok {
		t.Fatalf("zero record time was written: %v", recs[0])
	}
	g, _ := recs[0]["G"].(map[string]any)
	if g["a"] != float64(1) || g["H"] != nil {
		t.Fatalf("record 0 groups: %v", recs[0])
	}
	g, _ = recs[1]["G"].(map[string]any)
	inner, _ := g["H"].(map[string]any)
	if g["a"] != float64(1) || inner["b"] != float64(2) || inner["empty"] != nil || recs[1]["time"] == nil {
		t.Fatalf("record 1: %v", recs[1])
	}
}

func TestJSONHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewJSONHandler(&buf, Options{}))
	log.Debug("hidden")
	log.Info("shown")
	if recs := decodeLines(t, &buf); len(recs) != 1 || recs[0]["msg"] != "shown" {
		t.Fatalf("records: %v", recs)
	}
}

func TestJSONHandlerIndent(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewJSONHandler(&buf, Options{Indent: true}))
	log.Info("hello", "k", "v")
	if !strings.Contains(buf.String(), "\n  \"k\": \"v\"") {
		t.Fatalf("expected indented output, got:\n%s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{"debug": slog.LevelDebug, "INFO": slog.LevelInfo, " warn ": slog.LevelWarn, "error": slog.LevelError} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q)=%v,%v want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestOpenFileAppends(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	name := BotLogName(2)
	if name != "khala_bot_2.log" {
		t.Fatalf("name=%q", name)
	}

	for i := 0; i < 2; i++ {
		log, closer, err := OpenFile(dir, name, Options{})
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		log.Info("run", "i", i)
		if err := closer.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}

	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n := strings.Count(string(raw), "\n"); n != 2 {
		t.Fatalf("lines=%d want=2:\n%s", n, raw)
	}
}

func TestDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Fatalf("OrDiscard(nil) returned nil")
	}
	l := Discard()
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("discard logger should not be enabled")
	}
}
