package main

import (
	"regexp"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/khala/game"
	"github.com/brensch/khala/replay"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func plain(s string) string { return ansi.ReplaceAllString(s, "") }

func viewWorld() *game.World {
	size := game.MapSize{Width: 4, Height: 2}
	w := &game.World{
		Size:       size,
		Constants:  game.NewConstants(map[string]string{game.ConstMaxCellProduction: "1000"}),
		Halite:     game.NewResourceGrid(size),
		NumPlayers: 2,
		MyID:       1,
		Shipyards: []game.Structure{
			{ID: game.ShipyardID(0), Owner: 0, Position: game.Position{X: 0, Y: 0}},
			{ID: game.ShipyardID(1), Owner: 1, Position: game.Position{X: 3, Y: 1}},
		},
		Dropoffs:     []game.Structure{{ID: 5, Owner: 1, Position: game.Position{X: 2, Y: 0}, Kind: game.Dropoff}},
		Ships:        []game.Ship{{ID: 1, Owner: 1, Position: game.Position{X: 1, Y: 1}}},
		PlayerHalite: map[game.PlayerID]uint32{0: 10, 1: 20},
	}
	w.Halite.Set(game.Position{X: 1, Y: 0}, 900)
	w.Halite.Set(game.Position{X: 0, Y: 1}, 100)
	return w
}

func TestRenderGrid(t *testing.T) {
	got := plain(renderGrid(viewWorld()))
	want := "Y#D \n.1 Y\n"
	if got != want {
		t.Fatalf("grid=%q want %q", got, want)
	}
}

func TestRenderScoresMarksOwnPlayer(t *testing.T) {
	lines := strings.Split(strings.TrimSpace(plain(renderScores(viewWorld()))), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines=%q", lines)
	}
	if strings.Contains(lines[0], "(me)") || !strings.HasSuffix(lines[1], "(me)") {
		t.Fatalf("scores=%q", lines)
	}
	if !strings.Contains(lines[1], "1 ships") {
		t.Fatalf("player 1 line=%q", lines[1])
	}
}

func TestHaliteGlyph(t *testing.T) {
	cases := []struct {
		amount uint32
		want   string
	}{
		{0, " "}, {1, "."}, {249, "."}, {250, ":"}, {500, "+"}, {750, "#"}, {1000, "#"},
		{1<<30 + 1, "#"}, {1<<32 - 1, "#"},
	}
	for _, c := range cases {
		if got := haliteGlyph(c.amount, 1000); got != c.want {
			t.Fatalf("haliteGlyph(%d)=%q want %q", c.amount, got, c.want)
		}
	}
}

func TestModelStepsThroughTurns(t *testing.T) {
	g := &replay.Game{Rows: make([]replay.TurnRow, 3)}
	var m tea.Model = model{game: g}

	key := func(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }
	m, _ = m.Update(key("l"))
	m, _ = m.Update(key("l"))
	m, _ = m.Update(key("l"))
	if m.(model).index != 2 {
		t.Fatalf("index=%d want 2", m.(model).index)
	}
	m, _ = m.Update(key("g"))
	if m.(model).index != 0 {
		t.Fatalf("index=%d want 0", m.(model).index)
	}

	m, cmd := m.Update(key(" "))
	if !m.(model).playing || cmd == nil {
		t.Fatalf("space should start playback")
	}
	for i := 0; i < 3; i++ {
		m, _ = m.Update(TickMsg{})
	}
	if m.(model).index != 2 || m.(model).playing {
		t.Fatalf("playback should stop on the last turn, index=%d playing=%v", m.(model).index, m.(model).playing)
	}
}
