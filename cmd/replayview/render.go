package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/brensch/khala/game"
)

var (
	playerColors = []lipgloss.Color{"39", "208", "170", "76"}

	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

func playerStyle(p game.PlayerID) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(playerColors[int(p)%len(playerColors)]).Bold(true)
}

// haliteGlyph shades a cell relative to the cell cap.
func haliteGlyph(amount, maxCell uint32) string {
	if maxCell == 0 {
		maxCell = 1000
	}
	switch q := uint64(amount) * 4 / uint64(maxCell); {
	case amount == 0:
		return " "
	case q == 0:
		return "."
	case q == 1:
		return ":"
	case q == 2:
		return "+"
	default:
		return "#"
	}
}

// renderGrid draws one character per cell. Ships show as their owner's
// digit, shipyards as Y and dropoffs as D.
func renderGrid(w *game.World) string {
	maxCell, _ := w.Constants.Uint(game.ConstMaxCellProduction)

	type mark struct {
		glyph string
		owner game.PlayerID
	}
	marks := make(map[game.Position]mark, len(w.Ships)+len(w.Shipyards)+len(w.Dropoffs))
	for _, s := range w.Structures() {
		g := "Y"
		if s.Kind == game.Dropoff {
			g = "D"
		}
		marks[s.Position] = mark{g, s.Owner}
	}
	for _, s := range w.Ships {
		marks[s.Position] = mark{fmt.Sprint(s.Owner % 10), s.Owner}
	}

	var b strings.Builder
	for y := uint32(0); y < w.Size.Height; y++ {
		for x := uint32(0); x < w.Size.Width; x++ {
			p := game.Position{X: x, Y: y}
			if m, ok := marks[p]; ok {
				b.WriteString(playerStyle(m.owner).Render(m.glyph))
				continue
			}
			b.WriteString(dimStyle.Render(haliteGlyph(w.HaliteAt(p), maxCell)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func renderScores(w *game.World) string {
	var b strings.Builder
	for p := uint32(0); p < w.NumPlayers; p++ {
		id := game.PlayerID(p)
		label := fmt.Sprintf("player %d: %6d halite %3d ships", p, w.PlayerHalite[id], len(w.ShipsOf(id)))
		if id == w.MyID {
			label += " (me)"
		}
		b.WriteString(playerStyle(id).Render(label))
		b.WriteByte('\n')
	}
	return b.String()
}
