package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/khala/replay"
)

type model struct {
	game    *replay.Game
	index   int
	playing bool
}

type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*150, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	last := len(m.game.Rows) - 1
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "right", "l":
			m.index = min(m.index+1, last)
		case "left", "h":
			m.index = max(m.index-1, 0)
		case "pgdown":
			m.index = min(m.index+25, last)
		case "pgup":
			m.index = max(m.index-25, 0)
		case "home", "g":
			m.index = 0
		case "end", "G":
			m.index = last
		case " ":
			m.playing = !m.playing
			if m.playing {
				return m, tickCmd()
			}
		}
	case TickMsg:
		if !m.playing {
			return m, nil
		}
		if m.index >= last {
			m.playing = false
			return m, nil
		}
		m.index++
		return m, tickCmd()
	}
	return m, nil
}

func (m model) View() string {
	w, err := m.game.World(m.index)
	if err != nil {
		return fmt.Sprintf("turn index %d: %v\n\nPress q to quit.\n", m.index, err)
	}
	row := m.game.Rows[m.index]

	s := titleStyle.Render(fmt.Sprintf("game %s  %s  seed %d", m.game.GameID, m.game.BotName, m.game.Seed)) + "\n"
	s += fmt.Sprintf("Turn %d (%d/%d)  %s\n\n", w.Turn, m.index+1, len(m.game.Rows), w.Size)
	s += renderGrid(w) + "\n"
	s += renderScores(w) + "\n"
	s += "Commands: " + row.Commands + "\n\n"
	s += dimStyle.Render("←/→ step  pgup/pgdn jump  space play  q quit") + "\n"
	return s
}

func listGames(path string, limit int) error {
	idx, err := replay.OpenIndex(path)
	if err != nil {
		return err
	}
	defer idx.Close()

	games, err := idx.ListGames(context.Background(), limit)
	if err != nil {
		return err
	}
	for _, g := range games {
		fmt.Printf("%s  %s  %2dp %3dx%-3d  turns=%-4d halite=%-7d %s\n",
			g.RecordedAt.Format(time.DateTime), g.GameID, g.Players, g.Width, g.Height, g.Turns, g.FinalHalite, g.Path)
	}
	return nil
}

func main() {
	indexPath := flag.String("index", "", "List games from this sqlite index instead of viewing a file")
	limit := flag.Int("limit", 20, "Number of games to list")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s <game.parquet> | -index games.sqlite\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *indexPath != "" {
		if err := listGames(*indexPath, *limit); err != nil {
			log.Fatalf("Failed to list games: %v", err)
		}
		return
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	g, err := replay.ReadGame(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read game: %v", err)
	}
	if len(g.Rows) == 0 {
		log.Fatalf("Game %s has no turns", g.GameID)
	}

	p := tea.NewProgram(model{game: g}, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Viewer error: %v", err)
	}
}
