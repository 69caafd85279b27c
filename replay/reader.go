package replay

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/parquet-go/parquet-go"

	"github.com/brensch/khala/game"
)

// Game is a recording loaded back into memory.
type Game struct {
	Meta
	MyID       game.PlayerID
	NumPlayers uint32
	Size       game.MapSize
	Constants  game.Constants
	Rows       []TurnRow
}

// ReadGame loads a recording written by Recorder.
func ReadGame(path string) (*Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	if v, _ := pf.Lookup("schema"); v != schemaVersion {
		return nil, fmt.Errorf("unsupported schema %q", v)
	}

	g := &Game{}
	g.GameID, _ = pf.Lookup("game_id")
	g.BotName, _ = pf.Lookup("bot_name")
	if g.Seed, err = lookupUint(pf, "seed"); err != nil {
		return nil, err
	}
	myID, err := lookupUint(pf, "my_id")
	if err != nil {
		return nil, err
	}
	g.MyID = game.PlayerID(myID)
	players, err := lookupUint(pf, "num_players")
	if err != nil {
		return nil, err
	}
	g.NumPlayers = uint32(players)
	width, err := lookupUint(pf, "width")
	if err != nil {
		return nil, err
	}
	height, err := lookupUint(pf, "height")
	if err != nil {
		return nil, err
	}
	g.Size = game.MapSize{Width: uint32(width), Height: uint32(height)}

	raw, _ := pf.Lookup("constants")
	values := map[string]string{}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &values); err != nil {
			return nil, fmt.Errorf("decode constants: %w", err)
		}
	}
	g.Constants = game.NewConstants(values)

	reader := parquet.NewGenericReader[TurnRow](pf)
	defer reader.Close()

	g.Rows = make([]TurnRow, 0, int(reader.NumRows()))
	buf := make([]TurnRow, 64)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			g.Rows = append(g.Rows, buf[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read rows: %w", err)
		}
	}
	return g, nil
}

func lookupUint(pf *parquet.File, key string) (uint64, error) {
	v, ok := pf.Lookup(key)
	if !ok {
		return 0, fmt.Errorf("missing metadata %q", key)
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("metadata %q: %w", key, err)
	}
	return n, nil
}

// World rebuilds the world as it stood on recorded row i.
func (g *Game) World(i int) (*game.World, error) {
	if i < 0 || i >= len(g.Rows) {
		return nil, fmt.Errorf("turn index %d out of range [0,%d)", i, len(g.Rows))
	}
	row := g.Rows[i]
	cells := int(g.Size.Width) * int(g.Size.Height)
	if len(row.Halite) != cells {
		return nil, fmt.Errorf("turn %d: halite has %d cells, want %d", row.Turn, len(row.Halite), cells)
	}

	w := &game.World{
		Size:         g.Size,
		Constants:    g.Constants,
		Halite:       game.NewResourceGrid(g.Size),
		Shipyards:    structuresFromRows(row.Shipyards, game.Shipyard),
		Dropoffs:     structuresFromRows(row.Dropoffs, game.Dropoff),
		PlayerHalite: make(map[game.PlayerID]uint32, len(row.PlayerHalite)),
		NumPlayers:   g.NumPlayers,
		MyID:         g.MyID,
		Turn:         uint32(row.Turn),
	}
	for y := uint32(0); y < g.Size.Height; y++ {
		for x := uint32(0); x < g.Size.Width; x++ {
			w.Halite.Set(game.Position{X: x, Y: y}, uint32(row.Halite[int(y)*int(g.Size.Width)+int(x)]))
		}
	}
	for _, p := range row.PlayerHalite {
		w.PlayerHalite[game.PlayerID(p.ID)] = uint32(p.Halite)
	}
	if len(row.Ships) > 0 {
		w.Ships = make([]game.Ship, len(row.Ships))
		for j, s := range row.Ships {
			w.Ships[j] = game.Ship{
				ID:       game.ShipID(s.ID),
				Owner:    game.PlayerID(s.Owner),
				Position: game.Position{X: uint32(s.X), Y: uint32(s.Y)},
				Cargo:    uint32(s.Cargo),
			}
		}
	}
	return w, nil
}
