// Package replay records games to Parquet, one row per turn, and indexes the
// recordings in SQLite.
package replay

import (
	"github.com/brensch/khala/game"
)

// TurnRow is a complete snapshot of one synchronized turn together with the
// command line the bot answered with.
//
// The halite grid is stored row-major in full on every row; zstd compresses
// the mostly unchanged grids well and it keeps every row self-contained.
type TurnRow struct {
	GameID string `parquet:"game_id,dict"`
	Turn   int64  `parquet:"turn"`

	PlayerHalite []PlayerRow    `parquet:"player_halite"`
	Ships        []ShipRow      `parquet:"ships"`
	Shipyards    []StructureRow `parquet:"shipyards"`
	Dropoffs     []StructureRow `parquet:"dropoffs"`

	Halite []int64 `parquet:"halite"`

	Commands string `parquet:"commands"`
}

// Engine values are uint32; they are stored as int64 so every value
// round-trips. Coordinates fit int32 because maps are capped at
// game.MaxCells.
type PlayerRow struct {
	ID     int64 `parquet:"id"`
	Halite int64 `parquet:"halite"`
}

type ShipRow struct {
	ID    int64 `parquet:"id"`
	Owner int64 `parquet:"owner"`
	X     int32 `parquet:"x"`
	Y     int32 `parquet:"y"`
	Cargo int64 `parquet:"cargo"`
}

type StructureRow struct {
	ID    int64 `parquet:"id"`
	Owner int64 `parquet:"owner"`
	X     int32 `parquet:"x"`
	Y     int32 `parquet:"y"`
}

// NewTurnRow snapshots w.
func NewTurnRow(gameID string, w *game.World, cmds []game.Command) TurnRow {
	row := TurnRow{
		GameID:   gameID,
		Turn:     int64(w.Turn),
		Commands: game.EncodeCommands(cmds),
	}

	row.PlayerHalite = make([]PlayerRow, 0, w.NumPlayers)
	for p := uint32(0); p < w.NumPlayers; p++ {
		row.PlayerHalite = append(row.PlayerHalite, PlayerRow{
			ID:     int64(p),
			Halite: int64(w.PlayerHalite[game.PlayerID(p)]),
		})
	}

	row.Ships = make([]ShipRow, len(w.Ships))
	for i, s := range w.Ships {
		row.Ships[i] = ShipRow{
			ID:    int64(s.ID),
			Owner: int64(s.Owner),
			X:     int32(s.Position.X),
			Y:     int32(s.Position.Y),
			Cargo: int64(s.Cargo),
		}
	}
	row.Shipyards = structureRows(w.Shipyards)
	row.Dropoffs = structureRows(w.Dropoffs)

	row.Halite = make([]int64, 0, int(w.Size.Cells()))
	for _, r := range w.Halite {
		for _, v := range r {
			row.Halite = append(row.Halite, int64(v))
		}
	}
	return row
}

func structureRows(in []game.Structure) []StructureRow {
	out := make([]StructureRow, len(in))
	for i, s := range in {
		out[i] = StructureRow{
			ID:    int64(s.ID),
			Owner: int64(s.Owner),
			X:     int32(s.Position.X),
			Y:     int32(s.Position.Y),
		}
	}
	return out
}

func structuresFromRows(in []StructureRow, kind game.StructureKind) []game.Structure {
	if len(in) == 0 {
		return nil
	}
	out := make([]game.Structure, len(in))
	for i, s := range in {
		out[i] = game.Structure{
			ID:       game.StructureID(s.ID),
			Owner:    game.PlayerID(s.Owner),
			Position: game.Position{X: uint32(s.X), Y: uint32(s.Y)},
			Kind:     kind,
		}
	}
	return out
}
