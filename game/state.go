// Package game defines the world model for a Halite client.
//
// The model is rebuilt from engine input every turn: ships and dropoffs are
// replaced wholesale, shipyards persist from initialization and the halite
// grid is patched cell by cell.
package game

import "fmt"

type (
	PlayerID    uint32
	ShipID      uint32
	StructureID uint32
)

// ShipyardIDBase offsets client-assigned shipyard ids away from the ids the
// engine hands out to ships and dropoffs.
const ShipyardIDBase StructureID = 0x4000

// ShipyardID is the structure id given to a player's shipyard.
func ShipyardID(owner PlayerID) StructureID {
	return ShipyardIDBase + StructureID(owner)
}

type Ship struct {
	ID       ShipID
	Owner    PlayerID
	Cargo    uint32
	Position Position
}

type StructureKind uint8

const (
	Shipyard StructureKind = iota
	Dropoff
)

func (k StructureKind) String() string {
	if k == Dropoff {
		return "dropoff"
	}
	return "shipyard"
}

type Structure struct {
	ID       StructureID
	Owner    PlayerID
	Position Position
	Kind     StructureKind
}

// ResourceGrid holds halite per cell, indexed [y][x].
type ResourceGrid [][]uint32

// NewResourceGrid allocates a zeroed grid for size.
func NewResourceGrid(size MapSize) ResourceGrid {
	cells := make([]uint32, int(size.Width)*int(size.Height))
	g := make(ResourceGrid, size.Height)
	for y := range g {
		g[y] = cells[y*int(size.Width) : (y+1)*int(size.Width) : (y+1)*int(size.Width)]
	}
	return g
}

func (g ResourceGrid) At(p Position) uint32 {
	return g[p.Y][p.X]
}

func (g ResourceGrid) Set(p Position, amount uint32) {
	g[p.Y][p.X] = amount
}

// Total sums every cell.
func (g ResourceGrid) Total() uint64 {
	var sum uint64
	for _, row := range g {
		for _, v := range row {
			sum += uint64(v)
		}
	}
	return sum
}

// World is the complete client-side view of one game.
type World struct {
	Size      MapSize
	Constants Constants
	Halite    ResourceGrid

	Ships []Ship
	// Shipyards are created once at initialization, one per player, in
	// structure id order. Dropoffs are rebuilt every turn.
	Shipyards []Structure
	Dropoffs  []Structure

	PlayerHalite map[PlayerID]uint32

	NumPlayers uint32
	MyID       PlayerID
	Turn       uint32
}

// HaliteAt returns the halite on the cell at p.
func (w *World) HaliteAt(p Position) uint32 {
	return w.Halite.At(p)
}

// Structures returns shipyards followed by this turn's dropoffs.
func (w *World) Structures() []Structure {
	out := make([]Structure, 0, len(w.Shipyards)+len(w.Dropoffs))
	out = append(out, w.Shipyards...)
	return append(out, w.Dropoffs...)
}

// ShipsOf returns the ships owned by player.
func (w *World) ShipsOf(player PlayerID) []Ship {
	var out []Ship
	for _, s := range w.Ships {
		if s.Owner == player {
			out = append(out, s)
		}
	}
	return out
}

// MyShips returns the client's own ships.
func (w *World) MyShips() []Ship {
	return w.ShipsOf(w.MyID)
}

// ShipyardOf returns the shipyard for player.
func (w *World) ShipyardOf(player PlayerID) (Structure, bool) {
	for _, s := range w.Shipyards {
		if s.Owner == player {
			return s, true
		}
	}
	return Structure{}, false
}

// ShipAt returns the ship occupying p, if any.
func (w *World) ShipAt(p Position) (Ship, bool) {
	for _, s := range w.Ships {
		if s.Position == p {
			return s, true
		}
	}
	return Ship{}, false
}

// Validate checks the structural invariants of the model.
func (w *World) Validate() error {
	if len(w.Halite) != int(w.Size.Height) {
		return fmt.Errorf("grid has %d rows, map height is %d", len(w.Halite), w.Size.Height)
	}
	for y, row := range w.Halite {
		if len(row) != int(w.Size.Width) {
			return fmt.Errorf("grid row %d has %d cells, map width is %d", y, len(row), w.Size.Width)
		}
	}
	if len(w.Shipyards) != int(w.NumPlayers) {
		return fmt.Errorf("%d shipyards for %d players", len(w.Shipyards), w.NumPlayers)
	}
	seen := make(map[PlayerID]bool, len(w.Shipyards))
	for _, s := range w.Shipyards {
		if s.Kind != Shipyard {
			return fmt.Errorf("structure %d in shipyard list is a %s", s.ID, s.Kind)
		}
		if seen[s.Owner] {
			return fmt.Errorf("player %d has more than one shipyard", s.Owner)
		}
		seen[s.Owner] = true
		if !w.Size.Contains(s.Position) {
			return fmt.Errorf("shipyard %d at %s outside %s map", s.ID, s.Position, w.Size)
		}
	}
	for _, s := range w.Ships {
		if !w.Size.Contains(s.Position) {
			return fmt.Errorf("ship %d at %s outside %s map", s.ID, s.Position, w.Size)
		}
	}
	for _, s := range w.Dropoffs {
		if !w.Size.Contains(s.Position) {
			return fmt.Errorf("dropoff %d at %s outside %s map", s.ID, s.Position, w.Size)
		}
	}
	return nil
}

// Clone performs a deep copy of the world.
func (w *World) Clone() *World {
	if w == nil {
		return nil
	}

	out := &World{
		Size:       w.Size,
		Constants:  w.Constants,
		NumPlayers: w.NumPlayers,
		MyID:       w.MyID,
		Turn:       w.Turn,
	}

	out.Halite = NewResourceGrid(w.Size)
	for y := range w.Halite {
		copy(out.Halite[y], w.Halite[y])
	}

	if len(w.Ships) > 0 {
		out.Ships = make([]Ship, len(w.Ships))
		copy(out.Ships, w.Ships)
	}
	if len(w.Shipyards) > 0 {
		out.Shipyards = make([]Structure, len(w.Shipyards))
		copy(out.Shipyards, w.Shipyards)
	}
	if len(w.Dropoffs) > 0 {
		out.Dropoffs = make([]Structure, len(w.Dropoffs))
		copy(out.Dropoffs, w.Dropoffs)
	}

	out.PlayerHalite = make(map[PlayerID]uint32, len(w.PlayerHalite))
	for k, v := range w.PlayerHalite {
		out.PlayerHalite[k] = v
	}
	return out
}
