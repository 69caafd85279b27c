package game

import (
	"fmt"
	"strings"
	"testing"
)

// dumpWorld is a test helper to visualize the map.
func dumpWorld(w *World) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Turn=%d Size=%s Me=%d\n", w.Turn, w.Size, w.MyID)
	grid := make([][]byte, w.Size.Height)
	for y := range grid {
		grid[y] = []byte(strings.Repeat(".", int(w.Size.Width)))
	}
	for _, s := range w.Structures() {
		sym := byte('Y')
		if s.Kind == Dropoff {
			sym = 'D'
		}
		grid[s.Position.Y][s.Position.X] = sym
	}
	for _, s := range w.Ships {
		grid[s.Position.Y][s.Position.X] = byte('a' + s.Owner)
	}
	for _, row := range grid {
		b.Write(row)
		b.WriteByte('\n')
	}
	return b.String()
}

func testWorld() *World {
	size := MapSize{Width: 4, Height: 3}
	w := &World{
		Size:       size,
		Halite:     NewResourceGrid(size),
		NumPlayers: 2,
		MyID:       1,
		Shipyards: []Structure{
			{ID: ShipyardID(0), Owner: 0, Position: Position{0, 0}, Kind: Shipyard},
			{ID: ShipyardID(1), Owner: 1, Position: Position{3, 2}, Kind: Shipyard},
		},
		Dropoffs:     []Structure{{ID: 9, Owner: 1, Position: Position{1, 1}, Kind: Dropoff}},
		Ships:        []Ship{{ID: 1, Owner: 1, Position: Position{3, 2}}, {ID: 2, Owner: 0, Position: Position{2, 0}, Cargo: 40}},
		PlayerHalite: map[PlayerID]uint32{0: 1000, 1: 1000},
	}
	w.Halite.Set(Position{2, 1}, 77)
	return w
}

func TestResourceGridLayout(t *testing.T) {
	g := NewResourceGrid(MapSize{Width: 3, Height: 2})
	if len(g) != 2 || len(g[0]) != 3 || len(g[1]) != 3 {
		t.Fatalf("grid shape %dx%d", len(g[0]), len(g))
	}
	g.Set(Position{X: 2, Y: 0}, 5)
	if g[0][2] != 5 || g.At(Position{2, 0}) != 5 {
		t.Fatalf("grid not indexed [y][x]: %v", g)
	}
	if g[1][0] != 0 {
		t.Fatalf("set leaked into next row: %v", g)
	}
	g[0] = append(g[0], 9)
	if g[1][0] != 0 {
		t.Fatalf("append on a row overwrote the next row: %v", g)
	}
	if g.Total() != 5 {
		t.Fatalf("total=%d", g.Total())
	}
}

func TestStructuresConcatenatesShipyardsFirst(t *testing.T) {
	w := testWorld()
	t.Logf("\n%s", dumpWorld(w))

	got := w.Structures()
	if len(got) != 3 {
		t.Fatalf("structures=%d want=3", len(got))
	}
	if got[0].Kind != Shipyard || got[1].Kind != Shipyard || got[2].Kind != Dropoff {
		t.Fatalf("unexpected order: %+v", got)
	}

	yard, ok := w.ShipyardOf(1)
	if !ok || yard.Position != (Position{3, 2}) || yard.ID != 0x4001 {
		t.Fatalf("shipyard of 1: %+v ok=%v", yard, ok)
	}
	if _, ok := w.ShipyardOf(5); ok {
		t.Fatalf("unexpected shipyard for unknown player")
	}
}

func TestWorldQueries(t *testing.T) {
	w := testWorld()

	if got := w.HaliteAt(Position{2, 1}); got != 77 {
		t.Fatalf("halite=%d want=77", got)
	}
	mine := w.MyShips()
	if len(mine) != 1 || mine[0].ID != 1 {
		t.Fatalf("my ships=%+v", mine)
	}
	if s, ok := w.ShipAt(Position{2, 0}); !ok || s.ID != 2 {
		t.Fatalf("ship at (2,0)=%+v ok=%v", s, ok)
	}
	if err := w.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateRejectsBrokenInvariants(t *testing.T) {
	w := testWorld()
	w.Ships[0].Position = Position{4, 0}
	if err := w.Validate(); err == nil {
		t.Fatalf("expected out-of-bounds ship to fail validation")
	}

	w = testWorld()
	w.Shipyards[1].Owner = 0
	if err := w.Validate(); err == nil {
		t.Fatalf("expected duplicate shipyard owner to fail validation")
	}

	w = testWorld()
	w.Halite = w.Halite[:2]
	if err := w.Validate(); err == nil {
		t.Fatalf("expected short grid to fail validation")
	}
}

func TestCloneIsDeep(t *testing.T) {
	w := testWorld()
	c := w.Clone()

	c.Halite.Set(Position{0, 0}, 123)
	c.Ships[0].Cargo = 999
	c.Shipyards[0].Position = Position{1, 2}
	c.PlayerHalite[0] = 1

	if w.HaliteAt(Position{0, 0}) != 0 {
		t.Fatalf("clone shares grid")
	}
	if w.Ships[0].Cargo != 0 {
		t.Fatalf("clone shares ships")
	}
	if w.Shipyards[0].Position != (Position{0, 0}) {
		t.Fatalf("clone shares shipyards")
	}
	if w.PlayerHalite[0] != 1000 {
		t.Fatalf("clone shares player halite")
	}
	if (*World)(nil).Clone() != nil {
		t.Fatalf("nil clone should be nil")
	}
}
