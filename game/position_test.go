package game

import "testing"

func TestWraparoundIsItsOwnInverse(t *testing.T) {
	sizes := []MapSize{{1, 1}, {2, 2}, {3, 5}, {32, 32}, {64, 40}}
	for _, size := range sizes {
		for y := uint32(0); y < size.Height; y++ {
			for x := uint32(0); x < size.Width; x++ {
				p := Position{X: x, Y: y}
				if got := p.West(size).East(size); got != p {
					t.Fatalf("size=%s east(west(%s))=%s", size, p, got)
				}
				if got := p.East(size).West(size); got != p {
					t.Fatalf("size=%s west(east(%s))=%s", size, p, got)
				}
				if got := p.South(size).North(size); got != p {
					t.Fatalf("size=%s north(south(%s))=%s", size, p, got)
				}
				if got := p.North(size).South(size); got != p {
					t.Fatalf("size=%s south(north(%s))=%s", size, p, got)
				}
			}
		}
	}
}

func TestWraparoundAtEdges(t *testing.T) {
	size := MapSize{Width: 8, Height: 5}

	cases := []struct {
		name string
		got  Position
		want Position
	}{
		{"east of last column", Position{7, 3}.East(size), Position{0, 3}},
		{"west of first column", Position{0, 3}.West(size), Position{7, 3}},
		{"south of last row", Position{2, 4}.South(size), Position{2, 0}},
		{"north of first row", Position{2, 0}.North(size), Position{2, 4}},
		{"interior east", Position{3, 3}.East(size), Position{4, 3}},
		{"interior north", Position{3, 3}.North(size), Position{3, 2}},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Fatalf("%s: got %s want %s", c.name, c.got, c.want)
		}
	}
}

func TestStepMatchesCardinalHelpers(t *testing.T) {
	size := MapSize{Width: 4, Height: 3}
	p := Position{X: 0, Y: 0}

	if got := p.Step(East, size); got != p.East(size) {
		t.Fatalf("step east=%s", got)
	}
	if got := p.Step(West, size); got != (Position{3, 0}) {
		t.Fatalf("step west=%s", got)
	}
	if got := p.Step(South, size); got != (Position{0, 1}) {
		t.Fatalf("step south=%s", got)
	}
	if got := p.Step(North, size); got != (Position{0, 2}) {
		t.Fatalf("step north=%s", got)
	}

	var zero Direction
	if got := p.Step(zero, size); got != p.East(size) {
		t.Fatalf("zero direction should step east, got %s", got)
	}

	for _, d := range Directions {
		if got := p.Step(d, size).Step(d.Opposite(), size); got != p {
			t.Fatalf("%s then %s: got %s", d, d.Opposite(), got)
		}
	}
}

func TestNeighbors(t *testing.T) {
	size := MapSize{Width: 3, Height: 3}
	got := Position{0, 0}.Neighbors(size)
	want := [4]Position{{1, 0}, {2, 0}, {0, 1}, {0, 2}}
	if got != want {
		t.Fatalf("neighbors=%v want=%v", got, want)
	}
}

func TestWrapSignedCoordinates(t *testing.T) {
	size := MapSize{Width: 5, Height: 4}
	cases := []struct {
		x, y int
		want Position
	}{
		{0, 0, Position{0, 0}},
		{-1, -1, Position{4, 3}},
		{5, 4, Position{0, 0}},
		{12, -9, Position{2, 3}},
	}
	for _, c := range cases {
		if got := size.Wrap(c.x, c.y); got != c.want {
			t.Fatalf("wrap(%d,%d)=%s want %s", c.x, c.y, got, c.want)
		}
		if !size.Contains(size.Wrap(c.x, c.y)) {
			t.Fatalf("wrap(%d,%d) out of bounds", c.x, c.y)
		}
	}
	if size.Contains(Position{5, 0}) || size.Contains(Position{0, 4}) {
		t.Fatalf("contains accepted an out-of-bounds cell")
	}
}

func TestWrapZeroSizedAxis(t *testing.T) {
	cases := []struct {
		size MapSize
		want Position
	}{
		{MapSize{}, Position{0, 0}},
		{MapSize{Width: 0, Height: 4}, Position{0, 3}},
		{MapSize{Width: 5, Height: 0}, Position{3, 0}},
	}
	for _, c := range cases {
		if got := c.size.Wrap(-2, -5); got != c.want {
			t.Fatalf("size=%s wrap(-2,-5)=%s want %s", c.size, got, c.want)
		}
	}
}

func TestMapSizeCells(t *testing.T) {
	if got := (MapSize{Width: 1<<32 - 1, Height: 1<<32 - 1}).Cells(); got != (1<<32-1)*(1<<32-1) {
		t.Fatalf("cells=%d", got)
	}
	if got := (MapSize{Width: 64, Height: 32}).Cells(); got != 2048 {
		t.Fatalf("cells=%d want 2048", got)
	}
}
