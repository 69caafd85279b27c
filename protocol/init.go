package protocol

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/brensch/khala/game"
	"github.com/brensch/khala/logging"
)

// ReadInit consumes the one-time setup sequence and returns the initial world:
//
//	key value key value ...      game constants
//	N myID                       player count and own id
//	N x (ownerID x y)            starting shipyards
//	W H                          map size
//	H x (W integers)             initial halite, row by row
func ReadInit(r *LineReader, log *slog.Logger) (*game.World, error) {
	log = logging.OrDiscard(log)

	constants, err := readConstants(r)
	if err != nil {
		return nil, err
	}
	log.Info("read game constants", "count", constants.Len())

	v, err := r.readUints("player count and own id", 2)
	if err != nil {
		return nil, err
	}
	numPlayers, myID := v[0], game.PlayerID(v[1])
	if numPlayers == 0 {
		return nil, r.errorf("player count and own id", "player count is zero")
	}
	if uint32(myID) >= numPlayers {
		return nil, r.errorf("player count and own id", "own id %d not below player count %d", myID, numPlayers)
	}
	log.Info("read players", "num_players", numPlayers, "my_id", myID)

	shipyards := make([]game.Structure, 0, numPlayers)
	shipyardLines := make([]ProtocolError, 0, numPlayers)
	seen := make(map[game.PlayerID]bool, numPlayers)
	for i := uint32(0); i < numPlayers; i++ {
		const expected = "shipyard: ownerID x y"
		v, err := r.readUints(expected, 3)
		if err != nil {
			return nil, err
		}
		owner := game.PlayerID(v[0])
		if uint32(owner) >= numPlayers {
			return nil, r.errorf(expected, "owner %d not below player count %d", owner, numPlayers)
		}
		if seen[owner] {
			return nil, r.errorf(expected, "second shipyard for player %d", owner)
		}
		seen[owner] = true
		shipyards = append(shipyards, game.Structure{
			ID:       game.ShipyardID(owner),
			Owner:    owner,
			Position: game.Position{X: v[1], Y: v[2]},
			Kind:     game.Shipyard,
		})
		shipyardLines = append(shipyardLines, ProtocolError{Line: r.Line(), Text: r.LastLine()})
	}

	v, err = r.readUints("map size: width height", 2)
	if err != nil {
		return nil, err
	}
	size := game.MapSize{Width: v[0], Height: v[1]}
	if size.Width == 0 || size.Height == 0 {
		return nil, r.errorf("map size: width height", "empty map %s", size)
	}
	if size.Cells() > game.MaxCells {
		return nil, r.errorf("map size: width height", "map %s has %d cells, limit is %d", size, size.Cells(), game.MaxCells)
	}
	log.Info("read map size", "size", size.String())

	// Shipyard lines precede the map size, so their bounds are checked now.
	for i, s := range shipyards {
		if !size.Contains(s.Position) {
			pe := shipyardLines[i]
			pe.Expected = "shipyard inside the map"
			pe.Err = fmt.Errorf("player %d shipyard at %s outside %s map", s.Owner, s.Position, size)
			return nil, &pe
		}
	}
	sort.Slice(shipyards, func(i, j int) bool { return shipyards[i].ID < shipyards[j].ID })

	grid := game.NewResourceGrid(size)
	for y := range grid {
		row, err := r.readUints("halite row", int(size.Width))
		if err != nil {
			return nil, err
		}
		copy(grid[y], row)
	}

	initial, err := constants.Uint(game.ConstInitialEnergy)
	if err != nil {
		return nil, fmt.Errorf("initial player halite: %w", err)
	}
	halite := make(map[game.PlayerID]uint32, numPlayers)
	for p := uint32(0); p < numPlayers; p++ {
		halite[game.PlayerID(p)] = initial
	}

	w := &game.World{
		Size:         size,
		Constants:    constants,
		Halite:       grid,
		Shipyards:    shipyards,
		PlayerHalite: halite,
		NumPlayers:   numPlayers,
		MyID:         myID,
	}
	log.Info("game initialized", "lines", r.Line(), "total_halite", grid.Total())
	return w, nil
}

func readConstants(r *LineReader) (game.Constants, error) {
	const expected = "constants: key value pairs"
	s, err := r.ReadLine()
	if err != nil {
		return game.Constants{}, &ProtocolError{Line: r.Line() + 1, Expected: expected, Err: err}
	}
	tokens := TokenizeConstants(s)
	if len(tokens)%2 != 0 {
		return game.Constants{}, r.errorf(expected, "odd token count %d", len(tokens))
	}
	kv := make(map[string]string, len(tokens)/2)
	for i := 0; i < len(tokens); i += 2 {
		kv[tokens[i]] = tokens[i+1]
	}
	return game.NewConstants(kv), nil
}
