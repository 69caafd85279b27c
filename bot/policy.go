// Package bot drives a game: it owns the turn loop and the decision policy.
package bot

import (
	"fmt"
	"math/rand"

	"github.com/brensch/khala/game"
)

// Decider chooses the commands for one turn.
type Decider interface {
	Decide(w *game.World) ([]game.Command, error)
}

// RandomWalk moves ships in random directions until the cell under them is
// rich enough to hold on, and builds ships early in the game while the
// shipyard is clear.
type RandomWalk struct {
	rng            *rand.Rand
	spawnUntilTurn uint32
}

func NewRandomWalk(seed uint64, spawnUntilTurn uint32) *RandomWalk {
	return &RandomWalk{
		rng:            rand.New(rand.NewSource(int64(seed))),
		spawnUntilTurn: spawnUntilTurn,
	}
}

func (p *RandomWalk) Decide(w *game.World) ([]game.Command, error) {
	maxProduction, err := w.Constants.Uint(game.ConstMaxCellProduction)
	if err != nil {
		return nil, err
	}
	shipCost, err := w.Constants.Uint(game.ConstNewEntityEnergyCost)
	if err != nil {
		return nil, err
	}
	yard, ok := w.ShipyardOf(w.MyID)
	if !ok {
		return nil, fmt.Errorf("no shipyard for player %d", w.MyID)
	}

	mine := w.MyShips()
	cmds := make([]game.Command, 0, len(mine)+1)
	yardOccupied := false
	for _, s := range mine {
		if s.Position == yard.Position {
			yardOccupied = true
		}
		if w.HaliteAt(s.Position) < maxProduction {
			cmds = append(cmds, game.Move{Ship: s.ID, Direction: game.Directions[p.rng.Intn(len(game.Directions))]})
		} else {
			cmds = append(cmds, game.Hold{Ship: s.ID})
		}
	}

	if w.Turn <= p.spawnUntilTurn && w.PlayerHalite[w.MyID] >= shipCost && !yardOccupied {
		cmds = append(cmds, game.Spawn{})
	}
	return cmds, nil
}
