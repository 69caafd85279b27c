package protocol

import (
	"fmt"
	"log/slog"

	"github.com/brensch/khala/game"
	"github.com/brensch/khala/logging"
)

type cellPatch struct {
	pos    game.Position
	amount uint32
}

// SyncTurn reads one turn from r and applies it to w:
//
//	turn
//	N x [ playerID shipCount dropoffCount halite
//	      shipCount x (shipID x y cargo)
//	      dropoffCount x (structureID x y) ]
//	updateCount
//	updateCount x (x y halite)
//
// Ships and dropoffs are replaced by this turn's report, shipyards are kept
// and the halite grid is patched cell by cell. w is only modified once the
// whole turn has parsed; on error it still holds the previous turn.
//
// If the stream ends before the turn line, SyncTurn returns ErrStreamClosed.
func SyncTurn(r *LineReader, w *game.World, log *slog.Logger) error {
	log = logging.OrDiscard(log)

	tokens, err := r.Next()
	if err != nil {
		return err
	}
	if len(tokens) != 1 {
		return r.errorf("turn number", "got %d tokens, want 1", len(tokens))
	}
	v, err := r.parseUints("turn number", tokens)
	if err != nil {
		return err
	}
	turn := v[0]
	log.Debug("turn started", "turn", turn)

	var (
		ships    []game.Ship
		dropoffs []game.Structure
		halite   = make(map[game.PlayerID]uint32, w.NumPlayers)
	)
	for i := uint32(0); i < w.NumPlayers; i++ {
		const expected = "player: playerID shipCount dropoffCount halite"
		h, err := r.readUints(expected, 4)
		if err != nil {
			return err
		}
		// Blocks may arrive in any order; the header names its player.
		player := game.PlayerID(h[0])
		if uint32(player) >= w.NumPlayers {
			return r.errorf(expected, "unknown player %d", player)
		}
		if _, dup := halite[player]; dup {
			return r.errorf(expected, "player %d reported twice", player)
		}
		halite[player] = h[3]

		for n := uint32(0); n < h[1]; n++ {
			const expected = "ship: shipID x y cargo"
			s, err := r.readUints(expected, 4)
			if err != nil {
				return err
			}
			pos := game.Position{X: s[1], Y: s[2]}
			if !w.Size.Contains(pos) {
				return r.errorf(expected, "ship %d at %s outside %s map", s[0], pos, w.Size)
			}
			ships = append(ships, game.Ship{
				ID:       game.ShipID(s[0]),
				Owner:    player,
				Cargo:    s[3],
				Position: pos,
			})
		}

		for n := uint32(0); n < h[2]; n++ {
			const expected = "dropoff: structureID x y"
			d, err := r.readUints(expected, 3)
			if err != nil {
				return err
			}
			pos := game.Position{X: d[1], Y: d[2]}
			if !w.Size.Contains(pos) {
				return r.errorf(expected, "dropoff %d at %s outside %s map", d[0], pos, w.Size)
			}
			dropoffs = append(dropoffs, game.Structure{
				ID:       game.StructureID(d[0]),
				Owner:    player,
				Position: pos,
				Kind:     game.Dropoff,
			})
		}
		log.Debug("player synced", "turn", turn, "player", player, "ships", h[1], "dropoffs", h[2], "halite", h[3])
	}

	c, err := r.readUints("halite update count", 1)
	if err != nil {
		return err
	}
	patches := make([]cellPatch, 0, min(c[0], w.Size.Width*w.Size.Height))
	for n := uint32(0); n < c[0]; n++ {
		const expected = "halite update: x y amount"
		u, err := r.readUints(expected, 3)
		if err != nil {
			return err
		}
		pos := game.Position{X: u[0], Y: u[1]}
		if !w.Size.Contains(pos) {
			return r.errorf(expected, "cell %s outside %s map", pos, w.Size)
		}
		patches = append(patches, cellPatch{pos: pos, amount: u[2]})
	}

	w.Turn = turn
	w.Ships = ships
	w.Dropoffs = dropoffs
	if w.PlayerHalite == nil {
		w.PlayerHalite = make(map[game.PlayerID]uint32, len(halite))
	}
	for p, amount := range halite {
		w.PlayerHalite[p] = amount
	}
	for _, p := range patches {
		w.Halite.Set(p.pos, p.amount)
	}

	log.Debug("turn synced",
		"turn", turn,
		"ships", len(ships),
		"dropoffs", len(dropoffs),
		"cell_updates", len(patches),
		"lines", r.Line(),
	)
	return nil
}

// Desync formats the reader position for a postmortem log entry.
func Desync(r *LineReader) string {
	return fmt.Sprintf("line %d: %q", r.Line(), r.LastLine())
}
