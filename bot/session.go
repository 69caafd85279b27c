package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/brensch/khala/game"
	"github.com/brensch/khala/logging"
	"github.com/brensch/khala/protocol"
)

// TurnRecorder receives the synchronized world and the commands sent for
// every turn.
type TurnRecorder interface {
	RecordTurn(w *game.World, cmds []game.Command) error
}

// Session is one game against the engine.
type Session struct {
	World *game.World

	in  *protocol.LineReader
	out *protocol.Writer
	log *slog.Logger
}

// Start reads the initialization sequence from in.
func Start(in io.Reader, out io.Writer, log *slog.Logger) (*Session, error) {
	log = logging.OrDiscard(log)
	r := protocol.NewLineReader(in, log)
	w, err := protocol.ReadInit(r, log)
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	return &Session{
		World: w,
		in:    r,
		out:   protocol.NewWriter(out, log),
		log:   log,
	}, nil
}

// SetLogger switches logging once the player id is known.
func (s *Session) SetLogger(log *slog.Logger) {
	s.log = logging.OrDiscard(log)
	s.in.SetLogger(s.log)
	s.out.SetLogger(s.log)
}

// Ready announces the bot name. The engine starts sending turns after it.
func (s *Session) Ready(name string) error {
	return s.out.Ready(name)
}

// Play runs the turn loop until the engine closes the stream. rec may be nil.
// It returns the number of turns played.
func (s *Session) Play(ctx context.Context, d Decider, rec TurnRecorder) (int, error) {
	turns := 0
	for {
		if err := ctx.Err(); err != nil {
			return turns, err
		}

		err := protocol.SyncTurn(s.in, s.World, s.log)
		if protocol.IsEndOfGame(err) {
			s.log.Info("engine closed the stream", "turns", turns, "last_turn", s.World.Turn)
			return turns, nil
		}
		if err != nil {
			s.log.Error("protocol desync",
				"err", err,
				"turn", s.World.Turn,
				"at", protocol.Desync(s.in),
			)
			return turns, fmt.Errorf("turn after %d: %w", s.World.Turn, err)
		}

		start := time.Now()
		cmds, err := d.Decide(s.World)
		if err != nil {
			return turns, fmt.Errorf("decide turn %d: %w", s.World.Turn, err)
		}
		if rec != nil {
			if err := rec.RecordTurn(s.World, cmds); err != nil {
				// Recording is best-effort; the engine must still get its line.
				s.log.Warn("record turn", "turn", s.World.Turn, "err", err)
			}
		}
		if err := s.out.EndTurn(cmds); err != nil {
			return turns, fmt.Errorf("end turn %d: %w", s.World.Turn, err)
		}
		turns++

		s.log.Info("turn",
			"turn", s.World.Turn,
			"ships", len(s.World.MyShips()),
			"halite", s.World.PlayerHalite[s.World.MyID],
			"commands", len(cmds),
			"took", time.Since(start),
		)
	}
}
