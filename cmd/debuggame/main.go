package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/brensch/khala/bot"
	"github.com/brensch/khala/game"
	"github.com/brensch/khala/logging"
	"github.com/brensch/khala/protocol"
	"github.com/brensch/khala/replay"
)

func main() {
	seed := flag.Uint64("seed", 1, "Seed for the policy replayed against the transcript")
	spawnUntil := flag.Uint("spawn-until", 200, "Last turn the policy spawns on")
	recordDir := flag.String("record", "", "Also write the transcript as a parquet replay into this directory")
	verbose := flag.Bool("v", false, "Log protocol debug records to stderr")
	quiet := flag.Bool("q", false, "Only print the per-turn summary line")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <transcript>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to open transcript: %v", err)
	}
	defer f.Close()

	var logger *slog.Logger
	if *verbose {
		logger = slog.New(logging.NewJSONHandler(os.Stderr, logging.Options{Level: slog.LevelDebug}))
	}

	var (
		rec     *replay.Recorder
		turnRec bot.TurnRecorder
	)
	if *recordDir != "" {
		rec, err = replay.NewRecorder(*recordDir, replay.Meta{Seed: *seed, BotName: "debuggame"})
		if err != nil {
			log.Fatalf("Failed to create recorder: %v", err)
		}
		turnRec = rec
	}

	turns, err := replayTranscript(f, os.Stdout, *seed, uint32(*spawnUntil), *quiet, turnRec, logger)
	if rec != nil {
		sum, ferr := rec.Finalize()
		if ferr != nil {
			log.Printf("Failed to finalize recording: %v", ferr)
		} else if sum.Path != "" {
			log.Printf("Replay written to: %s", sum.Path)
		}
	}
	if err != nil {
		log.Fatalf("Transcript failed after %d turns: %v", turns, err)
	}

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Printf("  Transcript parsed cleanly: %d turns\n", turns)
	fmt.Println("═══════════════════════════════════════════════════════════════")
}

// replayTranscript feeds a captured engine stream through the protocol
// parser, printing each synchronized turn and what the policy would answer.
func replayTranscript(in io.Reader, out io.Writer, seed uint64, spawnUntil uint32, quiet bool, rec bot.TurnRecorder, logger *slog.Logger) (int, error) {
	r := protocol.NewLineReader(in, logger)
	w, err := protocol.ReadInit(r, logger)
	if err != nil {
		return 0, fmt.Errorf("init: %w", err)
	}
	fmt.Fprintf(out, "Map %s, %d players, me=%d, %d constants\n", w.Size, w.NumPlayers, w.MyID, w.Constants.Len())
	for _, s := range w.Shipyards {
		fmt.Fprintf(out, "  shipyard %d owner=%d at %s\n", s.ID, s.Owner, s.Position)
	}
	fmt.Fprintf(out, "  total halite %d\n", w.Halite.Total())

	policy := bot.NewRandomWalk(seed, spawnUntil)
	turns := 0
	for {
		err := protocol.SyncTurn(r, w, logger)
		if protocol.IsEndOfGame(err) {
			return turns, nil
		}
		if err != nil {
			return turns, fmt.Errorf("%w (at %s)", err, protocol.Desync(r))
		}
		turns++

		cmds, err := policy.Decide(w)
		if err != nil {
			return turns, err
		}
		if rec != nil {
			if err := rec.RecordTurn(w, cmds); err != nil {
				return turns, err
			}
		}
		if err := w.Validate(); err != nil {
			fmt.Fprintf(out, "  warning: %v\n", err)
		}

		fmt.Fprintf(out, "Turn %3d | ships %3d | dropoffs %2d | halite %s | > %s\n",
			w.Turn, len(w.Ships), len(w.Dropoffs), scores(w), game.EncodeCommands(cmds))
		if quiet {
			continue
		}
		for _, s := range w.MyShips() {
			fmt.Fprintf(out, "    ship %d at %s cargo=%d cell=%d\n", s.ID, s.Position, s.Cargo, w.HaliteAt(s.Position))
		}
	}
}

func scores(w *game.World) string {
	parts := make([]string, 0, w.NumPlayers)
	for p := uint32(0); p < w.NumPlayers; p++ {
		parts = append(parts, fmt.Sprintf("%d:%d", p, w.PlayerHalite[game.PlayerID(p)]))
	}
	return strings.Join(parts, " ")
}
