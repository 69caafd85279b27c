package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/brensch/khala/bot"
	"github.com/brensch/khala/config"
	"github.com/brensch/khala/logging"
	"github.com/brensch/khala/replay"
	"github.com/brensch/khala/transport"
)

func main() {
	configPath := flag.String("config", "", "Optional YAML config file")
	envFile := flag.String("env-file", ".env", "Optional .env file")
	wsURL := flag.String("ws", "", "Play through a websocket relay instead of stdin/stdout")
	recordDir := flag.String("record", "", "Directory to record the game to as parquet")
	logDir := flag.String("log-dir", "", "Directory for the bot log file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [seed]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// stdout belongs to the engine; diagnostics go to stderr until the
	// player id is known.
	boot := slog.New(logging.NewJSONHandler(os.Stderr, logging.Options{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		boot.Error("load config", "err", err)
		os.Exit(2)
	}
	if *wsURL != "" {
		cfg.WebSocketURL = *wsURL
	}
	if *recordDir != "" {
		cfg.RecordDir = *recordDir
	}
	if *logDir != "" {
		cfg.LogDir = *logDir
	}

	seed := uint64(time.Now().UnixNano())
	if flag.NArg() > 0 {
		seed, err = strconv.ParseUint(flag.Arg(0), 10, 64)
		if err != nil {
			boot.Error("bad seed", "arg", flag.Arg(0), "err", err)
			os.Exit(2)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, seed, boot); err != nil {
		boot.Error("bot failed", "err", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, seed uint64, boot *slog.Logger) error {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	var (
		in  io.Reader = os.Stdin
		out io.Writer = os.Stdout
		// Closing the input unblocks a pending read on shutdown.
		closer io.Closer = os.Stdin
	)
	if cfg.WebSocketURL != "" {
		conn, err := transport.DialWebSocket(ctx, transport.Config{
			URL:            cfg.WebSocketURL,
			ConnectTimeout: cfg.ConnectTimeout,
		})
		if err != nil {
			return err
		}
		in, out, closer = conn, conn, conn
		boot.Info("connected to relay", "url", cfg.WebSocketURL)
	}
	defer closer.Close()

	go func() {
		<-ctx.Done()
		_ = closer.Close()
	}()

	session, err := bot.Start(in, out, boot)
	if err != nil {
		return err
	}
	myID := uint32(session.World.MyID)

	log, logFile, err := logging.OpenFile(cfg.LogDir, logging.BotLogName(myID), logging.Options{Level: level})
	if err != nil {
		return err
	}
	defer logFile.Close()
	session.SetLogger(log)

	name := cfg.BotName(myID)
	if err := session.Ready(name); err != nil {
		return err
	}
	log.Info("bot ready",
		"name", name,
		"seed", seed,
		"player", myID,
		"players", session.World.NumPlayers,
		"size", session.World.Size.String(),
	)

	var rec *replay.Recorder
	if cfg.RecordDir != "" {
		rec, err = replay.NewRecorder(cfg.RecordDir, replay.Meta{Seed: seed, BotName: name})
		if err != nil {
			return err
		}
	}

	policy := bot.NewRandomWalk(seed, uint32(cfg.SpawnUntilTurn))
	var turnRec bot.TurnRecorder
	if rec != nil {
		turnRec = rec
	}
	turns, playErr := session.Play(ctx, policy, turnRec)
	if errors.Is(playErr, context.Canceled) {
		log.Info("shutdown requested", "turns", turns)
		playErr = nil
	}

	if rec != nil {
		if err := finishRecording(ctx, cfg, rec, log); err != nil {
			log.Warn("recording", "err", err)
		}
	}
	if playErr != nil {
		log.Error("game aborted", "turns", turns, "err", playErr)
		return playErr
	}
	log.Info("game over", "turns", turns)
	return nil
}

func finishRecording(ctx context.Context, cfg config.Config, rec *replay.Recorder, log *slog.Logger) error {
	sum, err := rec.Finalize()
	if err != nil {
		return err
	}
	if sum.Path == "" {
		return nil
	}
	log.Info("recorded game", "game_id", sum.GameID, "path", sum.Path, "turns", sum.Turns)

	if cfg.IndexPath == "" {
		return nil
	}
	idx, err := replay.OpenIndex(cfg.IndexPath)
	if err != nil {
		return err
	}
	defer idx.Close()
	// The signal context may already be done.
	return idx.RecordGame(context.WithoutCancel(ctx), sum)
}
