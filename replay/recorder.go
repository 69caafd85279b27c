package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/brensch/khala/game"
)

const schemaVersion = "khala_turn_v1"

// Meta describes the run being recorded.
type Meta struct {
	GameID  string // generated when empty
	Seed    uint64
	BotName string
}

// Recorder streams turns into dir/tmp/<game>.parquet and moves the file
// into dir when finalized, so readers never see a partial recording.
type Recorder struct {
	meta    Meta
	tmpPath string
	outPath string

	file   *os.File
	writer *parquet.GenericWriter[TurnRow]

	started  bool
	summary  Summary
	rows     int
	lastTurn uint32
}

func NewRecorder(dir string, meta Meta) (*Recorder, error) {
	if dir == "" {
		return nil, fmt.Errorf("record dir is required")
	}
	if meta.GameID == "" {
		meta.GameID = uuid.NewString()
	}

	absOut, err := filepath.Abs(dir)
	if err != nil {
		absOut = dir
	}
	tmpDir := filepath.Join(absOut, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create tmp dir: %w", err)
	}

	name := meta.GameID + ".parquet"
	tmpPath := filepath.Join(tmpDir, name)
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open tmp parquet: %w", err)
	}

	w := parquet.NewGenericWriter[TurnRow](
		f,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.SkipPageBounds("halite"),
	)
	w.SetKeyValueMetadata("schema", schemaVersion)
	w.SetKeyValueMetadata("game_id", meta.GameID)
	w.SetKeyValueMetadata("seed", strconv.FormatUint(meta.Seed, 10))
	w.SetKeyValueMetadata("bot_name", meta.BotName)

	return &Recorder{
		meta:    meta,
		tmpPath: tmpPath,
		outPath: filepath.Join(absOut, name),
		file:    f,
		writer:  w,
	}, nil
}

func (r *Recorder) GameID() string { return r.meta.GameID }
func (r *Recorder) Rows() int      { return r.rows }

// RecordTurn appends one turn. The first call also stores the game's
// dimensions and constants in the file metadata.
func (r *Recorder) RecordTurn(w *game.World, cmds []game.Command) error {
	if r.writer == nil {
		return fmt.Errorf("recorder is closed")
	}
	if !r.started {
		constants, err := json.Marshal(w.Constants.Map())
		if err != nil {
			return fmt.Errorf("encode constants: %w", err)
		}
		r.writer.SetKeyValueMetadata("my_id", strconv.FormatUint(uint64(w.MyID), 10))
		r.writer.SetKeyValueMetadata("num_players", strconv.FormatUint(uint64(w.NumPlayers), 10))
		r.writer.SetKeyValueMetadata("width", strconv.FormatUint(uint64(w.Size.Width), 10))
		r.writer.SetKeyValueMetadata("height", strconv.FormatUint(uint64(w.Size.Height), 10))
		r.writer.SetKeyValueMetadata("constants", string(constants))
		r.summary = Summary{
			GameID:  r.meta.GameID,
			Seed:    r.meta.Seed,
			BotName: r.meta.BotName,
			MyID:    uint32(w.MyID),
			Players: w.NumPlayers,
			Width:   w.Size.Width,
			Height:  w.Size.Height,
		}
		r.started = true
	}

	if _, err := r.writer.Write([]TurnRow{NewTurnRow(r.meta.GameID, w, cmds)}); err != nil {
		return fmt.Errorf("write turn %d: %w", w.Turn, err)
	}
	r.rows++
	r.lastTurn = w.Turn
	r.summary.FinalHalite = uint64(w.PlayerHalite[w.MyID])
	r.summary.Ships = len(w.MyShips())
	return nil
}

// Finalize closes the parquet writer and moves the file out of tmp/. If no
// turns were recorded the file is removed and the summary path is empty.
func (r *Recorder) Finalize() (Summary, error) {
	if r.writer == nil && r.file == nil {
		return r.summary, nil
	}

	var closeErr error
	if r.writer != nil {
		closeErr = r.writer.Close()
		r.writer = nil
	}
	var fileErr error
	if r.file != nil {
		_ = r.file.Sync()
		fileErr = r.file.Close()
		r.file = nil
	}
	if closeErr != nil {
		return Summary{}, fmt.Errorf("close parquet writer: %w", closeErr)
	}
	if fileErr != nil {
		return Summary{}, fmt.Errorf("close parquet file: %w", fileErr)
	}

	if r.rows == 0 {
		_ = os.Remove(r.tmpPath)
		return Summary{GameID: r.meta.GameID, Seed: r.meta.Seed, BotName: r.meta.BotName}, nil
	}
	if err := os.Rename(r.tmpPath, r.outPath); err != nil {
		return Summary{}, fmt.Errorf("rename parquet: %w", err)
	}

	r.summary.Turns = r.lastTurn
	r.summary.Path = r.outPath
	r.summary.RecordedAt = time.Now().UTC()
	return r.summary, nil
}
