package replay

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// Fixed width so recorded_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Summary describes one finished recording.
type Summary struct {
	GameID      string
	Seed        uint64
	BotName     string
	MyID        uint32
	Players     uint32
	Width       uint32
	Height      uint32
	Turns       uint32
	Ships       int
	FinalHalite uint64
	Path        string
	RecordedAt  time.Time
}

// Index is a SQLite catalogue of recorded games.
type Index struct {
	db *sql.DB
}

func OpenIndex(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Index{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS games (
			game_id TEXT PRIMARY KEY,
			seed TEXT NOT NULL,
			bot_name TEXT NOT NULL,
			my_id INTEGER NOT NULL,
			players INTEGER NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			turns INTEGER NOT NULL,
			ships INTEGER NOT NULL,
			final_halite INTEGER NOT NULL,
			path TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS games_recorded_at ON games(recorded_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (x *Index) Close() error {
	if x == nil || x.db == nil {
		return nil
	}
	return x.db.Close()
}

// RecordGame inserts s, replacing any earlier entry for the same game.
func (x *Index) RecordGame(ctx context.Context, s Summary) error {
	if s.GameID == "" {
		return fmt.Errorf("summary has no game id")
	}
	recordedAt := s.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}
	_, err := x.db.ExecContext(ctx,
		`INSERT INTO games(game_id, seed, bot_name, my_id, players, width, height, turns, ships, final_halite, path, recorded_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(game_id) DO UPDATE SET
			seed=excluded.seed, bot_name=excluded.bot_name, my_id=excluded.my_id,
			players=excluded.players, width=excluded.width, height=excluded.height,
			turns=excluded.turns, ships=excluded.ships, final_halite=excluded.final_halite,
			path=excluded.path, recorded_at=excluded.recorded_at;`,
		s.GameID,
		// TEXT keeps seeds above MaxInt64 intact.
		strconv.FormatUint(s.Seed, 10),
		s.BotName,
		s.MyID,
		s.Players,
		s.Width,
		s.Height,
		s.Turns,
		s.Ships,
		int64(s.FinalHalite),
		s.Path,
		recordedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("record game %s: %w", s.GameID, err)
	}
	return nil
}

// ListGames returns up to limit games, newest first. A limit of zero or
// less returns every game.
func (x *Index) ListGames(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := x.db.QueryContext(ctx,
		`SELECT game_id, seed, bot_name, my_id, players, width, height, turns, ships, final_halite, path, recorded_at
		 FROM games ORDER BY recorded_at DESC, game_id LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			s          Summary
			seed       string
			halite     int64
			recordedAt string
		)
		if err := rows.Scan(&s.GameID, &seed, &s.BotName, &s.MyID, &s.Players, &s.Width, &s.Height,
			&s.Turns, &s.Ships, &halite, &s.Path, &recordedAt); err != nil {
			return nil, err
		}
		if s.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
			return nil, fmt.Errorf("game %s: bad seed %q: %w", s.GameID, seed, err)
		}
		s.FinalHalite = uint64(halite)
		if t, err := time.Parse(timeLayout, recordedAt); err == nil {
			s.RecordedAt = t
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
