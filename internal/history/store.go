package history

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"switchgame/internal/ports"
)

const timeFormat = time.RFC3339Nano

const schema = `
CREATE TABLE IF NOT EXISTS games (
	game_id     TEXT PRIMARY KEY,
	winner_id   TEXT NOT NULL,
	player_ids  TEXT NOT NULL,
	turns       INTEGER NOT NULL,
	base_bet    INTEGER NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_games_finished_at ON games (finished_at DESC);
`

// Store persists finished-game summaries to SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the history store at the provided path, creating the schema on
// first use.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// RecordGame persists one finished-game summary.
func (s *Store) RecordGame(ctx context.Context, rec ports.GameRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(rec.GameID) == "" {
		return fmt.Errorf("game id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT OR REPLACE INTO games
		 (game_id, winner_id, player_ids, turns, base_bet, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.GameID,
		rec.WinnerUserID,
		strings.Join(rec.PlayerIDs, ","),
		rec.Turns,
		rec.BaseBet,
		rec.StartedAt.UTC().Format(timeFormat),
		rec.FinishedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("record game: %w", err)
	}
	return nil
}

// RecentGames returns up to limit summaries, most recently finished first.
func (s *Store) RecentGames(ctx context.Context, limit int) ([]ports.GameRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT game_id, winner_id, player_ids, turns, base_bet, started_at, finished_at
		 FROM games ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var out []ports.GameRecord
	for rows.Next() {
		var rec ports.GameRecord
		var players, startedAt, finishedAt string
		if err := rows.Scan(&rec.GameID, &rec.WinnerUserID, &players, &rec.Turns, &rec.BaseBet, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		if players != "" {
			rec.PlayerIDs = strings.Split(players, ",")
		}
		if rec.StartedAt, err = time.Parse(timeFormat, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if rec.FinishedAt, err = time.Parse(timeFormat, finishedAt); err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

var _ ports.HistoryPort = (*Store)(nil)
