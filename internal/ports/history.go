package ports

import (
	"context"
	"time"
)

// GameRecord is the durable summary of one finished game.
type GameRecord struct {
	GameID       string
	WinnerUserID string
	PlayerIDs    []string
	Turns        int
	BaseBet      int64
	StartedAt    time.Time
	FinishedAt   time.Time
}

// HistoryPort persists finished-game summaries for stats and auditing.
type HistoryPort interface {
	RecordGame(ctx context.Context, rec GameRecord) error
	RecentGames(ctx context.Context, limit int) ([]GameRecord, error)
	Close() error
}
