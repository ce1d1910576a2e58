package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type snapshotStore interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SnapshotRepository persists periodic leaderboard snapshots so the
// board survives a Redis flush and can serve reads during an outage.
type SnapshotRepository struct {
	db snapshotStore
}

func NewSnapshotRepository(db snapshotStore) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

const insertSnapshotSQL = `
INSERT INTO leaderboard_snapshots (generated_at, entries, source_hash)
VALUES ($1, $2, $3)
`

// Insert stores one snapshot payload (JSON-encoded entries).
func (r *SnapshotRepository) Insert(ctx context.Context, generatedAt time.Time, entries []byte, sourceHash string) error {
	if _, err := r.db.Exec(ctx, insertSnapshotSQL, generatedAt, entries, sourceHash); err != nil {
		return fmt.Errorf("insert leaderboard snapshot: %w", err)
	}
	return nil
}

const latestSnapshotSQL = `
SELECT entries
FROM leaderboard_snapshots
ORDER BY generated_at DESC
LIMIT 1
`

// Latest returns the most recent snapshot payload, or nil when no
// snapshot has been taken yet.
func (r *SnapshotRepository) Latest(ctx context.Context) ([]byte, error) {
	var entries []byte
	err := r.db.QueryRow(ctx, latestSnapshotSQL).Scan(&entries)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch latest snapshot: %w", err)
	}
	return entries, nil
}
