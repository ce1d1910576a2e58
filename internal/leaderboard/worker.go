package leaderboard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// SnapshotSink persists snapshot payloads (implemented by the Postgres
// snapshot repository).
type SnapshotSink interface {
	Insert(ctx context.Context, generatedAt time.Time, entries []byte, sourceHash string) error
}

// SnapshotWorker periodically copies the live Redis board into Postgres
// so standings survive a cache flush and serve as a read fallback.
type SnapshotWorker struct {
	svc      *Service
	sink     SnapshotSink
	logger   zerolog.Logger
	interval time.Duration
	topN     int
}

func NewSnapshotWorker(svc *Service, sink SnapshotSink, interval time.Duration, topN int, logger zerolog.Logger) *SnapshotWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if topN <= 0 {
		topN = 50
	}
	return &SnapshotWorker{
		svc:      svc,
		sink:     sink,
		logger:   logger.With().Str("component", "leaderboard_snapshot_worker").Logger(),
		interval: interval,
		topN:     topN,
	}
}

// Run blocks until context cancellation.
func (w *SnapshotWorker) Run(ctx context.Context) error {
	if w.svc == nil || w.sink == nil {
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// run immediately
	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *SnapshotWorker) tick(ctx context.Context) {
	entries, err := w.svc.Top(ctx, w.topN)
	if err != nil {
		w.logger.Warn().Err(err).Msg("snapshot read failed")
		return
	}
	if len(entries) == 0 {
		return
	}

	data, err := json.Marshal(entries)
	if err != nil {
		w.logger.Warn().Err(err).Msg("snapshot encode failed")
		return
	}

	sourceHash := sha256.Sum256(data)
	now := time.Now().UTC()

	if err := w.sink.Insert(ctx, now, data, hex.EncodeToString(sourceHash[:])); err != nil {
		w.logger.Warn().Err(err).Msg("snapshot persist failed")
		return
	}

	w.logger.Info().
		Int("entries", len(entries)).
		Time("generated_at", now).
		Msg("leaderboard snapshot persisted")
}
