package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Recorder persists the outcome of a completed session: one upsert per
// player, last write wins. Submitting the same completed session twice
// (a client retry) lands on the same record state, which is what makes
// the write safe to retry at the caller's discretion.
type Recorder struct {
	redis  *redis.Client
	logger zerolog.Logger
}

func NewRecorder(redis *redis.Client, logger zerolog.Logger) *Recorder {
	return &Recorder{
		redis:  redis,
		logger: logger.With().Str("component", "score_recorder").Logger(),
	}
}

// Record upserts the player's score record. The ZSET member score and
// the meta hash are written in one transaction so a board read never
// sees a score without its display metadata.
func (r *Recorder) Record(ctx context.Context, rec Record) error {
	if rec.PlayerID == "" {
		return fmt.Errorf("%w: empty player id", ErrPersistence)
	}
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	pipe := r.redis.TxPipeline()
	pipe.ZAdd(ctx, boardKey, redis.Z{Score: float64(rec.LatestScore), Member: rec.PlayerID})
	pipe.HSet(ctx, metaKey(rec.PlayerID), map[string]interface{}{
		"display_name": rec.DisplayName,
		"total":        rec.Total,
		"updated_at":   updatedAt.UTC().Format(time.RFC3339Nano),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// Notify live leaderboard readers; delivery is best effort.
	if err := r.redis.Publish(ctx, updatesChannel, rec.PlayerID).Err(); err != nil {
		r.logger.Warn().Err(err).Str("player_id", rec.PlayerID).Msg("failed to publish score update")
	}
	return nil
}
