package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SnapshotSource serves a persisted copy of the board when Redis has
// nothing (cold start, flush, outage).
type SnapshotSource interface {
	Latest(ctx context.Context) ([]byte, error)
}

// ServiceOptions configures leaderboard reads.
type ServiceOptions struct {
	TopN int
}

// Service turns the stored score records into ordered standings and
// resolves a single player's rank against the fetched slice.
type Service struct {
	redis     *redis.Client
	snapshots SnapshotSource
	logger    zerolog.Logger
	topN      int
}

func NewService(redis *redis.Client, snapshots SnapshotSource, logger zerolog.Logger, opts ServiceOptions) *Service {
	topN := opts.TopN
	if topN <= 0 {
		topN = 50
	}
	return &Service{
		redis:     redis,
		snapshots: snapshots,
		logger:    logger.With().Str("component", "leaderboard").Logger(),
		topN:      topN,
	}
}

// Top returns the ranked top entries. Reads go to the live Redis board
// first and fall back to the latest Postgres snapshot when the board is
// empty or unreachable.
func (s *Service) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > s.topN {
		limit = s.topN
	}

	records, err := s.fetchRecords(ctx, limit)
	if err != nil {
		s.logger.Warn().Err(err).Msg("live leaderboard fetch failed")
	}
	if len(records) > 0 {
		return Rank(records), nil
	}

	entries, snapErr := s.snapshotFallback(ctx, limit)
	if snapErr != nil {
		if err != nil {
			return nil, fmt.Errorf("fetch leaderboard: %w", err)
		}
		return nil, snapErr
	}
	return entries, nil
}

// Standings returns the top entries together with the requesting
// player's resolved rank. found == false means the player is not inside
// the fetched slice and their exact rank is unknown; it never means
// rank zero.
func (s *Service) Standings(ctx context.Context, limit int, playerID string) ([]Entry, int, bool, error) {
	entries, err := s.Top(ctx, limit)
	if err != nil {
		return nil, 0, false, err
	}
	if playerID == "" {
		return entries, 0, false, nil
	}
	rank, found := RankOf(entries, playerID)
	return entries, rank, found, nil
}

func (s *Service) fetchRecords(ctx context.Context, limit int) ([]Record, error) {
	results, err := s.redis.ZRevRangeWithScores(ctx, boardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(results))
	for _, z := range results {
		playerID, ok := z.Member.(string)
		if !ok {
			continue
		}
		rec, err := s.readMeta(ctx, playerID)
		if err != nil {
			s.logger.Warn().Err(err).Str("player_id", playerID).Msg("failed to read score metadata")
			continue
		}
		rec.LatestScore = int(z.Score)
		records = append(records, rec)
	}
	return records, nil
}

func (s *Service) readMeta(ctx context.Context, playerID string) (Record, error) {
	data, err := s.redis.HGetAll(ctx, metaKey(playerID)).Result()
	if err != nil {
		return Record{}, err
	}

	rec := Record{PlayerID: playerID}
	rec.DisplayName = data["display_name"]
	rec.Total = parseInt(data["total"])
	if raw := data["updated_at"]; raw != "" {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			rec.UpdatedAt = ts
		}
	}
	return rec, nil
}

func (s *Service) snapshotFallback(ctx context.Context, limit int) ([]Entry, error) {
	if s.snapshots == nil {
		return nil, nil
	}
	payload, err := s.snapshots.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot fallback: %w", err)
	}
	if payload == nil {
		return nil, nil
	}

	var entries []Entry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("decode snapshot payload: %w", err)
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func parseInt(val string) int {
	if val == "" {
		return 0
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return i
}
