package leaderboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	ws "github.com/faithframes/quiz-service/pkg/http/ws"
)

// Broadcaster listens for score-update events on Redis Pub/Sub and
// pushes fresh standings to every connected WebSocket viewer. This is
// the live-updating read path: the board is re-read on each write, so
// viewers always see a ranking computed from the current records.
type Broadcaster struct {
	redis  *redis.Client
	hub    *ws.Hub
	svc    *Service
	topN   int
	logger zerolog.Logger
}

// NewBroadcaster creates a Pub/Sub powered leaderboard broadcaster.
func NewBroadcaster(redis *redis.Client, hub *ws.Hub, svc *Service, topN int, logger zerolog.Logger) *Broadcaster {
	if topN <= 0 {
		topN = 10
	}
	return &Broadcaster{
		redis:  redis,
		hub:    hub,
		svc:    svc,
		topN:   topN,
		logger: logger.With().Str("component", "leaderboard_broadcaster").Logger(),
	}
}

// Run subscribes to the update channel and blocks until the context is
// cancelled.
func (b *Broadcaster) Run(ctx context.Context) error {
	if b.redis == nil || b.hub == nil || b.svc == nil {
		return nil
	}

	sub := b.redis.Subscribe(ctx, updatesChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.push(ctx, msg.Payload)
		}
	}
}

func (b *Broadcaster) push(ctx context.Context, playerID string) {
	if b.hub.ViewerCount() == 0 {
		return
	}

	entries, err := b.svc.Top(ctx, b.topN)
	if err != nil {
		b.logger.Warn().Err(err).Str("player_id", playerID).Msg("failed to collect leaderboard update")
		return
	}
	if len(entries) == 0 {
		return
	}

	payload := ws.LeaderboardUpdatePayload{
		Top:         toWSEntries(entries),
		RetrievedAt: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Warn().Err(err).Msg("failed to marshal leaderboard update")
		return
	}
	if err := b.hub.BroadcastAll(ws.Message{Type: ws.TypeLeaderboardUpdate, Payload: data}); err != nil {
		b.logger.Warn().Err(err).Msg("failed to broadcast leaderboard update")
	}
}
