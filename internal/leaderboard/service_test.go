package leaderboard

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

type stubSnapshotSource struct {
	payload []byte
	err     error
	calls   int
}

func (s *stubSnapshotSource) Latest(ctx context.Context) ([]byte, error) {
	s.calls++
	return s.payload, s.err
}

func TestRecorderAndServiceRoundTrip(t *testing.T) {
	_, client := newTestRedis(t)
	ctx := context.Background()
	logger := zerolog.Nop()

	recorder := NewRecorder(client, logger)
	completedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, recorder.Record(ctx, Record{
		PlayerID:    "p1",
		DisplayName: "Hope",
		LatestScore: 17,
		Total:       20,
		UpdatedAt:   completedAt,
	}))
	require.NoError(t, recorder.Record(ctx, Record{
		PlayerID:    "p2",
		DisplayName: "Faith",
		LatestScore: 19,
		Total:       20,
		UpdatedAt:   completedAt.Add(time.Minute),
	}))

	svc := NewService(client, nil, logger, ServiceOptions{TopN: 50})
	entries, err := svc.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, Entry{Rank: 1, PlayerID: "p2", DisplayName: "Faith", LatestScore: 19, Total: 20}, entries[0])
	assert.Equal(t, Entry{Rank: 2, PlayerID: "p1", DisplayName: "Hope", LatestScore: 17, Total: 20}, entries[1])
}

func TestRecorderOverwritesPriorScore(t *testing.T) {
	_, client := newTestRedis(t)
	ctx := context.Background()
	recorder := NewRecorder(client, zerolog.Nop())

	require.NoError(t, recorder.Record(ctx, Record{PlayerID: "p1", DisplayName: "Hope", LatestScore: 17, Total: 20}))
	require.NoError(t, recorder.Record(ctx, Record{PlayerID: "p1", DisplayName: "Hope", LatestScore: 9, Total: 20}))

	svc := NewService(client, nil, zerolog.Nop(), ServiceOptions{})
	entries, err := svc.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// Latest result replaces the old one even when it is lower.
	assert.Equal(t, 9, entries[0].LatestScore)
}

func TestRecorderRetrySameSessionIsIdempotent(t *testing.T) {
	_, client := newTestRedis(t)
	ctx := context.Background()
	recorder := NewRecorder(client, zerolog.Nop())

	rec := Record{
		PlayerID:    "p1",
		DisplayName: "Hope",
		LatestScore: 14,
		Total:       20,
		UpdatedAt:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, recorder.Record(ctx, rec))
	require.NoError(t, recorder.Record(ctx, rec))

	svc := NewService(client, nil, zerolog.Nop(), ServiceOptions{})
	first, err := svc.Top(ctx, 10)
	require.NoError(t, err)

	require.NoError(t, recorder.Record(ctx, rec))
	second, err := svc.Top(ctx, 10)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, second, 1)
	assert.Equal(t, 14, second[0].LatestScore)
}

func TestRecorderRejectsEmptyPlayerID(t *testing.T) {
	_, client := newTestRedis(t)
	recorder := NewRecorder(client, zerolog.Nop())

	err := recorder.Record(context.Background(), Record{DisplayName: "Nobody", LatestScore: 5})
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestServiceClampsLimitToTopN(t *testing.T) {
	_, client := newTestRedis(t)
	ctx := context.Background()
	recorder := NewRecorder(client, zerolog.Nop())

	for _, rec := range []Record{
		{PlayerID: "p1", LatestScore: 1},
		{PlayerID: "p2", LatestScore: 2},
		{PlayerID: "p3", LatestScore: 3},
	} {
		require.NoError(t, recorder.Record(ctx, rec))
	}

	svc := NewService(client, nil, zerolog.Nop(), ServiceOptions{TopN: 2})
	entries, err := svc.Top(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = svc.Top(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestStandingsRankUnknownBeyondFetchedSlice(t *testing.T) {
	_, client := newTestRedis(t)
	ctx := context.Background()
	recorder := NewRecorder(client, zerolog.Nop())

	for _, rec := range []Record{
		{PlayerID: "p1", LatestScore: 30},
		{PlayerID: "p2", LatestScore: 20},
		{PlayerID: "p3", LatestScore: 10},
	} {
		require.NoError(t, recorder.Record(ctx, rec))
	}

	svc := NewService(client, nil, zerolog.Nop(), ServiceOptions{TopN: 2})

	entries, rank, found, err := svc.Standings(ctx, 2, "p1")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.True(t, found)
	assert.Equal(t, 1, rank)

	// p3 exists but fell below the cutoff: rank is unknown, not zero
	// and not invented.
	_, rank, found, err = svc.Standings(ctx, 2, "p3")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, rank)

	_, _, found, err = svc.Standings(ctx, 2, "")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTopFallsBackToSnapshotWhenBoardEmpty(t *testing.T) {
	_, client := newTestRedis(t)
	ctx := context.Background()

	saved := []Entry{
		{Rank: 1, PlayerID: "p9", DisplayName: "Ruth", LatestScore: 18, Total: 20},
		{Rank: 2, PlayerID: "p8", DisplayName: "Esther", LatestScore: 12, Total: 20},
	}
	payload, err := json.Marshal(saved)
	require.NoError(t, err)

	source := &stubSnapshotSource{payload: payload}
	svc := NewService(client, source, zerolog.Nop(), ServiceOptions{})

	entries, err := svc.Top(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, saved, entries)
	assert.Equal(t, 1, source.calls)

	entries, err = svc.Top(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestTopFallsBackToSnapshotWhenRedisDown(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()

	payload, err := json.Marshal([]Entry{{Rank: 1, PlayerID: "p9", LatestScore: 18}})
	require.NoError(t, err)
	svc := NewService(client, &stubSnapshotSource{payload: payload}, zerolog.Nop(), ServiceOptions{})

	mr.Close()

	entries, err := svc.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "p9", entries[0].PlayerID)
}

func TestRecorderPublishesUpdate(t *testing.T) {
	_, client := newTestRedis(t)
	ctx := context.Background()

	sub := client.Subscribe(ctx, "quiz:lb:updates")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	recorder := NewRecorder(client, zerolog.Nop())
	require.NoError(t, recorder.Record(ctx, Record{PlayerID: "p1", LatestScore: 5}))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "p1", msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a score update message")
	}
}
