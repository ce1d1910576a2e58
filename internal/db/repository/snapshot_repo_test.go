package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSnapshotStore struct {
	mock.Mock
}

func (m *mockSnapshotStore) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	called := m.Called(ctx, sql, args)
	return called.Get(0).(pgconn.CommandTag), called.Error(1)
}

func (m *mockSnapshotStore) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	called := m.Called(ctx, sql, args)
	return called.Get(0).(pgx.Row)
}

type stubRow struct {
	entries []byte
	err     error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.entries
	return nil
}

func TestSnapshotRepository_Insert(t *testing.T) {
	store := new(mockSnapshotStore)
	repo := NewSnapshotRepository(store)

	generatedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	payload := []byte(`[{"rank":1}]`)

	store.On("Exec", mock.Anything, insertSnapshotSQL, []any{generatedAt, payload, "abc123"}).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := repo.Insert(context.Background(), generatedAt, payload, "abc123")

	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestSnapshotRepository_InsertError(t *testing.T) {
	store := new(mockSnapshotStore)
	repo := NewSnapshotRepository(store)

	store.On("Exec", mock.Anything, insertSnapshotSQL, mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("connection reset"))

	err := repo.Insert(context.Background(), time.Now(), []byte("[]"), "h")

	assert.Error(t, err)
}

func TestSnapshotRepository_Latest(t *testing.T) {
	store := new(mockSnapshotStore)
	repo := NewSnapshotRepository(store)

	payload := []byte(`[{"rank":1,"player_id":"p1"}]`)
	store.On("QueryRow", mock.Anything, latestSnapshotSQL, mock.Anything).
		Return(stubRow{entries: payload})

	got, err := repo.Latest(context.Background())

	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestSnapshotRepository_LatestEmpty(t *testing.T) {
	store := new(mockSnapshotStore)
	repo := NewSnapshotRepository(store)

	store.On("QueryRow", mock.Anything, latestSnapshotSQL, mock.Anything).
		Return(stubRow{err: pgx.ErrNoRows})

	got, err := repo.Latest(context.Background())

	require.NoError(t, err)
	assert.Nil(t, got)
}
