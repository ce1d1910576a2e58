package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faithframes/quiz-service/internal/question"
)

type questionRow struct {
	id           string
	prompt       string
	options      []string
	correctIndex int32
	explanation  string
}

// fakeRows implements pgx.Rows over a fixed row set.
type fakeRows struct {
	rows    []questionRow
	pos     int
	scanErr error
	rowsErr error
}

func (f *fakeRows) Close()                                       {}
func (f *fakeRows) Err() error                                   { return f.rowsErr }
func (f *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (f *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (f *fakeRows) Next() bool {
	if f.pos >= len(f.rows) {
		return false
	}
	f.pos++
	return true
}
func (f *fakeRows) Scan(dest ...any) error {
	if f.scanErr != nil {
		return f.scanErr
	}
	row := f.rows[f.pos-1]
	*(dest[0].(*string)) = row.id
	*(dest[1].(*string)) = row.prompt
	*(dest[2].(*[]string)) = row.options
	*(dest[3].(*int32)) = row.correctIndex
	*(dest[4].(*string)) = row.explanation
	return nil
}
func (f *fakeRows) Values() ([]any, error) { return nil, nil }
func (f *fakeRows) RawValues() [][]byte    { return nil }
func (f *fakeRows) Conn() *pgx.Conn        { return nil }

type fakeQuerier struct {
	rows *fakeRows
	err  error
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func TestQuestionRepository_FetchAll(t *testing.T) {
	db := &fakeQuerier{rows: &fakeRows{rows: []questionRow{
		{id: "q001", prompt: "Who led the exodus?", options: []string{"Moses", "Aaron", "Joshua", "Caleb"}, correctIndex: 0, explanation: "Exodus 3"},
		{id: "q002", prompt: "How many days of creation?", options: []string{"5", "6", "7", "8"}, correctIndex: 1},
	}}}
	repo := NewQuestionRepository(db)

	got, err := repo.FetchAll(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, question.Question{
		ID:           "q001",
		Prompt:       "Who led the exodus?",
		Options:      []string{"Moses", "Aaron", "Joshua", "Caleb"},
		CorrectIndex: 0,
		Explanation:  "Exodus 3",
	}, got[0])
	assert.Equal(t, "q002", got[1].ID)
	assert.Equal(t, 1, got[1].CorrectIndex)
}

func TestQuestionRepository_FetchAllEmpty(t *testing.T) {
	repo := NewQuestionRepository(&fakeQuerier{rows: &fakeRows{}})

	got, err := repo.FetchAll(context.Background())

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestQuestionRepository_QueryError(t *testing.T) {
	repo := NewQuestionRepository(&fakeQuerier{err: errors.New("connection refused")})

	_, err := repo.FetchAll(context.Background())

	assert.Error(t, err)
}

func TestQuestionRepository_RowError(t *testing.T) {
	repo := NewQuestionRepository(&fakeQuerier{rows: &fakeRows{rowsErr: errors.New("broken stream")}})

	_, err := repo.FetchAll(context.Background())

	assert.Error(t, err)
}
