package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/faithframes/quiz-service/internal/question"
)

type poolQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// QuestionRepository reads the curated question pool from Postgres.
type QuestionRepository struct {
	db poolQuerier
}

// NewQuestionRepository wraps a pgx pool (or transaction) for question reads.
func NewQuestionRepository(db poolQuerier) *QuestionRepository {
	return &QuestionRepository{db: db}
}

const fetchAllQuestionsSQL = `
SELECT question_id, prompt, options, correct_index, explanation
FROM questions
WHERE active
ORDER BY created_at
`

// FetchAll returns every active question in the pool. Rows are scanned
// but not validated here; the service layer owns the integrity check so
// a corrupt row is reported with question context.
func (r *QuestionRepository) FetchAll(ctx context.Context) ([]question.Question, error) {
	rows, err := r.db.Query(ctx, fetchAllQuestionsSQL)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []question.Question
	for rows.Next() {
		var (
			q       question.Question
			correct int32
		)
		if err := rows.Scan(&q.ID, &q.Prompt, &q.Options, &correct, &q.Explanation); err != nil {
			return nil, fmt.Errorf("scan question row: %w", err)
		}
		q.CorrectIndex = int(correct)
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return out, nil
}
