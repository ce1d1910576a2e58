package quiz

import (
	"math/rand"

	"github.com/faithframes/quiz-service/internal/question"
)

// Sample draws up to n questions from the pool, uniformly at random and
// without replacement: a random permutation of the pool truncated to n.
// The pool slice is not modified. When the pool holds fewer than n
// questions the whole pool is returned shuffled, so a thin pool yields a
// shorter session rather than an error; an empty pool is the only
// failure.
func Sample(pool []question.Question, n int, rng *rand.Rand) ([]question.Question, error) {
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	if n <= 0 {
		return nil, ErrEmptyPool
	}
	if n > len(pool) {
		n = len(pool)
	}

	picked := make([]question.Question, 0, n)
	for _, idx := range rng.Perm(len(pool))[:n] {
		picked = append(picked, pool[idx])
	}
	return picked, nil
}
