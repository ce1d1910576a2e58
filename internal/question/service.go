package question

import (
	"context"
	"fmt"
)

// PoolCache defines cache behavior (implemented by the Redis-backed Cache).
// A nil result with a nil error means cache miss.
type PoolCache interface {
	Get(ctx context.Context) ([]Question, error)
	Set(ctx context.Context, pool []Question) error
}

// PoolReader is the read contract over the curated question store.
type PoolReader interface {
	FetchAll(ctx context.Context) ([]Question, error)
}

// Service exposes the question pool to session setup: cache first, then
// the curated store, with every row validated before it can reach a
// session.
type Service struct {
	repo  PoolReader
	cache PoolCache
}

func NewService(repo PoolReader, cache PoolCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// FetchAll returns the validated question pool. Store failures are
// reported as ErrSourceUnavailable; a row violating the question
// invariants fails the whole read with ErrCorruptQuestion, since a
// session sampled from a partially bad pool could mis-score.
func (s *Service) FetchAll(ctx context.Context) ([]Question, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	pool, err := s.repo.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	for _, q := range pool {
		if err := q.Validate(); err != nil {
			return nil, err
		}
	}

	if s.cache != nil && len(pool) > 0 {
		// Best effort; a cold cache only costs the next read a DB trip.
		_ = s.cache.Set(ctx, pool)
	}

	return pool, nil
}
