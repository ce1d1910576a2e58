package question

import "errors"

var (
	// ErrCorruptQuestion indicates a pool row that violates the question
	// invariants (missing id, too few options, correct index out of
	// range). Sessions must not start over corrupt data.
	ErrCorruptQuestion = errors.New("corrupt question")

	// ErrSourceUnavailable indicates the question store could not be
	// reached. Recoverable from the caller's perspective: retry or
	// surface, but never start a session without a pool.
	ErrSourceUnavailable = errors.New("question source unavailable")
)
