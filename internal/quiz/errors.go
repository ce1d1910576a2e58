package quiz

import "errors"

var (
	// ErrEmptyPool means there are no questions to sample from; a
	// session must not start.
	ErrEmptyPool = errors.New("question pool is empty")

	// ErrInvalidOption is returned when a selection index is outside the
	// current question's options.
	ErrInvalidOption = errors.New("option index out of range")

	// ErrAlreadyResolved is returned when a selection arrives after the
	// current question has already been resolved (by an earlier pick or
	// by timeout). The original resolution stands.
	ErrAlreadyResolved = errors.New("question already resolved")

	// ErrNotResolved is returned when advance is requested while the
	// current question is still open.
	ErrNotResolved = errors.New("question not resolved yet")

	// ErrSessionTerminal is returned for any event targeting a session
	// that has completed or been abandoned.
	ErrSessionTerminal = errors.New("session already finished")

	// ErrSessionNotFound is returned by the registry for unknown or
	// foreign session IDs.
	ErrSessionNotFound = errors.New("session not found")
)
