package question

import "fmt"

// Question is a multiple-choice question from the curated pool.
// CorrectIndex points into Options; Explanation is shown to the player
// after the question resolves.
type Question struct {
	ID           string   `json:"id"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
}

// Validate checks the structural invariants of a pool question. A
// violation is a data error in the store, not a user error, so callers
// must refuse to start a session with the offending question.
func (q Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("%w: empty id", ErrCorruptQuestion)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: question %s has %d options", ErrCorruptQuestion, q.ID, len(q.Options))
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("%w: question %s correct index %d out of range", ErrCorruptQuestion, q.ID, q.CorrectIndex)
	}
	return nil
}
