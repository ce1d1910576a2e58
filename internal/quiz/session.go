package quiz

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/faithframes/quiz-service/internal/question"
)

// Session lifecycle states.
const (
	StatePresenting = "presenting"
	StateResolved   = "resolved"
	StateCompleted  = "completed"
	StateAbandoned  = "abandoned"
)

// How a question's outcome was locked in.
const (
	ResolvedByChoice  = "user_choice"
	ResolvedByTimeout = "timeout"
)

// NoSelection is the sentinel selected index for a timeout resolution.
const NoSelection = -1

// Attempt is the locked-in outcome of a single question.
type Attempt struct {
	SelectedIndex int    `json:"selected_index"`
	Correct       bool   `json:"correct"`
	ResolvedBy    string `json:"resolved_by"`
}

// Result is the finished session's tally, handed to the score recorder.
type Result struct {
	SessionID   uuid.UUID
	PlayerID    string
	DisplayName string
	Score       int
	Total       int
	StartedAt   time.Time
	CompletedAt time.Time
}

// Session runs one player through a sampled question sequence. Each
// question opens a countdown-gated answer window; the first of "player
// picks an option" and "countdown hits zero" resolves it, and the loser
// of that race is discarded. All mutation happens under the session
// mutex with the state tag as the single source of truth, so the
// exactly-once guarantee is structural rather than a convention.
type Session struct {
	mu sync.Mutex

	id          uuid.UUID
	playerID    string
	displayName string
	questions   []question.Question
	perQuestion time.Duration

	state    string
	current  int
	score    int
	attempts []Attempt

	startedAt   time.Time
	completedAt time.Time
	lastEventAt time.Time

	deadline time.Time
	timer    *time.Timer
}

// NewSession validates the sampled questions, presents the first one and
// arms its countdown. A corrupt question aborts creation: failing fast
// here beats mis-scoring question k later.
func NewSession(playerID, displayName string, questions []question.Question, perQuestion time.Duration) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyPool
	}
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, err
		}
	}
	if perQuestion <= 0 {
		perQuestion = 20 * time.Second
	}

	now := time.Now()
	s := &Session{
		id:          uuid.New(),
		playerID:    playerID,
		displayName: displayName,
		questions:   questions,
		perQuestion: perQuestion,
		state:       StatePresenting,
		attempts:    make([]Attempt, 0, len(questions)),
		startedAt:   now,
		lastEventAt: now,
	}
	s.armCountdown()
	return s, nil
}

func (s *Session) ID() uuid.UUID    { return s.id }
func (s *Session) PlayerID() string { return s.playerID }

// armCountdown starts the full-duration countdown for the current
// question. Caller must hold the mutex (or be the constructor). The
// timer callback captures the question index it was armed for, so a
// stale callback can never resolve a later question.
func (s *Session) armCountdown() {
	idx := s.current
	s.deadline = time.Now().Add(s.perQuestion)
	s.timer = time.AfterFunc(s.perQuestion, func() {
		s.timeOut(idx)
	})
}

// timeOut is the countdown branch of the resolution race.
func (s *Session) timeOut(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Lost the race, or fired for an already-advanced question.
	if s.state != StatePresenting || s.current != idx {
		return
	}
	s.resolve(NoSelection, ResolvedByTimeout)
	metricQuestionTimeouts.Inc()
}

// Select is the player branch of the resolution race. A selection after
// the question resolved (either way) is rejected without side effects.
func (s *Session) Select(optionIndex int) (Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateCompleted, StateAbandoned:
		return Attempt{}, ErrSessionTerminal
	case StateResolved:
		return Attempt{}, ErrAlreadyResolved
	}

	if optionIndex < 0 || optionIndex >= len(s.questions[s.current].Options) {
		return Attempt{}, ErrInvalidOption
	}

	if s.timer != nil {
		s.timer.Stop()
	}
	s.resolve(optionIndex, ResolvedByChoice)
	return s.attempts[len(s.attempts)-1], nil
}

// resolve locks in the outcome of the current question. Caller holds
// the mutex and has verified state == StatePresenting.
func (s *Session) resolve(selected int, by string) {
	q := s.questions[s.current]
	correct := selected == q.CorrectIndex
	if correct {
		s.score++
	}
	s.attempts = append(s.attempts, Attempt{
		SelectedIndex: selected,
		Correct:       correct,
		ResolvedBy:    by,
	})
	s.state = StateResolved
	s.lastEventAt = time.Now()
}

// Advance moves past a resolved question. It is a deliberate manual
// step so the player can read the explanation unhurried. On the last
// question the session completes instead, and the final tally is
// returned with done == true; the countdown for the next question
// always restarts in full.
func (s *Session) Advance() (Result, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateCompleted, StateAbandoned:
		return Result{}, false, ErrSessionTerminal
	case StatePresenting:
		return Result{}, false, ErrNotResolved
	}

	s.lastEventAt = time.Now()
	if s.current+1 == len(s.questions) {
		s.state = StateCompleted
		s.completedAt = time.Now()
		return Result{
			SessionID:   s.id,
			PlayerID:    s.playerID,
			DisplayName: s.displayName,
			Score:       s.score,
			Total:       len(s.questions),
			StartedAt:   s.startedAt,
			CompletedAt: s.completedAt,
		}, true, nil
	}

	s.current++
	s.state = StatePresenting
	s.armCountdown()
	return Result{}, false, nil
}

// Abandon terminates the session without persisting anything. Disarms
// the countdown; any in-flight timer callback finds a terminal state
// and becomes a no-op. Returns false if the session had already
// finished.
func (s *Session) Abandon() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateCompleted || s.state == StateAbandoned {
		return false
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.state = StateAbandoned
	s.lastEventAt = time.Now()
	return true
}

// IdleSince reports the time of the last player-visible event, used by
// the registry reaper to abandon stale sessions.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastEventAt
}

// QuestionView is the client-safe projection of a question: the correct
// index is withheld until the question resolves.
type QuestionView struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// Snapshot is the presentation-layer view of the session.
type Snapshot struct {
	SessionID        string        `json:"session_id"`
	State            string        `json:"state"`
	QuestionNumber   int           `json:"question_number"`
	TotalQuestions   int           `json:"total_questions"`
	Question         *QuestionView `json:"question,omitempty"`
	SecondsRemaining int           `json:"seconds_remaining"`
	Attempt          *Attempt      `json:"attempt,omitempty"`
	CorrectIndex     *int          `json:"correct_index,omitempty"`
	Explanation      string        `json:"explanation,omitempty"`
	Score            int           `json:"score"`
}

// Snapshot renders the current state for the presentation layer.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID:      s.id.String(),
		State:          s.state,
		QuestionNumber: s.current + 1,
		TotalQuestions: len(s.questions),
		Score:          s.score,
	}

	switch s.state {
	case StatePresenting:
		q := s.questions[s.current]
		snap.Question = &QuestionView{ID: q.ID, Prompt: q.Prompt, Options: q.Options}
		remaining := time.Until(s.deadline).Seconds()
		if remaining > 0 {
			snap.SecondsRemaining = int(math.Ceil(remaining))
		}
	case StateResolved:
		q := s.questions[s.current]
		snap.Question = &QuestionView{ID: q.ID, Prompt: q.Prompt, Options: q.Options}
		attempt := s.attempts[len(s.attempts)-1]
		snap.Attempt = &attempt
		correct := q.CorrectIndex
		snap.CorrectIndex = &correct
		snap.Explanation = q.Explanation
	case StateCompleted:
		snap.QuestionNumber = len(s.questions)
	}

	return snap
}
