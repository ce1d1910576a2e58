package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/faithframes/quiz-service/internal/identity"
	"github.com/faithframes/quiz-service/internal/leaderboard"
	"github.com/faithframes/quiz-service/internal/question"
	httperrors "github.com/faithframes/quiz-service/pkg/http/errors"
)

// ScoreRecorder persists the tally of a completed session.
type ScoreRecorder interface {
	Record(ctx context.Context, rec leaderboard.Record) error
}

// HandlerOptions configures session creation.
type HandlerOptions struct {
	QuestionCount   int
	QuestionSeconds time.Duration
}

// HTTPHandler exposes the quiz session lifecycle over REST.
type HTTPHandler struct {
	questions *question.Service
	registry  *Registry
	recorder  ScoreRecorder
	opts      HandlerOptions
	logger    zerolog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewHTTPHandler constructs a quiz HTTP handler.
func NewHTTPHandler(questions *question.Service, registry *Registry, recorder ScoreRecorder, opts HandlerOptions, logger zerolog.Logger) *HTTPHandler {
	if opts.QuestionCount <= 0 {
		opts.QuestionCount = 20
	}
	if opts.QuestionSeconds <= 0 {
		opts.QuestionSeconds = 20 * time.Second
	}
	return &HTTPHandler{
		questions: questions,
		registry:  registry,
		recorder:  recorder,
		opts:      opts,
		logger:    logger.With().Str("component", "quiz_http").Logger(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// HandleStart creates a session from a fresh random sample and presents
// its first question.
// Route: POST /v1/quiz/sessions
func (h *HTTPHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	player, ok := identity.FromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	pool, err := h.questions.FetchAll(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, question.ErrSourceUnavailable):
			h.logger.Error().Err(err).Msg("question pool unavailable")
			httperrors.RespondServiceUnavailable(w, httperrors.ErrCodePoolUnavailable, "Question pool is temporarily unavailable")
		case errors.Is(err, question.ErrCorruptQuestion):
			h.logger.Error().Err(err).Msg("question pool corrupt")
			httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeSessionStartFailed, "Could not start a session")
		default:
			h.logger.Error().Err(err).Msg("question pool read failed")
			httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeSessionStartFailed, "Could not start a session")
		}
		return
	}

	sampled, err := h.sample(pool)
	if err != nil {
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodePoolEmpty, "No questions are available right now")
		return
	}

	session, err := NewSession(player.ID, player.DisplayName, sampled, h.opts.QuestionSeconds)
	if err != nil {
		h.logger.Error().Err(err).Msg("session creation failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeSessionStartFailed, "Could not start a session")
		return
	}

	h.registry.Put(session)
	h.logger.Info().
		Str("session_id", session.ID().String()).
		Str("player_id", player.ID).
		Int("questions", len(sampled)).
		Msg("session started")

	writeJSON(w, http.StatusCreated, session.Snapshot())
}

func (h *HTTPHandler) sample(pool []question.Question) ([]question.Question, error) {
	h.rngMu.Lock()
	defer h.rngMu.Unlock()
	return Sample(pool, h.opts.QuestionCount, h.rng)
}

// HandleGet returns the session's current view.
// Route: GET /v1/quiz/sessions/{id}
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

type answerRequest struct {
	OptionIndex *int `json:"option_index"`
}

// HandleAnswer submits the player's option pick for the current
// question. The pick only wins if it beats the countdown; a late pick
// is rejected and the standing resolution is returned unchanged.
// Route: POST /v1/quiz/sessions/{id}/answer
func (h *HTTPHandler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OptionIndex == nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "option_index is required", "option_index")
		return
	}

	if _, err := session.Select(*req.OptionIndex); err != nil {
		switch {
		case errors.Is(err, ErrInvalidOption):
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidOption, "Option index is out of range")
		case errors.Is(err, ErrAlreadyResolved):
			httperrors.RespondConflict(w, httperrors.ErrCodeAlreadyResolved, "Question is already resolved")
		case errors.Is(err, ErrSessionTerminal):
			httperrors.RespondConflict(w, httperrors.ErrCodeSessionCompleted, "Session is already finished")
		default:
			httperrors.RespondInternalError(w, "Could not submit answer")
		}
		return
	}

	writeJSON(w, http.StatusOK, session.Snapshot())
}

type advanceResponse struct {
	Snapshot
	ScoreSaved *bool `json:"score_saved,omitempty"`
}

// HandleAdvance moves to the next question, or completes the session on
// the last one. Completion persists the score; a failed write still
// completes the session and is reported via score_saved so the client
// can retry the submission.
// Route: POST /v1/quiz/sessions/{id}/advance
func (h *HTTPHandler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	result, done, err := session.Advance()
	if err != nil {
		switch {
		case errors.Is(err, ErrNotResolved):
			httperrors.RespondConflict(w, httperrors.ErrCodeNotResolved, "Current question is not resolved yet")
		case errors.Is(err, ErrSessionTerminal):
			httperrors.RespondConflict(w, httperrors.ErrCodeSessionCompleted, "Session is already finished")
		default:
			httperrors.RespondInternalError(w, "Could not advance session")
		}
		return
	}

	if !done {
		writeJSON(w, http.StatusOK, advanceResponse{Snapshot: session.Snapshot()})
		return
	}

	saved := h.recordResult(r.Context(), result)
	metricSessionsCompleted.Inc()
	h.registry.Remove(session.ID())
	h.logger.Info().
		Str("session_id", result.SessionID.String()).
		Str("player_id", result.PlayerID).
		Int("score", result.Score).
		Int("total", result.Total).
		Bool("score_saved", saved).
		Msg("session completed")

	writeJSON(w, http.StatusOK, advanceResponse{Snapshot: session.Snapshot(), ScoreSaved: &saved})
}

// recordResult persists the completed tally. UpdatedAt is pinned to the
// session's completion time so a client retry of the same completion
// writes an identical record.
func (h *HTTPHandler) recordResult(ctx context.Context, result Result) bool {
	if h.recorder == nil {
		return false
	}
	err := h.recorder.Record(ctx, leaderboard.Record{
		PlayerID:    result.PlayerID,
		DisplayName: result.DisplayName,
		LatestScore: result.Score,
		Total:       result.Total,
		UpdatedAt:   result.CompletedAt,
	})
	if err != nil {
		metricScoreWriteFailures.Inc()
		h.logger.Error().Err(err).
			Str("session_id", result.SessionID.String()).
			Str("player_id", result.PlayerID).
			Msg("score write failed")
		return false
	}
	return true
}

// HandleAbandon terminates the session without recording a score.
// Route: DELETE /v1/quiz/sessions/{id}
func (h *HTTPHandler) HandleAbandon(w http.ResponseWriter, r *http.Request) {
	player, ok := identity.FromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidSessionID, "Session id must be a UUID")
		return
	}

	if err := h.registry.Abandon(id, player.ID); err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	player, ok := identity.FromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidSessionID, "Session id must be a UUID")
		return nil, false
	}

	session, err := h.registry.Get(id, player.ID)
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found")
		return nil, false
	}
	return session, true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
