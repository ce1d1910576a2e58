package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeAuthenticationRequired = "authentication_required"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"

	// Resource errors
	ErrCodeNotFound = "not_found"

	// Quiz session errors
	ErrCodeSessionStartFailed = "session_start_failed"
	ErrCodeSessionNotFound    = "session_not_found"
	ErrCodeInvalidSessionID   = "invalid_session_id"
	ErrCodeInvalidOption      = "invalid_option"
	ErrCodeAlreadyResolved    = "already_resolved"
	ErrCodeNotResolved        = "not_resolved"
	ErrCodeSessionCompleted   = "session_completed"
	ErrCodePoolEmpty          = "question_pool_empty"
	ErrCodePoolUnavailable    = "question_pool_unavailable"

	// Persistence errors
	ErrCodeScoreSaveFailed = "score_save_failed"

	// Leaderboard errors
	ErrCodeLeaderboardFetchFailed = "leaderboard_fetch_failed"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
)
