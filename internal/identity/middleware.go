package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	httperrors "github.com/faithframes/quiz-service/pkg/http/errors"
)

type playerKey struct{}

// FromContext returns the authenticated player, if any.
func FromContext(ctx context.Context) (Player, bool) {
	player, ok := ctx.Value(playerKey{}).(Player)
	return player, ok
}

// IntoContext attaches a player to the context. Exposed for tests.
func IntoContext(ctx context.Context, player Player) context.Context {
	return context.WithValue(ctx, playerKey{}, player)
}

// Require rejects requests without a valid bearer token.
func Require(verifier *Verifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			player, err := playerFromRequest(verifier, r)
			if err != nil {
				logger.Warn().Err(err).Msg("token validation failed")
				respondTokenError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(IntoContext(r.Context(), player)))
		})
	}
}

// Optional attaches the player when a valid token is present and lets
// anonymous requests through untouched. A malformed token is still an
// error; only the absence of one is allowed.
func Optional(verifier *Verifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			player, err := playerFromRequest(verifier, r)
			if err != nil {
				logger.Warn().Err(err).Msg("token validation failed")
				respondTokenError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(IntoContext(r.Context(), player)))
		})
	}
}

func playerFromRequest(verifier *Verifier, r *http.Request) (Player, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return Player{}, ErrInvalidToken
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return Player{}, ErrInvalidToken
	}
	return verifier.Verify(parts[1])
}

func respondTokenError(w http.ResponseWriter, err error) {
	if err == ErrExpiredToken {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeTokenExpired, "Token expired")
		return
	}
	httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Invalid or missing token")
}
