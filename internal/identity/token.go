package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by player tokens. The token subject is the player ID.
type Claims struct {
	DisplayName string `json:"display_name"`
	jwt.RegisteredClaims
}

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Player is the authenticated caller attached to a request.
type Player struct {
	ID          string
	DisplayName string
}

// Verifier validates HS256 player tokens issued by the account service.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier creates a token verifier with the shared signing secret.
func NewVerifier(secret []byte, issuer string) *Verifier {
	if issuer == "" {
		issuer = "quiz-service"
	}
	return &Verifier{secret: secret, issuer: issuer}
}

// Verify parses and validates a token string, returning the player it
// identifies.
func (v *Verifier) Verify(tokenString string) (Player, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Player{}, ErrExpiredToken
		}
		return Player{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return Player{}, ErrInvalidToken
	}

	return Player{ID: claims.Subject, DisplayName: claims.DisplayName}, nil
}

// Issue signs a token for the given player. Used by the local dev
// stack and tests; production tokens come from the account service.
func (v *Verifier) Issue(player Player, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = time.Hour
	}
	now := time.Now()
	claims := Claims{
		DisplayName: player.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			Subject:   player.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
