package leaderboard

import (
	"errors"
	"time"
)

// Record is one player's latest completed score. A player has at most
// one live record; each completed session overwrites it.
type Record struct {
	PlayerID    string    `json:"player_id"`
	DisplayName string    `json:"display_name"`
	LatestScore int       `json:"latest_score"`
	Total       int       `json:"total"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Entry is a ranked leaderboard row sent to clients.
type Entry struct {
	Rank        int    `json:"rank"`
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	LatestScore int    `json:"latest_score"`
	Total       int    `json:"total"`
}

// ErrPersistence indicates the score write failed. The caller keeps the
// in-memory result and decides whether to retry; the recorder never
// retries internally so a retry cannot clobber a newer session's write.
var ErrPersistence = errors.New("score persistence failed")

// Redis keys and channels shared by the recorder, service and broadcaster.
const (
	boardKey       = "quiz:lb"
	metaKeyPrefix  = "quiz:lb:meta:"
	updatesChannel = "quiz:lb:updates"
)

func metaKey(playerID string) string {
	return metaKeyPrefix + playerID
}
