package ws

import "encoding/json"

// MessageType constants for the WebSocket protocol.
const (
	// Server -> Client
	TypeLeaderboardUpdate = "leaderboard_update"
	TypeError             = "error"
	TypePong              = "pong"

	// Client -> Server
	TypePing = "ping"
)

// Message wraps all WebSocket payloads with a type tag.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// LeaderboardEntry mirrors the ranked row sent to clients.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	LatestScore int    `json:"latest_score"`
	Total       int    `json:"total"`
}

// LeaderboardUpdatePayload is pushed whenever a score write lands.
type LeaderboardUpdatePayload struct {
	Top         []LeaderboardEntry `json:"top"`
	RetrievedAt string             `json:"retrieved_at"`
}

// ErrorPayload reports a protocol-level problem to the client.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
