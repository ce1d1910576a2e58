package leaderboard

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/faithframes/quiz-service/internal/identity"
	"github.com/faithframes/quiz-service/internal/server"
	httperrors "github.com/faithframes/quiz-service/pkg/http/errors"
	ws "github.com/faithframes/quiz-service/pkg/http/ws"
)

// HTTPHandler exposes leaderboard reads over REST and WebSocket.
type HTTPHandler struct {
	svc    *Service
	hub    *ws.Hub
	logger zerolog.Logger
}

// NewHTTPHandler constructs a leaderboard HTTP handler.
func NewHTTPHandler(svc *Service, hub *ws.Hub, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		hub:    hub,
		logger: logger.With().Str("component", "leaderboard_http").Logger(),
	}
}

type standingsResponse struct {
	Entries     []Entry `json:"entries"`
	MyRank      *int    `json:"my_rank"`
	RetrievedAt string  `json:"retrieved_at"`
}

// HandleGet responds with the current standings.
// Route: GET /v1/leaderboard?limit=50
//
// When the caller is authenticated, my_rank carries their position; it
// stays null for anonymous callers and for players outside the tracked
// top range.
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	playerID := ""
	if player, ok := identity.FromContext(r.Context()); ok {
		playerID = player.ID
	}

	entries, rank, found, err := h.svc.Standings(r.Context(), limit, playerID)
	if err != nil {
		h.logger.Error().Err(err).Msg("standings fetch failed")
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeLeaderboardFetchFailed, "Leaderboard is temporarily unavailable")
		return
	}

	resp := standingsResponse{
		Entries:     entries,
		RetrievedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if found {
		resp.MyRank = &rank
	}
	if resp.Entries == nil {
		resp.Entries = []Entry{}
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleWebSocket upgrades the connection and streams leaderboard
// updates until the viewer disconnects.
// Route: GET /ws/leaderboard
func (h *HTTPHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := server.WSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	wsConn := ws.NewConnection(conn, h.logger)
	id := h.hub.Register(wsConn)

	go wsConn.WritePump()
	h.sendInitial(r, wsConn)

	wsConn.ReadPump()
	h.hub.Unregister(id)
}

func (h *HTTPHandler) sendInitial(r *http.Request, conn *ws.Connection) {
	entries, err := h.svc.Top(r.Context(), 0)
	if err != nil {
		h.logger.Warn().Err(err).Msg("initial standings fetch failed")
		return
	}
	payload := ws.LeaderboardUpdatePayload{
		Top:         toWSEntries(entries),
		RetrievedAt: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := conn.Send(ws.Message{Type: ws.TypeLeaderboardUpdate, Payload: data}); err != nil {
		h.logger.Warn().Err(err).Msg("initial standings send failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
