package server

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/faithframes/quiz-service/internal/config"
	"github.com/faithframes/quiz-service/internal/logging"
)

// WSUpgrader handles WebSocket upgrades (configure CORS/security as needed).
var WSUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: implement proper origin checking for production
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Routes carries the handlers mounted on the API mux. Handlers arrive
// already wrapped with their auth middleware; nil entries are skipped
// so partial wiring in tests stays possible.
type Routes struct {
	StartSession   http.Handler
	GetSession     http.Handler
	AnswerQuestion http.Handler
	AdvanceSession http.Handler
	AbandonSession http.Handler
	Leaderboard    http.Handler
	LeaderboardWS  http.Handler
}

// NewHTTPServer wires base routes (health, readiness, metrics) plus the
// quiz and leaderboard surfaces.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, redis *redis.Client, routes Routes) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.IntoContext(r.Context(), logger)
		if err := pingDependencies(ctx, pool, redis); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	if routes.StartSession != nil {
		mux.Handle("POST /v1/quiz/sessions", routes.StartSession)
	}
	if routes.GetSession != nil {
		mux.Handle("GET /v1/quiz/sessions/{id}", routes.GetSession)
	}
	if routes.AnswerQuestion != nil {
		mux.Handle("POST /v1/quiz/sessions/{id}/answer", routes.AnswerQuestion)
	}
	if routes.AdvanceSession != nil {
		mux.Handle("POST /v1/quiz/sessions/{id}/advance", routes.AdvanceSession)
	}
	if routes.AbandonSession != nil {
		mux.Handle("DELETE /v1/quiz/sessions/{id}", routes.AbandonSession)
	}
	if routes.Leaderboard != nil {
		mux.Handle("GET /v1/leaderboard", routes.Leaderboard)
	}
	if routes.LeaderboardWS != nil {
		mux.Handle("GET /ws/leaderboard", routes.LeaderboardWS)
	}

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redis *redis.Client) error {
	if pool != nil {
		if err := pool.Ping(ctx); err != nil {
			return err
		}
	}
	if redis != nil {
		if err := redis.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	return nil
}
