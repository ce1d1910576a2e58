package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/faithframes/quiz-service/internal/config"
	"github.com/faithframes/quiz-service/internal/db/repository"
	"github.com/faithframes/quiz-service/internal/identity"
	"github.com/faithframes/quiz-service/internal/leaderboard"
	"github.com/faithframes/quiz-service/internal/logging"
	"github.com/faithframes/quiz-service/internal/question"
	"github.com/faithframes/quiz-service/internal/quiz"
	"github.com/faithframes/quiz-service/internal/server"
	ws "github.com/faithframes/quiz-service/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	registry       *quiz.Registry
	lbBroadcaster  *leaderboard.Broadcaster
	snapshotWorker *leaderboard.SnapshotWorker
	bgCancels      []context.CancelFunc
}

// New bootstraps configs, logger, Postgres, Redis and HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	questionRepo := repository.NewQuestionRepository(pool)
	snapshotRepo := repository.NewSnapshotRepository(pool)

	verifier := identity.NewVerifier([]byte(cfg.Security.TokenSecret), cfg.Name)

	questionCache := question.NewCache(redisClient, cfg.Quiz.PoolCacheTTL)
	questionSvc := question.NewService(questionRepo, questionCache)

	registry := quiz.NewRegistry(cfg.Quiz.SessionIdleTimeout, logger)
	recorder := leaderboard.NewRecorder(redisClient, logger)
	quizHandler := quiz.NewHTTPHandler(questionSvc, registry, recorder, quiz.HandlerOptions{
		QuestionCount:   cfg.Quiz.QuestionCount,
		QuestionSeconds: cfg.Quiz.QuestionSeconds,
	}, logger)

	leaderboardSvc := leaderboard.NewService(redisClient, snapshotRepo, logger, leaderboard.ServiceOptions{
		TopN: cfg.Leaderboard.TopN,
	})
	wsHub := ws.NewHub(logger)
	lbHandler := leaderboard.NewHTTPHandler(leaderboardSvc, wsHub, logger)
	lbBroadcaster := leaderboard.NewBroadcaster(redisClient, wsHub, leaderboardSvc, cfg.Leaderboard.BroadcastTopN, logger)

	var snapshotWorker *leaderboard.SnapshotWorker
	if interval := cfg.Leaderboard.SnapshotInterval; interval > 0 {
		snapshotWorker = leaderboard.NewSnapshotWorker(
			leaderboardSvc,
			snapshotRepo,
			interval,
			cfg.Leaderboard.TopN,
			logger,
		)
	}

	requireAuth := identity.Require(verifier, logger)
	optionalAuth := identity.Optional(verifier, logger)

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, server.Routes{
		StartSession:   requireAuth(http.HandlerFunc(quizHandler.HandleStart)),
		GetSession:     requireAuth(http.HandlerFunc(quizHandler.HandleGet)),
		AnswerQuestion: requireAuth(http.HandlerFunc(quizHandler.HandleAnswer)),
		AdvanceSession: requireAuth(http.HandlerFunc(quizHandler.HandleAdvance)),
		AbandonSession: requireAuth(http.HandlerFunc(quizHandler.HandleAbandon)),
		Leaderboard:    optionalAuth(http.HandlerFunc(lbHandler.HandleGet)),
		LeaderboardWS:  http.HandlerFunc(lbHandler.HandleWebSocket),
	})

	return &Application{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          redisClient,
		http:           apiServer,
		registry:       registry,
		lbBroadcaster:  lbBroadcaster,
		snapshotWorker: snapshotWorker,
		bgCancels:      make([]context.CancelFunc, 0, 3),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.registry != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.registry.Reap(bgCtx); err != nil && err != context.Canceled {
				a.logger.Warn().Err(err).Msg("session reaper stopped")
			}
		}()
	}

	if a.lbBroadcaster != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.lbBroadcaster.Run(bgCtx); err != nil && err != context.Canceled {
				a.logger.Warn().Err(err).Msg("leaderboard broadcaster stopped")
			}
		}()
	}

	if a.snapshotWorker != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.snapshotWorker.Run(bgCtx); err != nil && err != context.Canceled {
				a.logger.Warn().Err(err).Msg("leaderboard snapshot worker stopped")
			}
		}()
	}
}
