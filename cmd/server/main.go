package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/mockprep-backend/internal/config"
	"github.com/stemsi/mockprep-backend/internal/database"
	"github.com/stemsi/mockprep-backend/internal/handler"
	"github.com/stemsi/mockprep-backend/internal/logger"
	"github.com/stemsi/mockprep-backend/internal/mock"
	"github.com/stemsi/mockprep-backend/internal/model"
	"github.com/stemsi/mockprep-backend/internal/progress"
	"github.com/stemsi/mockprep-backend/internal/repository"
	"github.com/stemsi/mockprep-backend/internal/router"
	"github.com/stemsi/mockprep-backend/internal/service"
	"github.com/stemsi/mockprep-backend/internal/session"
	"github.com/stemsi/mockprep-backend/internal/storage"
	"github.com/stemsi/mockprep-backend/internal/validator"
	"github.com/stemsi/mockprep-backend/internal/worker"
)

// questionBank is what the server needs from either question repository.
type questionBank interface {
	mock.QuestionFinder
	CountBySubject(ctx context.Context) (map[string]map[model.Difficulty]int, error)
}

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("question_store", cfg.QuestionStore).
		Str("kv_store", cfg.KVStore).
		Bool("progress_async", cfg.ProgressAsync).
		Msg("Starting MockPrep Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect Backends ──────────────────────────────────────────────
	var pool *pgxpool.Pool
	if cfg.QuestionStore == config.StorePostgres || cfg.KVStore == config.StorePostgres {
		p, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer p.Close()
		pool = p
	}

	var rdb *redis.Client
	if cfg.KVStore == config.StoreRedis || cfg.ProgressAsync {
		c, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer c.Close()
		rdb = c
	}

	// ─── Initialize Repositories & Stores ──────────────────────────────
	questions, err := openQuestionBank(cfg, pool)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open question bank")
	}

	store, closeStore, err := storage.Open(ctx, cfg, pool, rdb)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open progress store")
	}
	defer closeStore()

	recorder := progress.NewRecorder(store, log)

	var sink progress.Sink = recorder
	if cfg.ProgressAsync {
		sink = worker.NewProgressQueue(rdb)
	}

	// ─── Initialize Services ──────────────────────────────────────────
	sessions := session.NewManager(cfg.SessionRetention, log)

	authService := service.NewAuthService(cfg)
	catalogService, err := service.NewCatalogService(store, recorder, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load exam catalog")
	}
	sessionService := service.NewMockSessionService(
		questions,
		cfg.MockQuestionLimit,
		sessions,
		sink,
		recorder,
		service.SessionOptions{TimeLimitSeconds: int(cfg.MockTimeLimit / time.Second)},
		log,
	)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Catalog:  handler.NewCatalogHandler(catalogService),
		Session:  handler.NewSessionHandler(sessionService),
		Progress: handler.NewProgressHandler(sessionService),
		Question: handler.NewQuestionHandler(sessionService),
		WS:       handler.NewWSHandler(sessionService, time.Second, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	go sessions.Run(workerCtx, time.Minute)
	if cfg.ProgressAsync {
		progressWorker := worker.NewProgressWorker(rdb, recorder, log)
		go progressWorker.Start(workerCtx)
	}

	// ─── Report Question Bank ─────────────────────────────────────────
	if counts, err := questions.CountBySubject(ctx); err != nil {
		log.Warn().Err(err).Msg("Question bank summary failed")
	} else {
		for subject, byTier := range counts {
			log.Info().
				Str("subject", subject).
				Int("easy", byTier[model.DifficultyEasy]).
				Int("medium", byTier[model.DifficultyMedium]).
				Int("hard", byTier[model.DifficultyHard]).
				Msg("Question bank loaded")
		}
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Abandon live sessions and let the progress worker drain its batch.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

func openQuestionBank(cfg *config.Config, pool *pgxpool.Pool) (questionBank, error) {
	switch cfg.QuestionStore {
	case config.StorePostgres:
		return repository.NewQuestionRepository(pool), nil
	case config.StoreMemory:
		var questions []model.Question
		if cfg.QuestionsFile != "" {
			q, err := repository.ReadQuestionsFile(cfg.QuestionsFile)
			if err != nil {
				return nil, err
			}
			questions = q
		}
		return repository.NewMemoryQuestionRepository(questions), nil
	}
	return nil, fmt.Errorf("unknown QUESTION_STORE %q", cfg.QuestionStore)
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
