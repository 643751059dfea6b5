package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/remaimber-it/quizengine/internal/api"
	"github.com/remaimber-it/quizengine/internal/dataset"
	"github.com/remaimber-it/quizengine/internal/events"
	"github.com/remaimber-it/quizengine/internal/hint"
	"github.com/remaimber-it/quizengine/internal/infrastructure/config"
	"github.com/remaimber-it/quizengine/internal/infrastructure/logging"
	"github.com/remaimber-it/quizengine/internal/metrics"
	"github.com/remaimber-it/quizengine/internal/service"
	"github.com/remaimber-it/quizengine/internal/session"
	"github.com/remaimber-it/quizengine/internal/store"
)

// kvStore is a persistence backend the server can close on shutdown.
type kvStore interface {
	store.KV
	io.Closer
}

func main() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Datasets ────────────────────────────────────────────────────
	questions, err := dataset.LoadQuestionBank(cfg.QuestionBankPath)
	if err != nil {
		logger.Error("failed to load question bank", "error", err)
		os.Exit(1)
	}
	lessons, err := dataset.LoadLessonBank(cfg.LessonBankPath)
	if err != nil {
		logger.Error("failed to load lesson bank", "error", err)
		os.Exit(1)
	}
	logger.Info("datasets loaded",
		"lesson_id", questions.LessonID(),
		"questions", questions.Len(),
		"lessons", len(lessons.Lessons),
	)

	// ── Dependencies ────────────────────────────────────────────────
	kv, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open stats store", "backend", cfg.StatsBackend, "error", err)
		os.Exit(1)
	}
	defer kv.Close()

	pubsub := events.NewGoChannel(logger)
	defer pubsub.Close()
	publisher := events.NewPublisher(pubsub, cfg.EventsTopic, logger)

	go func() {
		err := events.Consume(ctx, pubsub, cfg.EventsTopic, func(ev events.SessionEvent) error {
			logger.Debug("session event",
				"event_type", ev.Kind,
				"learner_id", ev.LearnerID,
				"seq", ev.Seq,
				"session_id", ev.SessionID,
				"question_id", ev.QuestionID,
			)
			return nil
		})
		if err != nil {
			logger.Error("session event consumer stopped", "error", err)
		}
	}()

	m := metrics.New()

	learners := service.NewRegistry(kv, questions, lessons, newHintGenerator(cfg, logger), service.Config{
		Session: session.Config{
			AdvanceDelay:  cfg.AdvanceDelay,
			IntroDelay:    cfg.IntroDelay,
			RepromptDelay: cfg.RepromptDelay,
			HintCap:       cfg.HintCap,
		},
		TranscriptSize: cfg.TranscriptSize,
	}, logger,
		publisher.ForLearner,
		func(string) session.Observer { return m.Observer() },
	)
	handler := api.NewHandler(learners, logger)

	// ── Routes ──────────────────────────────────────────────────────
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.Handle("GET /metrics", m.Handler())

	api.RegisterRoutes(mux, handler)

	// ── Middleware chain: Logging → CORS → mux ──────────────────────
	logged := api.Logging(logger)(api.CORS(m.InstrumentHandler(mux)))

	// ── Server ──────────────────────────────────────────────────────
	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           logged,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down server")
		learners.StopAll()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server forced to shutdown", "error", err)
		}
	}()

	logger.Info("starting server",
		"address", cfg.ServerAddress,
		"stats_backend", cfg.StatsBackend,
		"hint_provider", cfg.HintProvider,
	)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed to start", "error", err)
		os.Exit(1)
	}
	<-shutdownDone
}

func openStore(ctx context.Context, cfg *config.Config) (kvStore, error) {
	if cfg.StatsBackend == "redis" {
		rs, err := store.NewRedis(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, err
		}
		return rs, nil
	}
	db, err := store.NewSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func newHintGenerator(cfg *config.Config, logger *slog.Logger) hint.Generator {
	switch cfg.HintProvider {
	case "anthropic":
		return hint.NewAnthropicGenerator(cfg.AnthropicKey, cfg.AnthropicModel, logger)
	case "none":
		return hint.Disabled{}
	}
	return hint.NewOpenAIGenerator(cfg.LLMURL, cfg.LLMModel, logger)
}
