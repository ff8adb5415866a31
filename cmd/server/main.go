package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/edu-forge/itemforge/internal/ai"
	"github.com/edu-forge/itemforge/internal/api"
	"github.com/edu-forge/itemforge/internal/corpus"
	"github.com/edu-forge/itemforge/internal/embedding"
	"github.com/edu-forge/itemforge/internal/exam"
	"github.com/edu-forge/itemforge/internal/generation"
	"github.com/edu-forge/itemforge/internal/knowledge"
	"github.com/edu-forge/itemforge/internal/platform/cache"
	"github.com/edu-forge/itemforge/internal/platform/config"
	"github.com/edu-forge/itemforge/internal/platform/database"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	setupLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	store, err := knowledge.NewPostgresStore(ctx, db.Pool)
	if err != nil {
		return fmt.Errorf("prepare knowledge store: %w", err)
	}

	var groundingCache *cache.Cache
	ready := []api.ReadyCheck{db.HealthCheck}
	if cfg.Cache.Enabled {
		groundingCache, err = cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			return fmt.Errorf("connect cache: %w", err)
		}
		defer groundingCache.Close()
		ready = append(ready, groundingCache.HealthCheck)
	}

	profiles, err := exam.Load(cfg.ProfilesDir)
	if err != nil {
		return fmt.Errorf("load exam profiles: %w", err)
	}

	if cfg.AI.Groq.APIKey == "" {
		slog.Warn("no Groq API key configured, generation will serve fallback items")
	}
	provider := ai.NewGroqProvider(cfg.AI.Groq.APIKey,
		ai.WithBaseURL(cfg.AI.Groq.BaseURL),
		ai.WithModel(cfg.AI.Groq.Model),
	)

	var budget ai.BudgetChecker
	if cfg.AI.BudgetTokens > 0 {
		tracker := ai.NewInMemoryBudget()
		tracker.SetDefaultBudget(cfg.AI.BudgetTokens)
		budget = tracker
		slog.Info("per-exam token budget enabled", "tokens", cfg.AI.BudgetTokens)
	}

	aggregator := corpus.NewAggregator(store, embedding.NewMock(cfg.Embedding.Dimension))
	generator := generation.NewGenerator(generation.GeneratorConfig{
		Provider:    provider,
		Retriever:   generation.NewLexicalRetriever(store),
		Profiles:    profiles,
		Cache:       groundingCache,
		CacheTTL:    time.Duration(cfg.Cache.TTLSeconds) * time.Second,
		Budget:      budget,
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
	})

	server := api.NewServer(store, aggregator, generator,
		api.WithReadyChecks(ready...),
		api.WithGenerateTimeout(time.Duration(cfg.Generation.TimeoutSeconds)*time.Second),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute, // generation and uploads are slow paths
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "model", cfg.AI.Groq.Model)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
