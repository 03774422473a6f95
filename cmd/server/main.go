package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amf-prep/trainer/internal/httpapi"
	"github.com/amf-prep/trainer/internal/platform/cache"
	"github.com/amf-prep/trainer/internal/platform/config"
	"github.com/amf-prep/trainer/internal/platform/database"
	"github.com/amf-prep/trainer/internal/questionbank"
	"github.com/amf-prep/trainer/internal/training"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg.Log))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	store, cleanup, err := newStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open progress store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	bank := questionbank.NewBank(cfg.Bank.Path, cfg.Bank.Sheet, newCache(ctx, cfg))
	if err := bank.Load(ctx); err != nil {
		// The trainer stays up without questions; a workbook can be
		// imported over the API.
		slog.Warn("question bank not loaded", "path", cfg.Bank.Path, "error", err)
	}

	sizes := training.Sizes{
		Quiz:        cfg.Sizes.Quiz,
		Batch:       cfg.Sizes.Batch,
		SprintBatch: cfg.Sizes.SprintBatch,
		SprintCount: cfg.Sizes.SprintCount,
	}
	selector := training.NewSelector(store, sizes, nil)
	grader := training.NewGrader(store)

	api := httpapi.NewServer(bank, selector, grader, store, cfg.Bank.DataDir)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "questions", bank.Len())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// newStore opens the configured progress store backend. The returned cleanup
// closes any underlying connections.
func newStore(ctx context.Context, cfg *config.Config) (training.Store, func(), error) {
	switch cfg.State.Backend {
	case "postgres":
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, nil, err
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		store, err := training.NewPostgresStore(db.Pool)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		slog.Info("progress store ready", "backend", "postgres")
		return store, db.Close, nil
	default:
		store, err := training.NewFileStore(cfg.State.Dir)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("progress store ready", "backend", "file", "dir", cfg.State.Dir)
		return store, func() {}, nil
	}
}

// newCache connects to Redis when configured. Failure is not fatal: the
// bank just parses the workbook on every content change.
func newCache(ctx context.Context, cfg *config.Config) *cache.Cache {
	if cfg.Cache.URL == "" {
		return nil
	}
	c, err := cache.New(ctx, cfg.Cache.URL)
	if err != nil {
		slog.Warn("cache unavailable, continuing without it", "error", err)
		return nil
	}
	return c
}
