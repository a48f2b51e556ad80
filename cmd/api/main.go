package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shinyyama/home-inventory/internal/config"
	appmw "github.com/shinyyama/home-inventory/internal/middleware"
	"github.com/shinyyama/home-inventory/internal/server"
	"github.com/shinyyama/home-inventory/internal/service"
)

// Set with -ldflags at build time.
var (
	gitSHA    = "dev"
	buildTime = ""
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load error", "error", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := server.OpenRepository(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	store, err := server.OpenStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	auth, err := appmw.NewAuthMiddleware(ctx, cfg.FirebaseProjectID)
	if err != nil {
		return err
	}

	items := service.NewItemService(repo, store.Gateway, service.Options{
		MaxAttachments:    cfg.MaxAttachments,
		UploadConcurrency: cfg.UploadConcurrency,
		Logger:            logger,
	})
	srv := server.New(cfg, server.Deps{
		Items:  items,
		Blobs:  store.Blobs,
		Auth:   auth,
		Logger: logger,
		SHA:    gitSHA,
		Build:  buildTime,
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", addr, "db", cfg.DBDriver, "storage", cfg.StorageBackend, "auth", auth != nil)
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func newLogger(level string) *slog.Logger {
	var lv slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lv = slog.LevelDebug
	case "warn":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lv}))
}
