package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"readaloud/internal/blob"
	"readaloud/internal/cache"
	"readaloud/internal/clip"
	"readaloud/internal/config"
	"readaloud/internal/documents"
	"readaloud/internal/extract"
	apphttp "readaloud/internal/http"
	"readaloud/internal/storage"
	"readaloud/internal/tts"
	"readaloud/migrations"
)

const (
	documentCacheSize = 128
	documentCacheTTL  = 10 * time.Minute
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	if err := run(logger); err != nil {
		logger.Error("startup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := sql.Open("pgx", cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	// ensure DB is reachable
	if err := pingDB(ctx, db); err != nil {
		return err
	}

	if err := storage.RunMigrations(ctx, db, migrations.Files); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	store, err := blob.NewFSStore(cfg.MediaDir, "/media")
	if err != nil {
		return fmt.Errorf("init media store: %w", err)
	}

	var speech documents.SpeechClient
	if cfg.OpenAIAPIKey != "" {
		speech = tts.NewOpenAIClient(logger, cfg.OpenAIAPIKey, nil)
	} else {
		logger.Warn("OPENAI_API_KEY not set, using stub synthesis")
		speech = tts.NewStubClient()
	}

	repo := storage.NewDocumentRepository(db)
	docService := documents.NewService(
		logger,
		repo,
		extract.New(),
		speech,
		store,
		clip.New(),
		cache.NewLRU[uuid.UUID, documents.Document](documentCacheSize, documentCacheTTL),
	)

	handler := apphttp.NewServer(logger, docService, cfg.TTSVoice, store.Dir())

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("shutdown server: %w", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}

func pingDB(ctx context.Context, db *sql.DB) error {
	const (
		maxAttempts = 10
		baseDelay   = time.Second
	)

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()

		if err == nil {
			return nil
		}

		// allow caller to abort early
		select {
		case <-ctx.Done():
			return fmt.Errorf("ping db: %w", err)
		case <-time.After(time.Duration(attempt) * baseDelay):
		}
	}

	return fmt.Errorf("ping db: %w", err)
}
