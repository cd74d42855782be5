package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-git-cms/internal/backend"
	"go-git-cms/internal/config"
	"go-git-cms/internal/handler"
	"go-git-cms/internal/router"
	"go-git-cms/internal/schema"
	"go-git-cms/internal/service"
)

type App struct {
	server *http.Server
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	contentSchema, err := schema.Load(cfg.SchemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load content schema: %w", err)
	}
	slog.Info("content schema loaded", "file", cfg.SchemaFile, "collections", len(contentSchema.Collections))

	store := backend.NewGitHub(cfg.GitHubToken, cfg.GitHubOwner, cfg.GitHubRepo, cfg.GitHubBranch)
	slog.Info("repository backend ready", "owner", cfg.GitHubOwner, "repo", cfg.GitHubRepo, "branch", cfg.GitHubBranch)

	trashService := service.NewTrashService(store, contentSchema.TrashRoot, cfg.TrashRetentionDays)
	contentService := service.NewContentService(store, contentSchema, trashService)
	referenceIndex := service.NewScanIndex(store, contentSchema)
	mediaService := service.NewMediaService(store, contentSchema, referenceIndex, trashService)
	statsService := service.NewStatsService(store, contentSchema, trashService)
	authService := service.NewAuthService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.AdminEmail, cfg.AdminPasswordHash)

	appRouter := router.New(
		cfg,
		authService,
		handler.NewAuthHandler(authService),
		handler.NewContentHandler(contentService),
		handler.NewMediaHandler(mediaService, cfg.MaxUploadSize),
		handler.NewTrashHandler(trashService),
		handler.NewStatsHandler(statsService),
	)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{server: server}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
