package server

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

	"cloud-disk/internal/config"
	"cloud-disk/internal/middleware"
)

type App struct {
	server *http.Server
}

func NewApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	handler, err := Build(cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		server: &http.Server{
			Addr:         ":" + cfg.ServerPort,
			Handler:      handler,
			ReadTimeout:  cfg.ServerReadTimeout,
			WriteTimeout: cfg.ServerWriteTimeout,
			IdleTimeout:  cfg.ServerIdleTimeout,
		},
	}, nil
}

// Build wires the store, auth service, handlers, and middleware into the API
// handler. Integration tests mount it on an httptest server.
func Build(cfg *config.Config) (http.Handler, error) {
	store := NewDiskStore(cfg.ThumbnailSize)
	if cfg.SeedDemoData {
		if err := store.SeedDemo(); err != nil {
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	authService, err := NewAuthService(cfg.UsersFile, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}

	authMiddleware := middleware.NewAuthMiddleware(authService)
	authHandler := NewAuthHandler(authService)
	filesHandler := NewFilesHandler(store, cfg.MaxUploadSize)

	return NewRouter(cfg, authMiddleware, authHandler, filesHandler), nil
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
