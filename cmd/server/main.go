package main

import (
	"log/slog"
	"os"

	"cloud-disk/internal/logger"
	"cloud-disk/internal/server"
)

func main() {
	logHandler := logger.NewPrettyHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(logHandler))

	app, err := server.NewApp()
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}
