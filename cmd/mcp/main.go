package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	mcpadapter "github.com/kirillkom/pdf-digest/internal/adapters/mcp"
	"github.com/kirillkom/pdf-digest/internal/bootstrap"
	"github.com/kirillkom/pdf-digest/internal/config"
	"github.com/kirillkom/pdf-digest/internal/observability/logging"
)

// stdout carries the MCP protocol, so logs go to stderr.
func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_error", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(logging.Options{Service: "mcp", Level: cfg.LogLevel, Format: cfg.LogFormat, Writer: os.Stderr}))
	cfg.SessionStore = "memory"

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_error", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	server := mcpadapter.New(app.IngestUC, app.SummarizeUC, app.SessionUC, cfg.MaxUploadBytes())
	if err := server.ServeStdio(); err != nil {
		slog.Error("mcp_server_error", "error", err)
	}
}
