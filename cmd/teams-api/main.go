package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudyy74/teams-api/internal/app"
	"github.com/cloudyy74/teams-api/internal/config"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config := config.MustLoadConfig()
	log := newLogger(config.Env)
	log.Info("starting teams api", slog.String("env", config.Env))
	log.Debug("debug messages are enabled")

	application, err := app.NewApp(config, log)
	if err != nil {
		log.Error("failed to init app", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go application.MustRun()

	<-ctx.Done()
	log.Info("stopping teams api")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	application.Close(shutdownCtx)
	log.Info("teams api stopped")
}

func newLogger(env string) *slog.Logger {
	var log *slog.Logger

	opts := &slog.HandlerOptions{AddSource: true}

	switch env {
	case "local":
		opts.Level = slog.LevelDebug
		log = slog.New(slog.NewTextHandler(os.Stdout, opts))
	case "dev":
		opts.Level = slog.LevelDebug
		log = slog.New(slog.NewJSONHandler(os.Stdout, opts))
	case "prod":
		opts.Level = slog.LevelInfo
		log = slog.New(slog.NewJSONHandler(os.Stdout, opts))
	default:
		panic("unknown env")
	}

	return log
}
