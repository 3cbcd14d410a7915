package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"heavyCalc/internal/app"
	"heavyCalc/internal/pkg/logger"
)

func main() {
	cfg, err := app.LoadCfg()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.New(cfg, log).Run(ctx); err != nil {
		log.Error("run failed", "error", err)
		stop()
		os.Exit(1)
	}
}
