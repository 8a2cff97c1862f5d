package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/RoGogDBD/inventory/internal/app"
	"github.com/RoGogDBD/inventory/internal/config"
	"github.com/RoGogDBD/inventory/internal/logger"
	"go.uber.org/zap"
)

//	@title			Inventory API
//	@version		1.0
//	@description	Учет предметов инвентаря с фотографиями.
//	@BasePath		/

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Конфигурация
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	zl, err := logger.New("inventory", cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, cfg, zl)
	if err != nil {
		zl.Error("failed to initialize application", zap.Error(err))
		return err
	}

	runErr := application.Run(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	application.Close(closeCtx)

	if runErr != nil {
		zl.Error("http server stopped with error", zap.Error(runErr))
		return runErr
	}
	zl.Info("server stopped")
	return nil
}
