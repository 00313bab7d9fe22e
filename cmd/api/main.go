package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-management/configs"
	v1 "task-management/internal/api/v1"
	"task-management/internal/config"
	"task-management/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := configs.LoadConfig()
	if err != nil {
		return err
	}

	logs, err := logger.New(cfg.LogDir)
	if err != nil {
		return err
	}
	defer logs.Sync()
	logs.System.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)), zap.String("env", cfg.AppEnv))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := config.NewDependencies(ctx, cfg, logs)
	if err != nil {
		logs.Error.Error("Failed to initialise dependencies", zap.Error(err))
		return err
	}
	defer deps.Close()

	go deps.Hub.Run(ctx)

	app := v1.NewApp(deps)
	go func() {
		<-ctx.Done()
		logs.System.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logs.Error.Error("Shutdown failed", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.AppPort)
	logs.System.Info("Application ready", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logs.Error.Error("Application failed to start", zap.Error(err))
		return err
	}
	return nil
}
