package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/learn2grow/internal/app"
	"github.com/dropDatabas3/learn2grow/internal/config"
	"github.com/dropDatabas3/learn2grow/internal/http/server"
	"github.com/dropDatabas3/learn2grow/internal/observability/logger"
)

// main delega en run para que los defers (Close del storage, Sync del
// logger) corran también en las salidas con error.
func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.LoadOrDefault(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       os.Getenv("LOG_LEVEL"),
		ServiceName: "learn2grow",
	})
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.L().Error("wiring failed", logger.Err(err))
		return 1
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.L().Warn("close failed", logger.Err(err))
		}
	}()

	handler, err := a.Handler()
	if err != nil {
		logger.L().Error("handler build failed", logger.Err(err))
		return 1
	}

	srv := server.New(cfg.Server.Addr, handler)
	if err := srv.Start(ctx); err != nil {
		logger.L().Error("server failed", logger.Err(err))
		return 1
	}
	logger.L().Info("bye")
	return 0
}
