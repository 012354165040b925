package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/learn2grow/internal/app"
	"github.com/dropDatabas3/learn2grow/internal/config"
	"github.com/dropDatabas3/learn2grow/internal/observability/logger"
	"github.com/dropDatabas3/learn2grow/internal/scheduler"
)

// main delega en run para que los defers (Close del storage, Sync del
// logger) corran también en las salidas con error.
func main() {
	os.Exit(run())
}

func run() int {
	var (
		interval = flag.Int("interval", 0, "minutos entre pases (0 = config, default 60)")
		runOnce  = flag.Bool("run-once", false, "ejecutar un único pase y salir")
		force    = flag.Bool("force", false, "re-enviar ignorando flags ya seteados")
		email    = flag.String("email", "", "procesar solo la solicitud con este email")
	)
	flag.Parse()

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
		ServiceName: "learn2grow-mailer",
	})
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.L().Error("wiring failed", logger.Err(err))
		return 1
	}
	defer func() { _ = a.Close() }()

	minutes := *interval
	if minutes <= 0 {
		minutes = cfg.Mailer.IntervalMinutes
	}

	m := scheduler.New(a.Engine, a.Store.Requests(), scheduler.Options{
		Interval:     time.Duration(minutes) * time.Minute,
		Force:        *force,
		TargetEmail:  *email,
		FollowUpDays: cfg.Email.FollowUpDays,
	})

	// Con -email implícitamente es un pase único.
	if *runOnce || *email != "" {
		if err := m.RunOnce(ctx); err != nil {
			logger.L().Error("pass failed", logger.Err(err))
			return 1
		}
		return 0
	}

	if err := m.Run(ctx); err != nil {
		logger.L().Error("mailer failed", logger.Err(err))
		return 1
	}
	return 0
}
