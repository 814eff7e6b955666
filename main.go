package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DSACMS/student-lookup-service/api"
	"github.com/DSACMS/student-lookup-service/pkg/core"
	"github.com/DSACMS/student-lookup-service/pkg/crm"
	"github.com/DSACMS/student-lookup-service/pkg/lookup"
	"github.com/DSACMS/student-lookup-service/pkg/redis"

	"github.com/gofiber/fiber/v2"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := core.LoadEnv(); err != nil {
		log.Printf("env files: %v", err)
	}

	cfg, err := core.NewConfigFromEnv()
	if err != nil {
		log.Fatalf("failed to read config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config:\n%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otelService, err := core.NewOtelService(ctx, &cfg)
	if err != nil {
		log.Printf("otel disabled: %v", err)
		otelService = core.NewNoopOtelService()
	}

	logger := core.NewLoggerWithOtel(cfg, otelService)
	slog.SetDefault(logger)

	defer otelService.Shutdown(context.Background(), logger)

	app, cleanup, err := buildApp(&cfg, logger, otelService)
	if err != nil {
		logger.Error("failed to build app", slog.Any("err", err))
		os.Exit(1)
	}
	defer cleanup()

	logger.Info("starting server", slog.String("addr", cfg.ListenAddr()), slog.String("environment", cfg.Environment))

	if err := runServer(ctx, app, cfg.ListenAddr()); err != nil {
		logger.Error("server error", slog.Any("err", err))
	}
}

// buildApp wires the CRM client, lookup service and Redis into the HTTP app.
// The returned cleanup releases the Redis pool.
func buildApp(cfg *core.Config, logger *slog.Logger, otelService core.OtelService) (*fiber.App, func(), error) {
	contacts, err := crm.New(&cfg.CRM, crm.Options{Logger: logger})
	if err != nil {
		return nil, nil, fmt.Errorf("crm client: %w", err)
	}

	svc, err := lookup.New(contacts, lookup.Options{
		Logger:         logger,
		StudentIDField: cfg.CRM.StudentIDField,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("lookup service: %w", err)
	}

	rdb := redis.NewClient(redis.ConfigFrom(cfg.Redis), logger)
	cleanup := func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("closing redis", slog.Any("err", err))
		}
	}

	app, err := api.New(&api.Config{
		Otel:   otelService,
		Logger: logger,
		Lookup: svc,
		Redis:  rdb,
		Config: *cfg,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return app, cleanup, nil
}

func runServer(ctx context.Context, app *fiber.App, addr string) error {
	srvErr := make(chan error, 1)

	go func() {
		srvErr <- app.Listen(addr)
	}()

	select {
	case err := <-srvErr:
		return err
	case <-ctx.Done():
	}

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("error during shutdown: %w", err)
	}
	return nil
}
