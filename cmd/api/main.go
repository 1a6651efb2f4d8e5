package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/opsdesk/ticket-service/internal/api/http"
	"github.com/opsdesk/ticket-service/internal/api/http/handlers"
	"github.com/opsdesk/ticket-service/internal/config"
	"github.com/opsdesk/ticket-service/internal/events"
	"github.com/opsdesk/ticket-service/internal/observability"
	"github.com/opsdesk/ticket-service/internal/persistence"
	"github.com/opsdesk/ticket-service/internal/repository"
	"github.com/opsdesk/ticket-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
		if cfg.App.Env == "development" {
			if err := persistence.SeedDevData(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Warn("failed to seed sample data", zap.Error(err))
			}
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(cfg.Slack, logger)
	notificationService.RegisterHandlers(dispatcher)

	ticketRepo := repository.NewTicketRepository(pg.PoolHandle())
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Triage:     service.NewTriage(),
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:    logger,
		Metrics:   metrics,
		Redis:     redis,
		App:       cfg.App,
		RateLimit: cfg.RateLimit,
		CORS:      cfg.CORS,
	})

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	ticketsHandler := handlers.NewTicketsHandler(ticketService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  healthHandler,
		Tickets: ticketsHandler,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
