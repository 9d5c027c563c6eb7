package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/ai"
	httptransport "github.com/spec-kit/helpdesk-core/internal/api/http"
	"github.com/spec-kit/helpdesk-core/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-core/internal/auth"
	"github.com/spec-kit/helpdesk-core/internal/config"
	"github.com/spec-kit/helpdesk-core/internal/events"
	"github.com/spec-kit/helpdesk-core/internal/observability"
	"github.com/spec-kit/helpdesk-core/internal/persistence"
	"github.com/spec-kit/helpdesk-core/internal/repository"
	"github.com/spec-kit/helpdesk-core/internal/service"
	"github.com/spec-kit/helpdesk-core/internal/worker"
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
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	provider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		logger.Fatal("failed to build AI provider", zap.Error(err))
	}

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	eventRepo := repository.NewTicketEventRepository(pool)
	articleStore := repository.NewArticleStore(pool)
	queueRepo := repository.NewNotificationRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	orgRepo := repository.NewOrganizationRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	leaser := persistence.NewTicketLeaser(redis.Client, cfg.Assist.LeaseTTL())

	retriever := service.NewKnowledgeRetriever(provider, articleStore, orgRepo, logger, cfg.Assist)
	generator := service.NewResponseGenerator(provider, cfg.AI, cfg.Assist)
	evaluator := service.NewResponseEvaluator(provider, cfg.AI.EvalTemperature, logger)

	assistService := service.NewAssistService(service.AssistDependencies{
		TicketRepo: ticketRepo,
		EventRepo:  eventRepo,
		Retriever:  retriever,
		Generator:  generator,
		Evaluator:  evaluator,
		Leaser:     leaser,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
		Config:     cfg.Assist,
	})

	notificationService := service.NewNotificationService(queueRepo, ticketRepo, dispatcher, logger)
	notificationService.RegisterHandlers()

	dispatcherService := service.NewDispatcherService(service.DispatcherDependencies{
		QueueRepo:  queueRepo,
		UserRepo:   userRepo,
		TicketRepo: ticketRepo,
		EventRepo:  eventRepo,
		Mailer:     service.NewMailer(cfg.Notification, logger),
		Metrics:    metrics,
		Logger:     logger,
		Config:     cfg.Notification,
	})
	worker.StartNotificationWorker(ctx, dispatcherService, cfg.Notification.Interval(), logger)

	tokens := auth.NewServiceTokenManager(cfg.Auth.ServiceTokenSecret)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Assist:        handlers.NewAssistHandler(assistService),
		Notifications: handlers.NewNotificationsHandler(dispatcherService),
		Tokens:        tokens,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
