package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/hivemind/support-engine/internal/api/http"
	"github.com/hivemind/support-engine/internal/api/http/handlers"
	"github.com/hivemind/support-engine/internal/auth"
	"github.com/hivemind/support-engine/internal/config"
	"github.com/hivemind/support-engine/internal/llm"
	"github.com/hivemind/support-engine/internal/observability"
	"github.com/hivemind/support-engine/internal/persistence"
	"github.com/hivemind/support-engine/internal/presence"
	"github.com/hivemind/support-engine/internal/realtime"
	"github.com/hivemind/support-engine/internal/repository"
	"github.com/hivemind/support-engine/internal/service"
	"github.com/hivemind/support-engine/internal/storage"
	"github.com/hivemind/support-engine/internal/triage"
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

	broker := realtime.NewRedisBroker(redis.Client)

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)

	metrics := observability.NewMetrics()

	triageClient := triage.NewClient(cfg.Triage)
	pipeline := triage.NewPipeline(triageClient, logger, cfg.Triage.Timeout())

	authService := service.NewAuthService(cfg.Auth, profileRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Broker:     broker,
		Triage:     pipeline,
		Logger:     logger,
	})
	messageService := service.NewMessageService(messageRepo, broker, logger)
	aiService := service.NewAIService(ticketRepo, messageRepo, llm.NewClient(cfg.Triage), logger)
	statsService := service.NewStatsService(statsRepo)

	presenceChannel := presence.NewChannel(broker, cfg.Presence.TypingTTL(), logger)
	uploader := storage.NewUploader(storage.NewDiskStore(cfg.Attachment), cfg.Attachment)

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), profileRepo)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: int(cfg.Attachment.MaxSizeBytes) + 1<<20,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, messageService, presenceChannel, uploader),
		Admin:          handlers.NewAdminHandler(ticketService, aiService, statsService),
		AI:             handlers.NewAIHandler(aiService),
		AuthMiddleware: authMiddleware,
		UploadsDir:     cfg.Attachment.Dir,
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
