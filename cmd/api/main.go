package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/Youhorng/notify-service/internal/channel"
	"github.com/Youhorng/notify-service/internal/config"
	"github.com/Youhorng/notify-service/internal/events"
	"github.com/Youhorng/notify-service/internal/handler"
	"github.com/Youhorng/notify-service/internal/infra/postgresql"
	"github.com/Youhorng/notify-service/internal/infra/postgresql/migrations"
	infraredis "github.com/Youhorng/notify-service/internal/infra/redis"
	"github.com/Youhorng/notify-service/internal/observability"
	"github.com/Youhorng/notify-service/internal/repository"
	"github.com/Youhorng/notify-service/internal/service"
	"github.com/Youhorng/notify-service/internal/transport"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("notify-service exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("postgres initialization failed: %w", err)
	}

	if err := migrations.Migrate(db); err != nil {
		return fmt.Errorf("database migrations failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("postgres underlying db init failed: %w", err)
	}
	defer sqlDB.Close()

	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		rdb, err = infraredis.NewRedis(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis initialization failed: %w", err)
		}
		defer rdb.Close()
	} else {
		logger.Warn("REDIS_URL not set, delivery rate limiting disabled")
	}

	deliveryChannel, err := selectDeliveryChannel(cfg, logger)
	if err != nil {
		return err
	}

	svc, err := service.NewNotificationService(
		repository.NewGormNotificationRepo(db),
		deliveryChannel,
		logger,
	)
	if err != nil {
		return fmt.Errorf("service initialization failed: %w", err)
	}

	if rdb != nil {
		limiter, err := infraredis.NewDeliveryRateLimiter(rdb, deliveryChannel.Name(), cfg.TelegramRatePerSec)
		if err != nil {
			return fmt.Errorf("rate limiter initialization failed: %w", err)
		}
		svc.SetRateLimiter(limiter)
	}

	if cfg.RabbitMQURL != "" {
		broker, err := events.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return fmt.Errorf("rabbitmq initialization failed: %w", err)
		}
		publisher := events.NewRabbitMQPublisher(broker)
		defer publisher.Close()
		svc.SetEventPublisher(publisher)
	} else {
		logger.Warn("RABBITMQ_URL not set, lifecycle event publishing disabled")
	}

	metrics := observability.NewMetrics()
	svc.SetMetrics(metrics)

	app := fiber.New(fiber.Config{
		AppName:      "notify-service",
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(transport.RequestCorrelation())
	app.Use(metrics.HTTPMiddleware())
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	if err := handler.RegisterNotificationRoutes(app, svc); err != nil {
		return fmt.Errorf("route registration failed: %w", err)
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("notify-service api started",
			zap.Int("port", cfg.APIPort),
			zap.String("channel", deliveryChannel.Name()),
		)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutdown signal received")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	return group.Wait()
}

// selectDeliveryChannel falls back to simulated delivery when Telegram
// credentials are absent, so the service stays runnable in development.
func selectDeliveryChannel(cfg *config.Config, logger *zap.Logger) (channel.Channel, error) {
	if cfg.TelegramConfigured() {
		telegram, err := channel.NewTelegramChannel(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			return nil, fmt.Errorf("telegram channel initialization failed: %w", err)
		}
		return telegram, nil
	}

	logger.Warn("telegram credentials not set, running in simulation mode")
	return channel.NewSimulatedChannel(logger), nil
}
