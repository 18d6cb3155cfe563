// Package scheduler assembles the background sweeps that expire trials and
// reconcile premium subscriptions with Stripe.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/selah-app/selah-backend/internal/billing"
	"github.com/selah-app/selah-backend/internal/cache"
	"github.com/selah-app/selah-backend/internal/config"
	"github.com/selah-app/selah-backend/internal/lib/rabbitmq"
	schedulerservice "github.com/selah-app/selah-backend/internal/services/scheduler"
	"github.com/selah-app/selah-backend/internal/storage"
)

// App is the assembled scheduler process.
type App struct {
	schedulerService *schedulerservice.SchedulerService
	conn             *amqp.Connection
	ch               *amqp.Channel
	logger           *slog.Logger
	trialInterval    time.Duration
	lapseInterval    time.Duration
}

func waitForDB(db *storage.Storage) error {
	for range 10 {
		err := storage.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New builds the scheduler App from config.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQConnection, 5, 3*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(db); err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	billingClient := billing.NewClient(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	schedulerService := schedulerservice.NewSchedulerService(logger, db, billingClient, cacheRedis)

	return &App{
		schedulerService: schedulerService,
		conn:             conn,
		ch:               ch,
		logger:           logger,
		trialInterval:    time.Duration(cfg.Trial.SweepHours) * time.Hour,
		lapseInterval:    time.Duration(cfg.Trial.VerifyHours) * time.Hour,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", "error", err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", "error", err)
		}
	}
}

// Run starts both sweeps and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	go a.schedulerService.RunTrialSweep(ctx, a.ch, a.trialInterval)
	go a.schedulerService.RunLapseSweep(ctx, a.ch, a.lapseInterval)

	<-ctx.Done()

	a.logger.Info("shutting down scheduler service")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
