// Package selahapi assembles the HTTP API: storage, cache, billing client,
// message queue, services, router and server lifecycle.
package selahapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/selah-app/selah-backend/internal/billing"
	"github.com/selah-app/selah-backend/internal/cache"
	"github.com/selah-app/selah-backend/internal/config"
	"github.com/selah-app/selah-backend/internal/lib/jwt"
	"github.com/selah-app/selah-backend/internal/lib/rabbitmq"
	"github.com/selah-app/selah-backend/internal/migrations"
	authservice "github.com/selah-app/selah-backend/internal/services/auth"
	entitlementservice "github.com/selah-app/selah-backend/internal/services/entitlement"
	prayerservice "github.com/selah-app/selah-backend/internal/services/prayer"
	prefsservice "github.com/selah-app/selah-backend/internal/services/prefs"
	readingplanservice "github.com/selah-app/selah-backend/internal/services/readingplan"
	"github.com/selah-app/selah-backend/internal/storage"
)

// App is the assembled API server.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
}

// New builds the App from config: connects storage, cache, RabbitMQ and
// Stripe, runs migrations and registers all routes.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.RabbitMQConnection, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	channel, err := rabbitmq.SetupChannel(rabbitConn, rabbitmq.GetNotificationQueues())
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL, cfg.JWTToken.RefreshTTL)
	billingClient := billing.NewClient(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	publisher := rabbitmq.NewEventPublisher(channel)

	authService := authservice.NewAuthService(db, jwtMaker, publisher, cfg.Trial.Days)
	entitlementService := entitlementservice.New(logger, db, billingClient, cacheRedis, cfg.Trial.DailyQuota)
	prayerService := prayerservice.New(db)
	planService := readingplanservice.New(db)
	prefsService := prefsservice.New(db)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:        authService,
		Entitlement: entitlementService,
		Prayer:      prayerService,
		Plans:       planService,
		Prefs:       prefsService,
		Billing:     billingClient,
		Storage:     db,
		Rabbit:      rabbitConn,
		Cache:       cacheRedis,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run serves HTTP until the context is canceled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.DB.Close()
		return err
	}
}
