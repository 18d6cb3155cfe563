package selahapi

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/selah-app/selah-backend/internal/billing"
	"github.com/selah-app/selah-backend/internal/cache"
	"github.com/selah-app/selah-backend/internal/http/handlers/activation/redeem"
	"github.com/selah-app/selah-backend/internal/http/handlers/auth/login"
	"github.com/selah-app/selah-backend/internal/http/handlers/auth/refresh"
	"github.com/selah-app/selah-backend/internal/http/handlers/auth/register"
	"github.com/selah-app/selah-backend/internal/http/handlers/auth/resetconfirm"
	"github.com/selah-app/selah-backend/internal/http/handlers/auth/resetrequest"
	"github.com/selah-app/selah-backend/internal/http/handlers/billing/restore"
	"github.com/selah-app/selah-backend/internal/http/handlers/billing/verifycheckout"
	"github.com/selah-app/selah-backend/internal/http/handlers/billing/webhook"
	"github.com/selah-app/selah-backend/internal/http/handlers/entitlement/consume"
	"github.com/selah-app/selah-backend/internal/http/handlers/entitlement/status"
	"github.com/selah-app/selah-backend/internal/http/handlers/health"
	planlist "github.com/selah-app/selah-backend/internal/http/handlers/plans/list"
	planprogress "github.com/selah-app/selah-backend/internal/http/handlers/plans/progress"
	planread "github.com/selah-app/selah-backend/internal/http/handlers/plans/read"
	planstreak "github.com/selah-app/selah-backend/internal/http/handlers/plans/streak"
	plantoggle "github.com/selah-app/selah-backend/internal/http/handlers/plans/toggle"
	prayeranswer "github.com/selah-app/selah-backend/internal/http/handlers/prayer/answer"
	prayercreate "github.com/selah-app/selah-backend/internal/http/handlers/prayer/create"
	prayerlist "github.com/selah-app/selah-backend/internal/http/handlers/prayer/list"
	prayerread "github.com/selah-app/selah-backend/internal/http/handlers/prayer/read"
	prayerremove "github.com/selah-app/selah-backend/internal/http/handlers/prayer/remove"
	prayerupdate "github.com/selah-app/selah-backend/internal/http/handlers/prayer/update"
	prefsget "github.com/selah-app/selah-backend/internal/http/handlers/prefs/get"
	prefsset "github.com/selah-app/selah-backend/internal/http/handlers/prefs/set"
	"github.com/selah-app/selah-backend/internal/http/middlewarectx"
	authservice "github.com/selah-app/selah-backend/internal/services/auth"
	entitlementservice "github.com/selah-app/selah-backend/internal/services/entitlement"
	prayerservice "github.com/selah-app/selah-backend/internal/services/prayer"
	prefsservice "github.com/selah-app/selah-backend/internal/services/prefs"
	readingplanservice "github.com/selah-app/selah-backend/internal/services/readingplan"
	"github.com/selah-app/selah-backend/internal/storage"
)

// Services bundles everything the route tree depends on.
type Services struct {
	Auth        *authservice.AuthService
	Entitlement *entitlementservice.EntitlementService
	Prayer      *prayerservice.PrayerService
	Plans       *readingplanservice.ReadingPlanService
	Prefs       *prefsservice.PrefsService
	Billing     *billing.Client
	Storage     *storage.Storage
	Rabbit      *amqp.Connection
	Cache       *cache.Cache
}

// RegisterRoutes registers all routes of the API.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Open endpoints
		r.Post("/auth/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, s.Auth, s.Entitlement).ServeHTTP)
		r.Post("/auth/refresh", refresh.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/password/reset", resetrequest.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/password/confirm", resetconfirm.New(logger, s.Auth).ServeHTTP)

		// Webhook endpoint, authenticated by signature instead of JWT
		r.Post("/billing/webhook", webhook.New(logger, s.Billing, s.Entitlement).ServeHTTP)

		// Authenticated, not gated: account state, billing and preferences
		// must stay reachable for expired users so they can come back.
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/entitlement", status.New(logger, s.Entitlement).ServeHTTP)
			r.Post("/entitlement/messages/consume", consume.New(logger, s.Entitlement).ServeHTTP)
			r.Post("/billing/verify-checkout", verifycheckout.New(logger, s.Entitlement).ServeHTTP)
			r.Post("/billing/restore", restore.New(logger, s.Entitlement).ServeHTTP)
			r.Post("/activation/redeem", redeem.New(logger, s.Entitlement).ServeHTTP)
			r.Get("/preferences", prefsget.New(logger, s.Prefs).ServeHTTP)
			r.Put("/preferences", prefsset.New(logger, s.Prefs).ServeHTTP)
		})

		// Authenticated and entitlement gated: premium or active trial only
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Use(middlewarectx.EntitlementMiddleware(logger, s.Entitlement))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/prayers", prayercreate.New(logger, s.Prayer).ServeHTTP)
			r.Get("/prayers", prayerlist.New(logger, s.Prayer).ServeHTTP)
			r.Get("/prayers/{id}", prayerread.New(logger, s.Prayer).ServeHTTP)
			r.Put("/prayers/{id}", prayerupdate.New(logger, s.Prayer).ServeHTTP)
			r.Delete("/prayers/{id}", prayerremove.New(logger, s.Prayer).ServeHTTP)
			r.Post("/prayers/{id}/answer", prayeranswer.New(logger, s.Prayer).ServeHTTP)

			r.Get("/plans", planlist.New(logger, s.Plans).ServeHTTP)
			r.Get("/plans/streak", planstreak.New(logger, s.Plans).ServeHTTP)
			r.Get("/plans/{slug}", planread.New(logger, s.Plans).ServeHTTP)
			r.Get("/plans/{slug}/progress", planprogress.New(logger, s.Plans).ServeHTTP)
			r.Post("/plans/{slug}/days/{day}/toggle", plantoggle.New(logger, s.Plans).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, s.Storage, s.Rabbit, s.Cache).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
