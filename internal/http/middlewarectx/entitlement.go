package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/selah-app/selah-backend/internal/http/response"
	"github.com/selah-app/selah-backend/internal/lib/sl"
	"github.com/selah-app/selah-backend/internal/metrics"
	"github.com/selah-app/selah-backend/internal/models"
)

// EntitlementProvider resolves the gating snapshot for a user.
type EntitlementProvider interface {
	Snapshot(ctx context.Context, userUID string) (*models.EntitlementSnapshot, error)
}

// EntitlementMiddleware enforces the paywall ladder: premium passes, a trial
// with days remaining passes, everything else gets 403.
func EntitlementMiddleware(log *slog.Logger, provider EntitlementProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.EntitlementMiddleware"

			userUID, ok := r.Context().Value(UserUID).(string)
			if !ok || userUID == "" {
				log.Error("user identification missing")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			snapshot, err := provider.Snapshot(r.Context(), userUID)
			if err != nil {
				log.Error("failed to get entitlement snapshot", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}

			if !snapshot.Active() {
				metrics.PaywallDenials.Inc()
				log.Info("access denied by paywall",
					slog.String("user_uid", userUID),
					slog.String("status", snapshot.Status))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("subscription expired, access denied"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
