// Package restore implements the HTTP handler that re-verifies the user's
// stored subscription with Stripe, for reinstalls and lapsed local state.
package restore

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/selah-app/selah-backend/internal/http/middlewarectx"
	"github.com/selah-app/selah-backend/internal/http/response"
	"github.com/selah-app/selah-backend/internal/lib/sl"
	"github.com/selah-app/selah-backend/internal/models"
	"github.com/selah-app/selah-backend/internal/services/entitlement"
)

// EntitlementService restores subscriptions.
type EntitlementService interface {
	Restore(ctx context.Context, userUID string) (*models.EntitlementSnapshot, error)
}

// Handler handles restore calls.
type Handler struct {
	log                *slog.Logger
	entitlementService EntitlementService
}

// New creates a Handler.
func New(log *slog.Logger, entitlementService EntitlementService) *Handler {
	return &Handler{log: log, entitlementService: entitlementService}
}

// ServeHTTP godoc
// @Summary Restore a subscription
// @Description Re-verifies the stored subscription with Stripe and converges the local state
// @Tags Billing
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any "Updated entitlement"
// @Failure 401 {object} response.ErrorResponse "Missing user identity"
// @Failure 404 {object} response.ErrorResponse "No subscription to restore"
// @Router /billing/restore [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.restore"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok {
		log.Error("missing user uid in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("missing user identity"))
		return
	}

	snapshot, err := h.entitlementService.Restore(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, entitlement.ErrNothingToRestore) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("no subscription to restore"))
			return
		}
		log.Error("failed to restore subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to restore subscription"))
		return
	}

	log.Info("subscription restored", slog.String("status", snapshot.Status))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"entitlement": snapshot,
	}))
}
