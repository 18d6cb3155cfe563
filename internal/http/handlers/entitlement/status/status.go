// Package status implements the HTTP handler that reports the user's
// entitlement snapshot: trial days left, message quota and premium period.
package status

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/selah-app/selah-backend/internal/http/middlewarectx"
	"github.com/selah-app/selah-backend/internal/http/response"
	"github.com/selah-app/selah-backend/internal/lib/sl"
	"github.com/selah-app/selah-backend/internal/models"
)

// EntitlementService builds snapshots.
type EntitlementService interface {
	Snapshot(ctx context.Context, userUID string) (*models.EntitlementSnapshot, error)
}

// Handler handles snapshot reads.
type Handler struct {
	log                *slog.Logger
	entitlementService EntitlementService
}

// New creates a Handler.
func New(log *slog.Logger, entitlementService EntitlementService) *Handler {
	return &Handler{log: log, entitlementService: entitlementService}
}

// ServeHTTP godoc
// @Summary Get the entitlement status
// @Description Returns the derived gating state for the authenticated user
// @Tags Entitlement
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any "Entitlement snapshot"
// @Failure 401 {object} response.ErrorResponse "Missing user identity"
// @Failure 500 {object} response.ErrorResponse "Snapshot failed"
// @Router /entitlement [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entitlement.status"

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

	snapshot, err := h.entitlementService.Snapshot(r.Context(), userUID)
	if err != nil {
		log.Error("failed to build snapshot", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to read entitlement"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"entitlement": snapshot,
	}))
}
