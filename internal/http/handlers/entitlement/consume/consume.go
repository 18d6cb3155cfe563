// Package consume implements the HTTP handler that counts one message
// against the daily quota. Premium users are never counted; a trial user
// past the quota gets 429 with the current counts.
package consume

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

// EntitlementService counts quota messages.
type EntitlementService interface {
	ConsumeMessage(ctx context.Context, userUID string) (*models.EntitlementSnapshot, bool, error)
}

// Handler handles quota consumption.
type Handler struct {
	log                *slog.Logger
	entitlementService EntitlementService
}

// New creates a Handler.
func New(log *slog.Logger, entitlementService EntitlementService) *Handler {
	return &Handler{log: log, entitlementService: entitlementService}
}

// ServeHTTP godoc
// @Summary Consume one message from the daily quota
// @Description Counts one message for the authenticated user and reports whether it is allowed
// @Tags Entitlement
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any "Message allowed"
// @Failure 401 {object} response.ErrorResponse "Missing user identity"
// @Failure 429 {object} map[string]any "Daily quota exhausted"
// @Router /entitlement/messages/consume [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entitlement.consume"

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

	snapshot, allowed, err := h.entitlementService.ConsumeMessage(r.Context(), userUID)
	if err != nil {
		log.Error("failed to consume message", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to consume message"))
		return
	}
	if !allowed {
		log.Info("message denied", slog.String("status", snapshot.Status))
		w.WriteHeader(http.StatusTooManyRequests)
		render.JSON(w, r, response.OKWithData(map[string]any{
			"allowed":     false,
			"entitlement": snapshot,
		}))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"allowed":     true,
		"entitlement": snapshot,
	}))
}
