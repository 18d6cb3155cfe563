// Package verifycheckout implements the HTTP handler that confirms a Stripe
// checkout session after the client returns from payment. Premium is granted
// only after the backend has verified the session server side.
package verifycheckout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/selah-app/selah-backend/internal/http/middlewarectx"
	"github.com/selah-app/selah-backend/internal/http/response"
	"github.com/selah-app/selah-backend/internal/lib/sl"
	"github.com/selah-app/selah-backend/internal/models"
	"github.com/selah-app/selah-backend/internal/services/entitlement"
)

// Request carries the checkout session to verify.
type Request struct {
	SessionID string `json:"session_id" validate:"required"`
}

// EntitlementService verifies checkout sessions.
type EntitlementService interface {
	VerifyCheckout(ctx context.Context, userUID, sessionID string) (*models.EntitlementSnapshot, error)
}

// Handler handles checkout verification.
type Handler struct {
	log                *slog.Logger
	entitlementService EntitlementService
	validate           *validator.Validate
}

// New creates a Handler.
func New(log *slog.Logger, entitlementService EntitlementService) *Handler {
	return &Handler{
		log:                log,
		entitlementService: entitlementService,
		validate:           validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Verify a checkout session
// @Description Confirms a paid checkout session with Stripe and activates premium
// @Tags Billing
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body Request true "Checkout session ID"
// @Success 200 {object} map[string]any "Updated entitlement"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 401 {object} response.ErrorResponse "Missing user identity"
// @Failure 402 {object} response.ErrorResponse "Session not paid"
// @Failure 403 {object} response.ErrorResponse "Session belongs to another user"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Router /billing/verify-checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.verifycheckout"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	snapshot, err := h.entitlementService.VerifyCheckout(r.Context(), userUID, req.SessionID)
	if err != nil {
		if errors.Is(err, entitlement.ErrCheckoutNotPaid) {
			log.Info("checkout session not paid", slog.String("session_id", req.SessionID))
			w.WriteHeader(http.StatusPaymentRequired)
			render.JSON(w, r, response.Error("checkout session is not paid"))
			return
		}
		if errors.Is(err, entitlement.ErrCheckoutOwnerMismatch) {
			log.Warn("checkout session owner mismatch", slog.String("session_id", req.SessionID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("checkout session belongs to another user"))
			return
		}
		log.Error("failed to verify checkout", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to verify checkout"))
		return
	}

	log.Info("checkout verified", slog.String("session_id", req.SessionID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"entitlement": snapshot,
	}))
}
