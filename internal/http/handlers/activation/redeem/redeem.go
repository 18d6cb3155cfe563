// Package redeem implements the HTTP handler for redeeming a single-use
// activation code.
package redeem

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

// Request carries the activation code.
type Request struct {
	Code string `json:"code" validate:"required,min=4,max=64"`
}

// EntitlementService redeems activation codes.
type EntitlementService interface {
	RedeemCode(ctx context.Context, userUID, code string) (*models.EntitlementSnapshot, error)
}

// Handler handles code redemption.
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
// @Summary Redeem an activation code
// @Description Redeems a single-use code and activates premium for its grant period
// @Tags Entitlement
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body Request true "Activation code"
// @Success 200 {object} map[string]any "Updated entitlement"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 401 {object} response.ErrorResponse "Missing user identity"
// @Failure 409 {object} response.ErrorResponse "Unknown or spent code"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Router /activation/redeem [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.activation.redeem"

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

	snapshot, err := h.entitlementService.RedeemCode(r.Context(), userUID, req.Code)
	if err != nil {
		if errors.Is(err, entitlement.ErrCodeUnavailable) {
			log.Info("activation code unavailable")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("unknown or already redeemed code"))
			return
		}
		log.Error("failed to redeem code", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to redeem code"))
		return
	}

	log.Info("activation code redeemed")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"entitlement": snapshot,
	}))
}
