// Package create implements the HTTP handler for adding a prayer journal
// entry.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/selah-app/selah-backend/internal/http/middlewarectx"
	"github.com/selah-app/selah-backend/internal/http/response"
	"github.com/selah-app/selah-backend/internal/lib/sl"
	"github.com/selah-app/selah-backend/internal/models"
)

// PrayerService creates journal entries.
type PrayerService interface {
	Create(ctx context.Context, userUID string, dummy models.DummyPrayer) (int, error)
}

// Handler handles entry creation.
type Handler struct {
	log           *slog.Logger
	prayerService PrayerService
	validate      *validator.Validate
}

// New creates a Handler.
func New(log *slog.Logger, prayerService PrayerService) *Handler {
	return &Handler{
		log:           log,
		prayerService: prayerService,
		validate:      validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Create a prayer request
// @Description Adds a journal entry for the authenticated user
// @Tags Prayers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.DummyPrayer true "Entry data"
// @Success 200 {object} map[string]any "Created entry ID"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 401 {object} response.ErrorResponse "Missing user identity"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Creation failed"
// @Router /prayers [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.prayer.create"

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

	var req models.DummyPrayer
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

	id, err := h.prayerService.Create(r.Context(), userUID, req)
	if err != nil {
		log.Error("failed to create prayer request", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create prayer request"))
		return
	}

	log.Info("prayer request created", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}
