// Package update implements the HTTP handler for editing a prayer journal
// entry.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/selah-app/selah-backend/internal/http/middlewarectx"
	"github.com/selah-app/selah-backend/internal/http/response"
	"github.com/selah-app/selah-backend/internal/lib/sl"
	"github.com/selah-app/selah-backend/internal/models"
	"github.com/selah-app/selah-backend/internal/services/prayer"
)

// PrayerService updates journal entries.
type PrayerService interface {
	Update(ctx context.Context, userUID string, id int, dummy models.DummyPrayer) error
}

// Handler handles entry updates.
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
// @Summary Update a prayer request
// @Description Replaces the editable fields of a journal entry
// @Tags Prayers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Entry ID"
// @Param request body models.DummyPrayer true "Entry data"
// @Success 200 {object} response.Response "Entry updated"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON or invalid ID"
// @Failure 401 {object} response.ErrorResponse "Missing user identity"
// @Failure 404 {object} response.ErrorResponse "Entry not found"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Router /prayers/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.prayer.update"

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

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid entry id"))
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

	if err := h.prayerService.Update(r.Context(), userUID, id, req); err != nil {
		if errors.Is(err, prayer.ErrPrayerNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("prayer request not found"))
			return
		}
		log.Error("failed to update prayer request", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to update prayer request"))
		return
	}

	log.Info("prayer request updated", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}
