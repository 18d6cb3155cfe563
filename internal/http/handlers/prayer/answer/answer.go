// Package answer implements the HTTP handler for marking a prayer request
// answered. The transition happens once; repeating it is reported as a
// conflict.
package answer

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/selah-app/selah-backend/internal/http/middlewarectx"
	"github.com/selah-app/selah-backend/internal/http/response"
	"github.com/selah-app/selah-backend/internal/lib/sl"
	"github.com/selah-app/selah-backend/internal/models"
	"github.com/selah-app/selah-backend/internal/services/prayer"
)

// PrayerService marks journal entries answered.
type PrayerService interface {
	MarkAnswered(ctx context.Context, userUID string, id int) (*models.PrayerRequest, error)
}

// Handler handles the answered transition.
type Handler struct {
	log           *slog.Logger
	prayerService PrayerService
}

// New creates a Handler.
func New(log *slog.Logger, prayerService PrayerService) *Handler {
	return &Handler{log: log, prayerService: prayerService}
}

// ServeHTTP godoc
// @Summary Mark a prayer request answered
// @Description Marks a journal entry answered exactly once and returns the updated entry
// @Tags Prayers
// @Security BearerAuth
// @Produce json
// @Param id path int true "Entry ID"
// @Success 200 {object} map[string]any "Updated entry"
// @Failure 400 {object} response.ErrorResponse "Invalid ID"
// @Failure 401 {object} response.ErrorResponse "Missing user identity"
// @Failure 404 {object} response.ErrorResponse "Entry not found"
// @Failure 409 {object} response.ErrorResponse "Entry already answered"
// @Router /prayers/{id}/answer [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.prayer.answer"

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

	entry, err := h.prayerService.MarkAnswered(r.Context(), userUID, id)
	if err != nil {
		switch {
		case errors.Is(err, prayer.ErrAlreadyAnswered):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("prayer request already answered"))
		case errors.Is(err, prayer.ErrPrayerNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("prayer request not found"))
		default:
			log.Error("failed to mark prayer request answered", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to mark prayer request answered"))
		}
		return
	}

	log.Info("prayer request answered", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"prayer": entry,
	}))
}
