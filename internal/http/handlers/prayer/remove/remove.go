// Package remove implements the HTTP handler for deleting a prayer journal
// entry. Deletion is permanent.
package remove

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
	"github.com/selah-app/selah-backend/internal/services/prayer"
)

// PrayerService removes journal entries.
type PrayerService interface {
	Remove(ctx context.Context, userUID string, id int) error
}

// Handler handles entry deletion.
type Handler struct {
	log           *slog.Logger
	prayerService PrayerService
}

// New creates a Handler.
func New(log *slog.Logger, prayerService PrayerService) *Handler {
	return &Handler{log: log, prayerService: prayerService}
}

// ServeHTTP godoc
// @Summary Delete a prayer request
// @Description Permanently deletes a journal entry owned by the authenticated user
// @Tags Prayers
// @Security BearerAuth
// @Produce json
// @Param id path int true "Entry ID"
// @Success 200 {object} response.Response "Entry deleted"
// @Failure 400 {object} response.ErrorResponse "Invalid ID"
// @Failure 401 {object} response.ErrorResponse "Missing user identity"
// @Failure 404 {object} response.ErrorResponse "Entry not found"
// @Router /prayers/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.prayer.remove"

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

	if err := h.prayerService.Remove(r.Context(), userUID, id); err != nil {
		if errors.Is(err, prayer.ErrPrayerNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("prayer request not found"))
			return
		}
		log.Error("failed to remove prayer request", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to remove prayer request"))
		return
	}

	log.Info("prayer request removed", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}
