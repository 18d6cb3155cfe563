// Package read implements the HTTP handler for fetching one prayer journal
// entry.
package read

import (
	"context"
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
)

// PrayerService reads journal entries.
type PrayerService interface {
	Read(ctx context.Context, userUID string, id int) (*models.PrayerRequest, error)
}

// Handler handles single entry reads.
type Handler struct {
	log           *slog.Logger
	prayerService PrayerService
}

// New creates a Handler.
func New(log *slog.Logger, prayerService PrayerService) *Handler {
	return &Handler{log: log, prayerService: prayerService}
}

// ServeHTTP godoc
// @Summary Get a prayer request
// @Description Returns one journal entry owned by the authenticated user
// @Tags Prayers
// @Security BearerAuth
// @Produce json
// @Param id path int true "Entry ID"
// @Success 200 {object} map[string]any "Entry"
// @Failure 400 {object} response.ErrorResponse "Invalid ID"
// @Failure 401 {object} response.ErrorResponse "Missing user identity"
// @Failure 404 {object} response.ErrorResponse "Entry not found"
// @Router /prayers/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.prayer.read"

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

	entry, err := h.prayerService.Read(r.Context(), userUID, id)
	if err != nil {
		log.Error("failed to read prayer request", sl.Err(err))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("prayer request not found"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"prayer": entry,
	}))
}
