// Package list implements the HTTP handler for listing prayer journal
// entries with optional filters.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/selah-app/selah-backend/internal/http/middlewarectx"
	"github.com/selah-app/selah-backend/internal/http/response"
	"github.com/selah-app/selah-backend/internal/lib/sl"
	"github.com/selah-app/selah-backend/internal/models"
)

// PrayerService lists journal entries.
type PrayerService interface {
	List(ctx context.Context, userUID string, filter models.PrayerFilter) ([]*models.PrayerRequest, error)
}

// Handler handles entry listing.
type Handler struct {
	log           *slog.Logger
	prayerService PrayerService
}

// New creates a Handler.
func New(log *slog.Logger, prayerService PrayerService) *Handler {
	return &Handler{log: log, prayerService: prayerService}
}

// ServeHTTP godoc
// @Summary List prayer requests
// @Description Returns the user's journal entries, optionally filtered by answered state and category
// @Tags Prayers
// @Security BearerAuth
// @Produce json
// @Param answered query bool false "Filter by answered state"
// @Param category query string false "Filter by category"
// @Param limit query int false "Page size (default 50, max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} map[string]any "Entries"
// @Failure 401 {object} response.ErrorResponse "Missing user identity"
// @Failure 500 {object} response.ErrorResponse "Listing failed"
// @Router /prayers [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.prayer.list"

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

	filter := models.PrayerFilter{
		Category: r.URL.Query().Get("category"),
	}
	if raw := r.URL.Query().Get("answered"); raw != "" {
		answered, err := strconv.ParseBool(raw)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid answered filter"))
			return
		}
		filter.Answered = &answered
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		filter.Limit, _ = strconv.Atoi(raw)
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		filter.Offset, _ = strconv.Atoi(raw)
	}

	entries, err := h.prayerService.List(r.Context(), userUID, filter)
	if err != nil {
		log.Error("failed to list prayer requests", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list prayer requests"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"prayers": entries,
		"count":   len(entries),
	}))
}
