// Package toggle implements the HTTP handler that flips the completion of
// one plan day. The response carries the resulting server state so an
// optimistic client can reconcile.
package toggle

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
	"github.com/selah-app/selah-backend/internal/services/readingplan"
)

// PlanService toggles day completions.
type PlanService interface {
	ToggleDay(ctx context.Context, userUID, slug string, day int) (bool, *models.PlanProgress, error)
}

// Handler handles completion toggles.
type Handler struct {
	log         *slog.Logger
	planService PlanService
}

// New creates a Handler.
func New(log *slog.Logger, planService PlanService) *Handler {
	return &Handler{log: log, planService: planService}
}

// ServeHTTP godoc
// @Summary Toggle a plan day
// @Description Flips the completion of one day and returns the authoritative state and progress
// @Tags Plans
// @Security BearerAuth
// @Produce json
// @Param slug path string true "Plan slug"
// @Param day path int true "Day number, starting at 1"
// @Success 200 {object} map[string]any "Resulting completion and progress"
// @Failure 400 {object} response.ErrorResponse "Invalid or out of range day"
// @Failure 401 {object} response.ErrorResponse "Missing user identity"
// @Failure 404 {object} response.ErrorResponse "Plan not found"
// @Router /plans/{slug}/days/{day}/toggle [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.toggle"

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

	slug := chi.URLParam(r, "slug")
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid day"))
		return
	}

	completed, progress, err := h.planService.ToggleDay(r.Context(), userUID, slug, day)
	if err != nil {
		switch {
		case errors.Is(err, readingplan.ErrPlanNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("reading plan not found"))
		case errors.Is(err, readingplan.ErrDayOutOfRange):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("day out of plan range"))
		default:
			log.Error("failed to toggle day", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to toggle day"))
		}
		return
	}

	log.Info("day toggled",
		slog.String("slug", slug), slog.Int("day", day), slog.Bool("completed", completed))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"completed": completed,
		"progress":  progress,
	}))
}
