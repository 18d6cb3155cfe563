// Package read implements the HTTP handler for fetching one reading plan
// with the user's per-day completion state.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/selah-app/selah-backend/internal/http/middlewarectx"
	"github.com/selah-app/selah-backend/internal/http/response"
	"github.com/selah-app/selah-backend/internal/lib/sl"
	"github.com/selah-app/selah-backend/internal/models"
	"github.com/selah-app/selah-backend/internal/services/readingplan"
)

// PlanService reads plans with completion state.
type PlanService interface {
	GetPlan(ctx context.Context, userUID, slug string) (*models.ReadingPlan, []*models.DailyReadingStatus, error)
}

// Handler handles single plan reads.
type Handler struct {
	log         *slog.Logger
	planService PlanService
}

// New creates a Handler.
func New(log *slog.Logger, planService PlanService) *Handler {
	return &Handler{log: log, planService: planService}
}

// ServeHTTP godoc
// @Summary Get a reading plan
// @Description Returns a plan and its days joined with the user's completions
// @Tags Plans
// @Security BearerAuth
// @Produce json
// @Param slug path string true "Plan slug"
// @Success 200 {object} map[string]any "Plan with days"
// @Failure 401 {object} response.ErrorResponse "Missing user identity"
// @Failure 404 {object} response.ErrorResponse "Plan not found"
// @Router /plans/{slug} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.read"

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
	plan, days, err := h.planService.GetPlan(r.Context(), userUID, slug)
	if err != nil {
		if errors.Is(err, readingplan.ErrPlanNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("reading plan not found"))
			return
		}
		log.Error("failed to read plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to read plan"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"plan": plan,
		"days": days,
	}))
}
