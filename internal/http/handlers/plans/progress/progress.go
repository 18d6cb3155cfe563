// Package progress implements the HTTP handler for the per-plan completion
// summary.
package progress

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

// PlanService reports plan progress.
type PlanService interface {
	Progress(ctx context.Context, userUID, slug string) (*models.PlanProgress, error)
}

// Handler handles progress reads.
type Handler struct {
	log         *slog.Logger
	planService PlanService
}

// New creates a Handler.
func New(log *slog.Logger, planService PlanService) *Handler {
	return &Handler{log: log, planService: planService}
}

// ServeHTTP godoc
// @Summary Get plan progress
// @Description Returns the authoritative completion summary for one plan
// @Tags Plans
// @Security BearerAuth
// @Produce json
// @Param slug path string true "Plan slug"
// @Success 200 {object} map[string]any "Progress"
// @Failure 401 {object} response.ErrorResponse "Missing user identity"
// @Failure 404 {object} response.ErrorResponse "Plan not found"
// @Router /plans/{slug}/progress [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.progress"

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
	progress, err := h.planService.Progress(r.Context(), userUID, slug)
	if err != nil {
		if errors.Is(err, readingplan.ErrPlanNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("reading plan not found"))
			return
		}
		log.Error("failed to read progress", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to read progress"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"progress": progress,
	}))
}
