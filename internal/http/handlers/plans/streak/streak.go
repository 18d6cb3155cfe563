// Package streak implements the HTTP handler for the cross-plan reading
// streak and heatmap.
package streak

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/selah-app/selah-backend/internal/http/middlewarectx"
	"github.com/selah-app/selah-backend/internal/http/response"
	"github.com/selah-app/selah-backend/internal/lib/sl"
	"github.com/selah-app/selah-backend/internal/models"
)

// PlanService reports streaks.
type PlanService interface {
	Streak(ctx context.Context, userUID string) (*models.StreakSummary, error)
}

// Handler handles streak reads.
type Handler struct {
	log         *slog.Logger
	planService PlanService
}

// New creates a Handler.
func New(log *slog.Logger, planService PlanService) *Handler {
	return &Handler{log: log, planService: planService}
}

// ServeHTTP godoc
// @Summary Get the reading streak
// @Description Returns the current and longest streak plus a rolling heatmap across all plans
// @Tags Plans
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any "Streak summary"
// @Failure 401 {object} response.ErrorResponse "Missing user identity"
// @Failure 500 {object} response.ErrorResponse "Streak computation failed"
// @Router /plans/streak [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.streak"

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

	summary, err := h.planService.Streak(r.Context(), userUID)
	if err != nil {
		log.Error("failed to compute streak", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to compute streak"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"streak": summary,
	}))
}
