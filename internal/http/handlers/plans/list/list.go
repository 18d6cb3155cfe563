// Package list implements the HTTP handler for listing the seeded reading
// plans.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/selah-app/selah-backend/internal/http/response"
	"github.com/selah-app/selah-backend/internal/lib/sl"
	"github.com/selah-app/selah-backend/internal/models"
)

// PlanService lists reading plans.
type PlanService interface {
	ListPlans(ctx context.Context) ([]*models.ReadingPlan, error)
}

// Handler handles plan listing.
type Handler struct {
	log         *slog.Logger
	planService PlanService
}

// New creates a Handler.
func New(log *slog.Logger, planService PlanService) *Handler {
	return &Handler{log: log, planService: planService}
}

// ServeHTTP godoc
// @Summary List reading plans
// @Description Returns all available devotional reading plans
// @Tags Plans
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any "Plans"
// @Failure 500 {object} response.ErrorResponse "Listing failed"
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	plans, err := h.planService.ListPlans(r.Context())
	if err != nil {
		log.Error("failed to list plans", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list plans"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"plans": plans,
	}))
}
