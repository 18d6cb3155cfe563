// Package get implements the HTTP handler for reading all client
// preferences of the authenticated user.
package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/selah-app/selah-backend/internal/http/middlewarectx"
	"github.com/selah-app/selah-backend/internal/http/response"
	"github.com/selah-app/selah-backend/internal/lib/sl"
)

// PrefsService lists preferences.
type PrefsService interface {
	List(ctx context.Context, userUID string) (map[string]string, error)
}

// Handler handles preference reads.
type Handler struct {
	log          *slog.Logger
	prefsService PrefsService
}

// New creates a Handler.
func New(log *slog.Logger, prefsService PrefsService) *Handler {
	return &Handler{log: log, prefsService: prefsService}
}

// ServeHTTP godoc
// @Summary Get preferences
// @Description Returns all client preferences of the user as a key-value map
// @Tags Preferences
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any "Preferences"
// @Failure 401 {object} response.ErrorResponse "Missing user identity"
// @Failure 500 {object} response.ErrorResponse "Read failed"
// @Router /preferences [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.prefs.get"

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

	prefs, err := h.prefsService.List(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list preferences", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list preferences"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"preferences": prefs,
	}))
}
