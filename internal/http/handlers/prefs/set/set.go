// Package set implements the HTTP handler for upserting one client
// preference. The last write wins.
package set

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/selah-app/selah-backend/internal/http/middlewarectx"
	"github.com/selah-app/selah-backend/internal/http/response"
	"github.com/selah-app/selah-backend/internal/lib/sl"
)

// Request carries one preference pair.
type Request struct {
	Key   string `json:"key" validate:"required,max=100"`
	Value string `json:"value" validate:"max=1000"`
}

// PrefsService upserts preferences.
type PrefsService interface {
	Set(ctx context.Context, userUID, key, value string) error
}

// Handler handles preference writes.
type Handler struct {
	log          *slog.Logger
	prefsService PrefsService
	validate     *validator.Validate
}

// New creates a Handler.
func New(log *slog.Logger, prefsService PrefsService) *Handler {
	return &Handler{
		log:          log,
		prefsService: prefsService,
		validate:     validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Set a preference
// @Description Upserts one key-value preference for the user
// @Tags Preferences
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body Request true "Preference pair"
// @Success 200 {object} response.Response "Preference stored"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 401 {object} response.ErrorResponse "Missing user identity"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Router /preferences [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.prefs.set"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.prefsService.Set(r.Context(), userUID, req.Key, req.Value); err != nil {
		log.Error("failed to store preference", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to store preference"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"key": req.Key,
	}))
}
