// Package refresh implements the HTTP handler for exchanging a refresh token
// for a new token pair.
package refresh

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/selah-app/selah-backend/internal/http/response"
	"github.com/selah-app/selah-backend/internal/lib/sl"
)

// Request carries the refresh token.
type Request struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthService exchanges refresh tokens.
type AuthService interface {
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
}

// Handler handles refresh requests.
type Handler struct {
	log         *slog.Logger
	authService AuthService
	validate    *validator.Validate
}

// New creates a Handler.
func New(log *slog.Logger, authService AuthService) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
		validate:    validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Refresh tokens
// @Description Exchanges a valid refresh token for a new access and refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Refresh token"
// @Success 200 {object} map[string]any "New token pair"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 401 {object} response.ErrorResponse "Invalid refresh token"
// @Router /auth/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	token, refresh, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		log.Error("refresh failed", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid refresh token"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"token":         token,
		"refresh_token": refresh,
	}))
}
