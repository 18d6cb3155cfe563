// Package login implements the HTTP handler for user login.
package login

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
	"github.com/selah-app/selah-backend/internal/models"
)

// Request carries the login payload.
type Request struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthService verifies credentials and issues tokens.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*models.User, string, string, error)
}

// EntitlementService resolves the gating snapshot returned with the token pair.
type EntitlementService interface {
	Snapshot(ctx context.Context, userUID string) (*models.EntitlementSnapshot, error)
}

// Handler handles login requests.
type Handler struct {
	log                *slog.Logger
	authService        AuthService
	entitlementService EntitlementService
	validate           *validator.Validate
}

// New creates a Handler.
func New(log *slog.Logger, authService AuthService, entitlementService EntitlementService) *Handler {
	return &Handler{
		log:                log,
		authService:        authService,
		entitlementService: entitlementService,
		validate:           validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Log in
// @Description Verifies the password and returns the token pair, the role and the entitlement snapshot
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Credentials"
// @Success 200 {object} map[string]any "Token pair"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 401 {object} response.ErrorResponse "Invalid credentials"
// @Failure 422 {object} response.ErrorResponse "Validation failed"
// @Failure 500 {object} response.ErrorResponse "Snapshot resolution failed"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	user, token, refresh, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		log.Error("login failed", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid credentials"))
		return
	}

	snapshot, err := h.entitlementService.Snapshot(r.Context(), user.UID)
	if err != nil {
		log.Error("failed to resolve entitlement snapshot", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	log.Info("login success", slog.String("username", req.Username))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token":         token,
		"refresh_token": refresh,
		"user_uid":      user.UID,
		"role":          user.Role,
		"entitlement":   snapshot,
	}))
}
