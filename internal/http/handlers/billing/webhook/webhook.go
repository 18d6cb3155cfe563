// Package webhook implements the HTTP handler for Stripe webhook events.
// The endpoint is unauthenticated; the Stripe-Signature header is the proof
// of origin.
package webhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/stripe/stripe-go/v79"

	"github.com/selah-app/selah-backend/internal/http/response"
	"github.com/selah-app/selah-backend/internal/lib/sl"
)

// Stripe caps webhook payloads well below this.
const maxBodyBytes = 1 << 16

// Verifier checks the webhook signature and parses the event.
type Verifier interface {
	ConstructWebhookEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

// EntitlementService applies verified billing events.
type EntitlementService interface {
	HandleWebhookEvent(ctx context.Context, event stripe.Event) error
}

// Handler handles webhook deliveries.
type Handler struct {
	log                *slog.Logger
	verifier           Verifier
	entitlementService EntitlementService
}

// New creates a Handler.
func New(log *slog.Logger, verifier Verifier, entitlementService EntitlementService) *Handler {
	return &Handler{
		log:                log,
		verifier:           verifier,
		entitlementService: entitlementService,
	}
}

// ServeHTTP godoc
// @Summary Receive a Stripe webhook
// @Description Verifies the signature and applies the billing event
// @Tags Billing
// @Accept json
// @Produce json
// @Success 200 {object} response.Response "Event applied"
// @Failure 400 {object} response.ErrorResponse "Bad signature or payload"
// @Failure 500 {object} response.ErrorResponse "Event processing failed"
// @Router /billing/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to read body"))
		return
	}

	event, err := h.verifier.ConstructWebhookEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		log.Error("webhook signature verification failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid webhook signature"))
		return
	}

	if err := h.entitlementService.HandleWebhookEvent(r.Context(), event); err != nil {
		// Stripe retries on non-2xx, so processing errors are worth a 500.
		log.Error("failed to handle webhook event",
			slog.String("type", string(event.Type)), sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to handle event"))
		return
	}

	log.Info("webhook event applied", slog.String("type", string(event.Type)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"received": true,
	}))
}
