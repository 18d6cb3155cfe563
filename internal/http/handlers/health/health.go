// Package health implements the liveness endpoint. The handler pings every
// backing dependency so a failing one flips the probe.
package health

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/streadway/amqp"

	"github.com/selah-app/selah-backend/internal/cache"
	"github.com/selah-app/selah-backend/internal/http/response"
	"github.com/selah-app/selah-backend/internal/lib/sl"
	"github.com/selah-app/selah-backend/internal/storage"
)

// Handler reports service liveness.
type Handler struct {
	log     *slog.Logger
	storage *storage.Storage
	rabbit  *amqp.Connection
	cache   *cache.Cache
}

// New creates a Handler.
func New(log *slog.Logger, storage *storage.Storage, rabbit *amqp.Connection, cache *cache.Cache) *Handler {
	return &Handler{
		log:     log,
		storage: storage,
		rabbit:  rabbit,
		cache:   cache,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	if err := h.storage.DB.PingContext(r.Context()); err != nil {
		h.log.Error("database unreachable", slog.String("op", op), sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("database unreachable"))
		return
	}
	if h.rabbit.IsClosed() {
		h.log.Error("rabbitmq connection closed", slog.String("op", op))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("message broker unreachable"))
		return
	}
	if err := h.cache.Db.Ping(r.Context()).Err(); err != nil {
		h.log.Error("redis unreachable", slog.String("op", op), sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("cache unreachable"))
		return
	}

	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"status": "ok",
	}))
}
