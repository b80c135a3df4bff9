package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Owner identifies who runs this deployment.
type Owner struct {
	Name          string `json:"name"`
	StudentNumber string `json:"student_number"`
}

// MetaHandler serves /me and /health.
type MetaHandler struct {
	owner  Owner
	store  Pinger
	logger *slog.Logger
}

func NewMetaHandler(owner Owner, store Pinger, logger *slog.Logger) *MetaHandler {
	return &MetaHandler{owner: owner, store: store, logger: logger}
}

// HTTP: GET /me
func (h *MetaHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.owner)
}

type healthResponse struct {
	Status string `json:"status"`
}

// HandleHealth pings the store with a short deadline.
//
// HTTP: GET /health → 200 {"status":"ok"} or 503 {"status":"unavailable"}
func (h *MetaHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
