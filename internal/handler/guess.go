package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"github.com/sakif/volcano-explorer/internal/apperror"
	"github.com/sakif/volcano-explorer/internal/auth"
	"github.com/sakif/volcano-explorer/internal/model"
	"github.com/sakif/volcano-explorer/internal/service"
)

// Guesses is what GuessHandler needs from the service layer.
type Guesses interface {
	SetGuess(ctx context.Context, volcanoID int64, year int, caller auth.Identity) error
	Stats(ctx context.Context, volcanoID int64) (model.GuessStats, error)
}

var _ Guesses = (*service.GuessService)(nil)

type GuessHandler struct {
	guesses Guesses
	logger  *slog.Logger
}

func NewGuessHandler(guesses Guesses, logger *slog.Logger) *GuessHandler {
	return &GuessHandler{guesses: guesses, logger: logger}
}

type guessRequest struct {
	GuessYear json.RawMessage `json:"guessYear"`
}

// HandleStats summarises the guesses for a volcano.
//
// HTTP: GET /volcano/{id}/eruptions
func (h *GuessHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	id, err := volcanoIDParam(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	stats, err := h.guesses.Stats(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleSet records the caller's guess, replacing an earlier one.
//
// HTTP: POST /volcano/{id}/eruptions
// REQUEST BODY: {"guessYear": 2031}
func (h *GuessHandler) HandleSet(w http.ResponseWriter, r *http.Request) {
	id, err := volcanoIDParam(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req guessRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	year, err := intField(req.GuessYear, "guessYear")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if year < math.MinInt32 || year > math.MaxInt32 {
		writeError(w, r, h.logger, apperror.ValidationFailed("guessYear", "guessYear is out of range"))
		return
	}

	if err := h.guesses.SetGuess(r.Context(), id, int(year), auth.IdentityFromContext(r.Context())); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Eruption year guess %d submitted for volcano with ID %d", year, id),
	})
}
