package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/volcano-explorer/internal/auth"
	"github.com/sakif/volcano-explorer/internal/model"
	"github.com/sakif/volcano-explorer/internal/service"
)

// Favorites is what FavoriteHandler needs from the service layer.
type Favorites interface {
	Add(ctx context.Context, volcanoID int64, caller auth.Identity) error
	List(ctx context.Context, email string, caller auth.Identity) ([]model.Volcano, error)
	Remove(ctx context.Context, volcanoID int64, caller auth.Identity) error
}

var _ Favorites = (*service.FavoriteService)(nil)

type FavoriteHandler struct {
	favorites Favorites
	logger    *slog.Logger
}

func NewFavoriteHandler(favorites Favorites, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, logger: logger}
}

type favoriteRequest struct {
	VolcanoID json.RawMessage `json:"volcanoID"`
}

// HandleAdd saves a volcano for the caller.
//
// HTTP: POST /favorites
// REQUEST BODY: {"volcanoID": 42}
func (h *FavoriteHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, err := intField(req.VolcanoID, "volcanoID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.favorites.Add(r.Context(), id, auth.IdentityFromContext(r.Context())); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageResponse{
		Message: fmt.Sprintf("Volcano with ID %d saved to favorites", id),
	})
}

// HandleList returns a user's saved volcanoes.
//
// HTTP: GET /user/{email}/favorites
func (h *FavoriteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	vs, err := h.favorites.List(r.Context(), chi.URLParam(r, "email"), auth.IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, vs)
}

// HandleRemove drops a volcano from the caller's favorites.
//
// HTTP: DELETE /favorites/{volcanoID}
func (h *FavoriteHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	id, err := volcanoIDParam(r, "volcanoID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.favorites.Remove(r.Context(), id, auth.IdentityFromContext(r.Context())); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Volcano with ID %d removed from saved volcanoes", id),
	})
}
