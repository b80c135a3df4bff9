package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/volcano-explorer/internal/auth"
	"github.com/sakif/volcano-explorer/internal/model"
	"github.com/sakif/volcano-explorer/internal/service"
)

// Images is what ImageHandler needs from the service layer.
type Images interface {
	Post(ctx context.Context, volcanoID int64, imageURL string, caller auth.Identity) (*model.Image, error)
	List(ctx context.Context, volcanoID int64) ([]model.Image, error)
	Delete(ctx context.Context, imageID string, caller auth.Identity) error
	Report(ctx context.Context, imageID string, caller auth.Identity) (model.ReportOutcome, error)
}

var _ Images = (*service.ImageService)(nil)

type ImageHandler struct {
	images Images
	logger *slog.Logger
}

func NewImageHandler(images Images, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{images: images, logger: logger}
}

type imageRequest struct {
	ImageURL string `json:"imageUrl"`
}

// HTTP: GET /volcano/{id}/images
func (h *ImageHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id, err := volcanoIDParam(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	imgs, err := h.images.List(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, imgs)
}

// HTTP: POST /volcano/{id}/images
// REQUEST BODY: {"imageUrl": "https://..."}
func (h *ImageHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	id, err := volcanoIDParam(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req imageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	img, err := h.images.Post(r.Context(), id, req.ImageURL, auth.IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, img)
}

// HTTP: DELETE /images/{imageID}
func (h *ImageHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.images.Delete(r.Context(), chi.URLParam(r, "imageID"), auth.IdentityFromContext(r.Context())); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Image deleted"})
}

// HTTP: POST /images/{imageID}/report
func (h *ImageHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	out, err := h.images.Report(r.Context(), chi.URLParam(r, "imageID"), auth.IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, reportResponse("image", out))
}
