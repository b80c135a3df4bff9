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

// Comments is what CommentHandler needs from the service layer.
type Comments interface {
	Post(ctx context.Context, volcanoID int64, text string, caller auth.Identity) (*model.Comment, error)
	Get(ctx context.Context, commentID string) (*model.Comment, error)
	Update(ctx context.Context, commentID, text string, caller auth.Identity) (*model.Comment, error)
	Delete(ctx context.Context, commentID string, caller auth.Identity) error
	List(ctx context.Context, volcanoID int64) ([]model.Comment, error)
	Report(ctx context.Context, commentID string, caller auth.Identity) (model.ReportOutcome, error)
}

var _ Comments = (*service.CommentService)(nil)

// CommentHandler serves volcano comments and their reports.
type CommentHandler struct {
	comments Comments
	logger   *slog.Logger
}

func NewCommentHandler(comments Comments, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

type commentRequest struct {
	Comment string `json:"comment"`
}

// ReportResponse is returned by both report endpoints.
type ReportResponse struct {
	Message string `json:"message"`
	model.ReportOutcome
}

func reportResponse(resource string, out model.ReportOutcome) ReportResponse {
	msg := "Reported " + resource
	if out.Removed {
		msg = "Reported " + resource + "; it has been removed"
	}
	return ReportResponse{Message: msg, ReportOutcome: out}
}

// HandleList returns a volcano's comments, oldest first.
//
// HTTP: GET /volcano/{id}/comments
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id, err := volcanoIDParam(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	cs, err := h.comments.List(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

// HandlePost comments on a volcano as the caller.
//
// HTTP: POST /volcano/{id}/comments
// REQUEST BODY: {"comment": "..."}
func (h *CommentHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	id, err := volcanoIDParam(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	c, err := h.comments.Post(r.Context(), id, req.Comment, auth.IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// HandleGet returns one comment.
//
// HTTP: GET /comments/{commentID}
func (h *CommentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.comments.Get(r.Context(), chi.URLParam(r, "commentID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleUpdate edits the caller's own comment.
//
// HTTP: PUT /comments/{commentID}
func (h *CommentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	c, err := h.comments.Update(r.Context(), chi.URLParam(r, "commentID"), req.Comment,
		auth.IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleDelete removes the caller's own comment.
//
// HTTP: DELETE /comments/{commentID}
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.comments.Delete(r.Context(), chi.URLParam(r, "commentID"), auth.IdentityFromContext(r.Context())); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Comment deleted"})
}

// HandleReport flags a comment. The third distinct report deletes it.
//
// HTTP: POST /comments/{commentID}/report
func (h *CommentHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	out, err := h.comments.Report(r.Context(), chi.URLParam(r, "commentID"), auth.IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, reportResponse("comment", out))
}
