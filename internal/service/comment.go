package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/volcano-explorer/internal/apperror"
	"github.com/sakif/volcano-explorer/internal/auth"
	"github.com/sakif/volcano-explorer/internal/model"
	"github.com/sakif/volcano-explorer/internal/moderation"
	"github.com/sakif/volcano-explorer/internal/repository"
)

// MaxCommentLength is counted in characters, not bytes.
const MaxCommentLength = 255

// CommentService handles comments and their community moderation.
type CommentService struct {
	repo     repository.CommentRepository
	volcanos VolcanoLookup
	filter   *moderation.Filter
	logger   *slog.Logger
	now      clock
}

func NewCommentService(
	repo repository.CommentRepository,
	volcanos VolcanoLookup,
	filter *moderation.Filter,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		repo:     repo,
		volcanos: volcanos,
		filter:   filter,
		logger:   logger,
		now:      systemClock,
	}
}

// Verify applies the content rules: non-empty, at most 255 characters,
// nothing the profanity filter flags.
func (s *CommentService) Verify(text string) error {
	if strings.TrimSpace(text) == "" {
		return apperror.ValidationFailed("comment", "The comment is a required parameter")
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return apperror.ValidationFailed("comment", "Comment is too long (255 characters max)")
	}
	if s.filter.IsOffensive(text) {
		return apperror.ValidationFailed("comment", "Comment contains inappropriate or harmful content")
	}
	return nil
}

// Post adds a comment by the caller to a volcano.
func (s *CommentService) Post(ctx context.Context, volcanoID int64, text string, caller auth.Identity) (*model.Comment, error) {
	if err := validateVolcanoID(volcanoID); err != nil {
		return nil, err
	}
	if !caller.Authenticated() {
		return nil, apperror.Unauthorized(msgUnauthorized)
	}
	if err := s.Verify(text); err != nil {
		return nil, err
	}
	if err := s.volcanos.Exists(ctx, volcanoID); err != nil {
		return nil, err
	}

	c := &model.Comment{VolcanoID: volcanoID, AuthorEmail: caller.Email, Text: text}
	if err := s.repo.CreateComment(ctx, c); err != nil {
		return nil, apperror.Wrap("service/comment: post", err)
	}

	s.logger.Info("comment posted",
		slog.String("commentID", c.ID),
		slog.Int64("volcanoID", volcanoID),
		slog.String("email", caller.Email),
	)
	return c, nil
}

// Get returns one comment. A moderated comment is NotFound.
func (s *CommentService) Get(ctx context.Context, commentID string) (*model.Comment, error) {
	if commentID == "" {
		return nil, apperror.ValidationFailed("id", "Comment ID is a required parameter")
	}

	c, err := s.repo.GetComment(ctx, commentID)
	if err != nil {
		return nil, apperror.Wrap("service/comment: get", err)
	}
	return c, nil
}

// Update replaces the text of the caller's own comment.
func (s *CommentService) Update(ctx context.Context, commentID, text string, caller auth.Identity) (*model.Comment, error) {
	if commentID == "" {
		return nil, apperror.ValidationFailed("id", "Comment ID is a required parameter")
	}
	if !caller.Authenticated() {
		return nil, apperror.Unauthorized(msgUnauthorized)
	}
	if err := s.Verify(text); err != nil {
		return nil, err
	}

	c, err := s.repo.UpdateComment(ctx, commentID, caller.Email, text, s.now())
	if err != nil {
		return nil, apperror.Wrap("service/comment: update", err)
	}

	s.logger.Info("comment updated", slog.String("commentID", commentID))
	return c, nil
}

// Delete removes the caller's own comment.
func (s *CommentService) Delete(ctx context.Context, commentID string, caller auth.Identity) error {
	if commentID == "" {
		return apperror.ValidationFailed("id", "Comment ID is a required parameter")
	}
	if !caller.Authenticated() {
		return apperror.Unauthorized(msgUnauthorized)
	}

	if err := s.repo.DeleteComment(ctx, commentID, caller.Email); err != nil {
		return apperror.Wrap("service/comment: delete", err)
	}

	s.logger.Info("comment deleted", slog.String("commentID", commentID))
	return nil
}

// List returns the comments on a volcano, oldest first.
func (s *CommentService) List(ctx context.Context, volcanoID int64) ([]model.Comment, error) {
	if err := s.volcanos.Exists(ctx, volcanoID); err != nil {
		return nil, err
	}

	cs, err := s.repo.ListComments(ctx, volcanoID)
	if err != nil {
		return nil, apperror.Wrap("service/comment: list", err)
	}
	return cs, nil
}

// Report flags a comment as inappropriate. The report that brings the
// comment to moderation.ReportThreshold distinct reporters deletes it.
func (s *CommentService) Report(ctx context.Context, commentID string, caller auth.Identity) (model.ReportOutcome, error) {
	if commentID == "" {
		return model.ReportOutcome{}, apperror.ValidationFailed("id", "Comment ID is a required parameter")
	}
	if !caller.Authenticated() {
		return model.ReportOutcome{}, apperror.Unauthorized(msgUnauthorized)
	}

	out, err := s.repo.ReportComment(ctx, commentID, caller.Email, moderation.ReportThreshold)
	if err != nil {
		return model.ReportOutcome{}, apperror.Wrap("service/comment: report", err)
	}

	if out.Removed {
		s.logger.Info("comment removed by moderation",
			slog.String("commentID", commentID),
			slog.Int("reports", out.Reports),
		)
	}
	return out, nil
}
