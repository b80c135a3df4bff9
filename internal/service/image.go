package service

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/sakif/volcano-explorer/internal/apperror"
	"github.com/sakif/volcano-explorer/internal/auth"
	"github.com/sakif/volcano-explorer/internal/model"
	"github.com/sakif/volcano-explorer/internal/moderation"
	"github.com/sakif/volcano-explorer/internal/repository"
)

// MaxImageURLLength bounds stored links.
const MaxImageURLLength = 2048

// ImageService handles user-submitted image links. Moderation works exactly
// like comments.
type ImageService struct {
	repo     repository.ImageRepository
	volcanos VolcanoLookup
	logger   *slog.Logger
}

func NewImageService(repo repository.ImageRepository, volcanos VolcanoLookup, logger *slog.Logger) *ImageService {
	return &ImageService{repo: repo, volcanos: volcanos, logger: logger}
}

func validateImageURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return apperror.ValidationFailed("imageUrl", "The image URL is a required parameter")
	}
	if len(raw) > MaxImageURLLength {
		return apperror.ValidationFailed("imageUrl", "Image URL is too long (2048 characters max)")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperror.ValidationFailed("imageUrl", "Image URL must be an absolute http or https URL")
	}
	return nil
}

// Post attaches an image link by the caller to a volcano.
func (s *ImageService) Post(ctx context.Context, volcanoID int64, imageURL string, caller auth.Identity) (*model.Image, error) {
	if err := validateVolcanoID(volcanoID); err != nil {
		return nil, err
	}
	if !caller.Authenticated() {
		return nil, apperror.Unauthorized(msgUnauthorized)
	}
	if err := validateImageURL(imageURL); err != nil {
		return nil, err
	}
	if err := s.volcanos.Exists(ctx, volcanoID); err != nil {
		return nil, err
	}

	img := &model.Image{VolcanoID: volcanoID, AuthorEmail: caller.Email, URL: strings.TrimSpace(imageURL)}
	if err := s.repo.CreateImage(ctx, img); err != nil {
		return nil, apperror.Wrap("service/image: post", err)
	}

	s.logger.Info("image posted", slog.String("imageID", img.ID), slog.Int64("volcanoID", volcanoID))
	return img, nil
}

func (s *ImageService) List(ctx context.Context, volcanoID int64) ([]model.Image, error) {
	if err := s.volcanos.Exists(ctx, volcanoID); err != nil {
		return nil, err
	}

	imgs, err := s.repo.ListImages(ctx, volcanoID)
	if err != nil {
		return nil, apperror.Wrap("service/image: list", err)
	}
	return imgs, nil
}

// Delete removes the caller's own image.
func (s *ImageService) Delete(ctx context.Context, imageID string, caller auth.Identity) error {
	if imageID == "" {
		return apperror.ValidationFailed("id", "Image ID is a required parameter")
	}
	if !caller.Authenticated() {
		return apperror.Unauthorized(msgUnauthorized)
	}

	if err := s.repo.DeleteImage(ctx, imageID, caller.Email); err != nil {
		return apperror.Wrap("service/image: delete", err)
	}
	return nil
}

func (s *ImageService) Report(ctx context.Context, imageID string, caller auth.Identity) (model.ReportOutcome, error) {
	if imageID == "" {
		return model.ReportOutcome{}, apperror.ValidationFailed("id", "Image ID is a required parameter")
	}
	if !caller.Authenticated() {
		return model.ReportOutcome{}, apperror.Unauthorized(msgUnauthorized)
	}

	out, err := s.repo.ReportImage(ctx, imageID, caller.Email, moderation.ReportThreshold)
	if err != nil {
		return model.ReportOutcome{}, apperror.Wrap("service/image: report", err)
	}

	if out.Removed {
		s.logger.Info("image removed by moderation", slog.String("imageID", imageID), slog.Int("reports", out.Reports))
	}
	return out, nil
}
