package service

import (
	"context"
	"log/slog"

	"github.com/sakif/volcano-explorer/internal/apperror"
	"github.com/sakif/volcano-explorer/internal/auth"
	"github.com/sakif/volcano-explorer/internal/model"
	"github.com/sakif/volcano-explorer/internal/repository"
)

// FavoriteService manages per-user volcano bookmarks.
type FavoriteService struct {
	repo     repository.FavoriteRepository
	volcanos VolcanoLookup
	logger   *slog.Logger
}

func NewFavoriteService(repo repository.FavoriteRepository, volcanos VolcanoLookup, logger *slog.Logger) *FavoriteService {
	return &FavoriteService{repo: repo, volcanos: volcanos, logger: logger}
}

// Add saves volcanoID for the caller. Saving the same volcano twice is
// apperror.ErrConflict.
func (s *FavoriteService) Add(ctx context.Context, volcanoID int64, caller auth.Identity) error {
	if err := validateVolcanoID(volcanoID); err != nil {
		return err
	}
	if !caller.Authenticated() {
		return apperror.Unauthorized(msgUnauthorized)
	}
	if err := s.volcanos.Exists(ctx, volcanoID); err != nil {
		return err
	}

	if err := s.repo.AddFavorite(ctx, caller.Email, volcanoID); err != nil {
		return apperror.Wrap("service/favorite: add", err)
	}

	s.logger.Info("favorite added", slog.String("email", caller.Email), slog.Int64("volcanoID", volcanoID))
	return nil
}

// List returns the volcanoes email has saved. Field visibility follows the
// caller, not the owner of the list. No favorites is an empty slice.
func (s *FavoriteService) List(ctx context.Context, email string, caller auth.Identity) ([]model.Volcano, error) {
	if email == "" {
		return nil, apperror.ValidationFailed("email", "User email is a required parameter")
	}

	vs, err := s.repo.ListFavorites(ctx, email, fieldsFor(caller))
	if err != nil {
		return nil, apperror.Wrap("service/favorite: list", err)
	}
	return vs, nil
}

// Remove deletes the caller's bookmark. No such bookmark is NotFound.
func (s *FavoriteService) Remove(ctx context.Context, volcanoID int64, caller auth.Identity) error {
	if err := validateVolcanoID(volcanoID); err != nil {
		return err
	}
	if !caller.Authenticated() {
		return apperror.Unauthorized(msgUnauthorized)
	}

	if err := s.repo.RemoveFavorite(ctx, caller.Email, volcanoID); err != nil {
		return apperror.Wrap("service/favorite: remove", err)
	}

	s.logger.Info("favorite removed", slog.String("email", caller.Email), slog.Int64("volcanoID", volcanoID))
	return nil
}
