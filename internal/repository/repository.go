// Package repository declares the storage contracts the services depend on.
//
// Implementations translate storage failures into apperror values:
// a missing row is apperror.ErrNotFound, a uniqueness violation is
// apperror.ErrConflict, anything unexpected is a wrapped driver error.
package repository

import (
	"context"
	"time"

	"github.com/sakif/volcano-explorer/internal/model"
)

// VolcanoRepository reads the reference dataset.
type VolcanoRepository interface {
	GetVolcano(ctx context.Context, id int64, fields model.VolcanoFields) (*model.Volcano, error)
	VolcanoExists(ctx context.Context, id int64) (bool, error)
	ListVolcanoes(ctx context.Context, filter model.VolcanoFilter, fields model.VolcanoFields) ([]model.Volcano, error)
	ListVolcanoesByIDs(ctx context.Context, ids []int64, fields model.VolcanoFields) ([]model.Volcano, error)
	RandomVolcanoes(ctx context.Context, n int, fields model.VolcanoFields) ([]model.Volcano, error)
	ListCountries(ctx context.Context) ([]string, error)
	// InsertVolcanoes loads reference rows in one transaction. Existing ids
	// are overwritten.
	InsertVolcanoes(ctx context.Context, volcanoes []model.Volcano) (int, error)
}

// UserRepository stores accounts and profiles.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, email string, update model.ProfileUpdate, at time.Time) (*model.User, error)
}

// FavoriteRepository stores (user, volcano) bookmarks.
type FavoriteRepository interface {
	AddFavorite(ctx context.Context, email string, volcanoID int64) error
	RemoveFavorite(ctx context.Context, email string, volcanoID int64) error
	ListFavorites(ctx context.Context, email string, fields model.VolcanoFields) ([]model.Volcano, error)
}

// CommentRepository stores comments and their moderation reports.
//
// Ownership checks happen inside the same transaction as the write: update
// and delete return apperror.ErrForbidden when editor is not the author.
type CommentRepository interface {
	CreateComment(ctx context.Context, c *model.Comment) error
	GetComment(ctx context.Context, id string) (*model.Comment, error)
	UpdateComment(ctx context.Context, id, editor, text string, at time.Time) (*model.Comment, error)
	DeleteComment(ctx context.Context, id, editor string) error
	ListComments(ctx context.Context, volcanoID int64) ([]model.Comment, error)
	ReportComment(ctx context.Context, id, reporter string, threshold int) (model.ReportOutcome, error)
}

// ImageRepository stores image links and their moderation reports.
type ImageRepository interface {
	CreateImage(ctx context.Context, img *model.Image) error
	DeleteImage(ctx context.Context, id, editor string) error
	ListImages(ctx context.Context, volcanoID int64) ([]model.Image, error)
	ReportImage(ctx context.Context, id, reporter string, threshold int) (model.ReportOutcome, error)
}

// GuessRepository stores one eruption-year guess per (user, volcano).
type GuessRepository interface {
	UpsertGuess(ctx context.Context, g model.EruptionGuess) error
	ListGuesses(ctx context.Context, volcanoID int64) ([]model.EruptionGuess, error)
}

// HealthChecker reports whether the store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
