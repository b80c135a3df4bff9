package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/sakif/volcano-explorer/internal/apperror"
	"github.com/sakif/volcano-explorer/internal/model"
	"github.com/sakif/volcano-explorer/internal/repository"
)

var _ repository.FavoriteRepository = (*DB)(nil)

// AddFavorite records (email, volcanoID). A repeat is apperror.ErrConflict;
// an unknown volcano is apperror.ErrNotFound and an email with no account
// is apperror.ErrUnauthorized.
func (db *DB) AddFavorite(ctx context.Context, email string, volcanoID int64) error {
	b := db.sb.Insert("favorites").
		Columns("user_email", "volcano_id", "created_at").
		Values(email, volcanoID, time.Now().UTC()).
		Suffix("ON CONFLICT(user_email, volcano_id) DO NOTHING")

	n, err := db.exec(ctx, b)
	if err != nil {
		if isForeignKeyViolation(err) {
			return db.unknownReference(ctx, volcanoID, email)
		}
		return fmt.Errorf("sqlite: adding favorite %s/%d: %w", email, volcanoID, err)
	}
	if n == 0 {
		return apperror.Conflict(fmt.Sprintf("Volcano with ID %d is already saved by user %s", volcanoID, email))
	}
	return nil
}

// RemoveFavorite deletes (email, volcanoID).
// Returns apperror.ErrNotFound if that pair was never saved.
func (db *DB) RemoveFavorite(ctx context.Context, email string, volcanoID int64) error {
	b := db.sb.Delete("favorites").
		Where(squirrel.Eq{"user_email": email, "volcano_id": volcanoID})

	n, err := db.exec(ctx, b)
	if err != nil {
		return fmt.Errorf("sqlite: removing favorite %s/%d: %w", email, volcanoID, err)
	}
	if n == 0 {
		return apperror.NotFoundf("Volcano with ID %d not saved by user %s", volcanoID, email)
	}
	return nil
}

// ListFavorites returns the favorited volcanoes of email, oldest favorite first.
func (db *DB) ListFavorites(ctx context.Context, email string, fields model.VolcanoFields) ([]model.Volcano, error) {
	cols := make([]string, len(volcanoColumns(fields)))
	for i, c := range volcanoColumns(fields) {
		cols[i] = "v." + c + " AS " + c
	}

	b := db.sb.Select(cols...).
		From("favorites f").
		Join("volcanoes v ON v.id = f.volcano_id").
		Where(squirrel.Eq{"f.user_email": email}).
		OrderBy("f.created_at ASC", "v.id ASC")

	vs, err := db.selectVolcanoes(ctx, b, fields)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing favorites of %s: %w", email, err)
	}
	return vs, nil
}
