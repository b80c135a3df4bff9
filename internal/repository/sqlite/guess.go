package sqlite

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"github.com/sakif/volcano-explorer/internal/model"
	"github.com/sakif/volcano-explorer/internal/repository"
)

var _ repository.GuessRepository = (*DB)(nil)

// UpsertGuess stores g, overwriting any earlier guess by the same user for
// the same volcano.
func (db *DB) UpsertGuess(ctx context.Context, g model.EruptionGuess) error {
	b := db.sb.Insert("eruption_guesses").
		Columns("user_email", "volcano_id", "guessed_year", "updated_at").
		Values(g.UserEmail, g.VolcanoID, g.Year, g.UpdatedAt.UTC()).
		Suffix(`ON CONFLICT(user_email, volcano_id) DO UPDATE SET
			guessed_year = excluded.guessed_year,
			updated_at = excluded.updated_at`)

	if _, err := db.exec(ctx, b); err != nil {
		if isForeignKeyViolation(err) {
			return db.unknownReference(ctx, g.VolcanoID, g.UserEmail)
		}
		return fmt.Errorf("sqlite: saving guess %s/%d: %w", g.UserEmail, g.VolcanoID, err)
	}
	return nil
}

// ListGuesses returns every guess for a volcano, ordered by year.
func (db *DB) ListGuesses(ctx context.Context, volcanoID int64) ([]model.EruptionGuess, error) {
	query, args, err := db.sb.Select("user_email", "volcano_id", "guessed_year", "updated_at").
		From("eruption_guesses").
		Where(squirrel.Eq{"volcano_id": volcanoID}).
		OrderBy("guessed_year ASC", "user_email ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building guesses query: %w", err)
	}

	guesses := []model.EruptionGuess{}
	if err := sqlscan.Select(ctx, db.q(ctx), &guesses, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: listing guesses of volcano %d: %w", volcanoID, err)
	}
	return guesses, nil
}
