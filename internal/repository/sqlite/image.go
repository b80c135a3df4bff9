package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/rs/xid"

	"github.com/sakif/volcano-explorer/internal/apperror"
	"github.com/sakif/volcano-explorer/internal/model"
	"github.com/sakif/volcano-explorer/internal/repository"
)

var _ repository.ImageRepository = (*DB)(nil)

var imageColumns = []string{"id", "volcano_id", "author_email", "url", "created_at"}

func (db *DB) CreateImage(ctx context.Context, img *model.Image) error {
	img.ID = xid.New().String()
	img.CreatedAt = time.Now().UTC()

	b := db.sb.Insert("images").
		Columns(imageColumns...).
		Values(img.ID, img.VolcanoID, img.AuthorEmail, img.URL, img.CreatedAt)

	if _, err := db.exec(ctx, b); err != nil {
		if isForeignKeyViolation(err) {
			return db.unknownReference(ctx, img.VolcanoID, img.AuthorEmail)
		}
		return fmt.Errorf("sqlite: inserting image: %w", err)
	}
	return nil
}

func (db *DB) DeleteImage(ctx context.Context, id, editor string) error {
	err := db.RunInTx(ctx, func(ctx context.Context) error {
		if err := db.requireAuthor(ctx, imageReports, id, editor); err != nil {
			return err
		}
		if _, err := db.exec(ctx, db.sb.Delete("images").Where(squirrel.Eq{"id": id})); err != nil {
			return fmt.Errorf("deleting image: %w", err)
		}
		return nil
	})
	return apperror.Wrap("sqlite: deleting image "+id, err)
}

func (db *DB) ListImages(ctx context.Context, volcanoID int64) ([]model.Image, error) {
	query, args, err := db.sb.Select(imageColumns...).
		From("images").
		Where(squirrel.Eq{"volcano_id": volcanoID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building images query: %w", err)
	}

	images := []model.Image{}
	if err := sqlscan.Select(ctx, db.q(ctx), &images, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: listing images of volcano %d: %w", volcanoID, err)
	}
	return images, nil
}

func (db *DB) ReportImage(ctx context.Context, id, reporter string, threshold int) (model.ReportOutcome, error) {
	return db.report(ctx, imageReports, id, reporter, threshold)
}
