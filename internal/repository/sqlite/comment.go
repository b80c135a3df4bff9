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

var _ repository.CommentRepository = (*DB)(nil)

var commentColumns = []string{"id", "volcano_id", "author_email", "body", "created_at", "updated_at"}

// CreateComment inserts c, filling in its ID and timestamps.
//
// ID GENERATION WITH xid:
// 20 chars, URL-safe and sortable by creation time, e.g. "cv37rs3pp9olc6atsptg".
func (db *DB) CreateComment(ctx context.Context, c *model.Comment) error {
	c.ID = xid.New().String()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	b := db.sb.Insert("comments").
		Columns(commentColumns...).
		Values(c.ID, c.VolcanoID, c.AuthorEmail, c.Text, c.CreatedAt, c.UpdatedAt)

	if _, err := db.exec(ctx, b); err != nil {
		if isForeignKeyViolation(err) {
			return db.unknownReference(ctx, c.VolcanoID, c.AuthorEmail)
		}
		return fmt.Errorf("sqlite: inserting comment: %w", err)
	}
	return nil
}

// GetComment retrieves a single comment.
// Returns apperror.ErrNotFound if it does not exist (or was moderated away).
func (db *DB) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	query, args, err := db.sb.Select(commentColumns...).
		From("comments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building comment query: %w", err)
	}

	var rows []model.Comment
	if err := sqlscan.Select(ctx, db.q(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, apperror.NotFound("comment", id)
	}
	return &rows[0], nil
}

// UpdateComment replaces the text of a comment owned by editor.
func (db *DB) UpdateComment(ctx context.Context, id, editor, text string, at time.Time) (*model.Comment, error) {
	var updated *model.Comment

	err := db.RunInTx(ctx, func(ctx context.Context) error {
		if err := db.requireAuthor(ctx, commentReports, id, editor); err != nil {
			return err
		}

		b := db.sb.Update("comments").
			Set("body", text).
			Set("updated_at", at.UTC()).
			Where(squirrel.Eq{"id": id})
		if _, err := db.exec(ctx, b); err != nil {
			return fmt.Errorf("updating comment: %w", err)
		}

		var err error
		updated, err = db.GetComment(ctx, id)
		return err
	})
	if err != nil {
		return nil, apperror.Wrap("sqlite: updating comment "+id, err)
	}
	return updated, nil
}

// DeleteComment removes a comment owned by editor, with its reports.
func (db *DB) DeleteComment(ctx context.Context, id, editor string) error {
	err := db.RunInTx(ctx, func(ctx context.Context) error {
		if err := db.requireAuthor(ctx, commentReports, id, editor); err != nil {
			return err
		}
		if _, err := db.exec(ctx, db.sb.Delete("comments").Where(squirrel.Eq{"id": id})); err != nil {
			return fmt.Errorf("deleting comment: %w", err)
		}
		return nil
	})
	return apperror.Wrap("sqlite: deleting comment "+id, err)
}

// ListComments returns the comments on a volcano, oldest first.
func (db *DB) ListComments(ctx context.Context, volcanoID int64) ([]model.Comment, error) {
	query, args, err := db.sb.Select(commentColumns...).
		From("comments").
		Where(squirrel.Eq{"volcano_id": volcanoID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building comments query: %w", err)
	}

	comments := []model.Comment{}
	if err := sqlscan.Select(ctx, db.q(ctx), &comments, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: listing comments of volcano %d: %w", volcanoID, err)
	}
	return comments, nil
}

// ReportComment records a report by reporter and removes the comment once
// threshold distinct users have reported it.
func (db *DB) ReportComment(ctx context.Context, id, reporter string, threshold int) (model.ReportOutcome, error) {
	return db.report(ctx, commentReports, id, reporter, threshold)
}
