package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"github.com/sakif/volcano-explorer/internal/apperror"
	"github.com/sakif/volcano-explorer/internal/model"
)

// reportable describes a moderated table and its report table.
type reportable struct {
	resource    string // "comment", used in messages
	table       string // comments
	reportTable string // comment_reports
	refColumn   string // comment_id
}

var (
	commentReports = reportable{resource: "comment", table: "comments", reportTable: "comment_reports", refColumn: "comment_id"}
	imageReports   = reportable{resource: "image", table: "images", reportTable: "image_reports", refColumn: "image_id"}
)

// MODERATION SEQUENCE:
// Everything below runs in ONE transaction, so two reports landing at the
// same time cannot both see "2 reports" and both skip (or both attempt) the
// delete:
//
//  1. read the author         → NotFound if the target is gone
//  2. reporter == author      → Forbidden
//  3. insert the report       → primary key (target, reporter); 0 rows → Conflict,
//                                unknown reporter → Unauthorized
//  4. count reports           → read after our own insert
//  5. count >= threshold      → delete the target; ON DELETE CASCADE drops its reports
func (db *DB) report(ctx context.Context, r reportable, id, reporter string, threshold int) (model.ReportOutcome, error) {
	var out model.ReportOutcome

	err := db.RunInTx(ctx, func(ctx context.Context) error {
		author, err := db.authorOf(ctx, r, id)
		if err != nil {
			return err
		}
		if author == reporter {
			return apperror.Forbidden(fmt.Sprintf("User cannot report their own %s", r.resource))
		}

		ins := db.sb.Insert(r.reportTable).
			Columns(r.refColumn, "reporter_email", "created_at").
			Values(id, reporter, time.Now().UTC()).
			Suffix(fmt.Sprintf("ON CONFLICT(%s, reporter_email) DO NOTHING", r.refColumn))

		n, err := db.exec(ctx, ins)
		if err != nil {
			if isForeignKeyViolation(err) {
				// The target was read above, so only the reporter can be missing.
				return accountNotFound(reporter)
			}
			return fmt.Errorf("inserting %s report: %w", r.resource, err)
		}
		if n == 0 {
			return apperror.Conflict(fmt.Sprintf("User has already reported this %s", r.resource))
		}

		query, args, err := db.sb.Select("COUNT(*)").
			From(r.reportTable).
			Where(squirrel.Eq{r.refColumn: id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("building report count: %w", err)
		}
		var counts []int
		if err := sqlscan.Select(ctx, db.q(ctx), &counts, query, args...); err != nil {
			return fmt.Errorf("counting %s reports: %w", r.resource, err)
		}
		out.Reports = counts[0]

		if out.Reports >= threshold {
			// Zero affected rows means it is already gone, which is fine.
			if _, err := db.exec(ctx, db.sb.Delete(r.table).Where(squirrel.Eq{"id": id})); err != nil {
				return fmt.Errorf("removing reported %s: %w", r.resource, err)
			}
			out.Removed = true
		}
		return nil
	})
	if err != nil {
		return model.ReportOutcome{}, apperror.Wrap("sqlite: reporting "+r.resource+" "+id, err)
	}
	return out, nil
}

// authorOf returns the author of a comment or image.
// Returns apperror.ErrNotFound if the row does not exist.
func (db *DB) authorOf(ctx context.Context, r reportable, id string) (string, error) {
	query, args, err := db.sb.Select("author_email").
		From(r.table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("building author query: %w", err)
	}

	var authors []string
	if err := sqlscan.Select(ctx, db.q(ctx), &authors, query, args...); err != nil {
		return "", fmt.Errorf("reading %s author: %w", r.resource, err)
	}
	if len(authors) == 0 {
		return "", apperror.NotFound(r.resource, id)
	}
	return authors[0], nil
}

// requireAuthor is the ownership gate shared by update and delete.
func (db *DB) requireAuthor(ctx context.Context, r reportable, id, editor string) error {
	author, err := db.authorOf(ctx, r, id)
	if err != nil {
		return err
	}
	if author != editor {
		return apperror.Forbidden(fmt.Sprintf("User is not the author of the %s", r.resource))
	}
	return nil
}
