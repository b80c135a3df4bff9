package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"github.com/sakif/volcano-explorer/internal/apperror"
	"github.com/sakif/volcano-explorer/internal/model"
	"github.com/sakif/volcano-explorer/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

var userColumns = []string{
	"email", "password_hash", "first_name", "last_name", "dob", "address", "created_at", "updated_at",
}

type userRow struct {
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FirstName    *string   `db:"first_name"`
	LastName     *string   `db:"last_name"`
	DateOfBirth  *string   `db:"dob"`
	Address      *string   `db:"address"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r userRow) toModel() *model.User {
	return &model.User{
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		DateOfBirth:  r.DateOfBirth,
		Address:      r.Address,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// CreateUser inserts a new account. The email primary key makes the
// duplicate check atomic: a second insert affects no rows and becomes
// apperror.ErrConflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	b := db.sb.Insert("users").
		Columns(userColumns...).
		Values(user.Email, user.PasswordHash, user.FirstName, user.LastName,
			user.DateOfBirth, user.Address, user.CreatedAt, user.UpdatedAt).
		Suffix("ON CONFLICT(email) DO NOTHING")

	n, err := db.exec(ctx, b)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Email, err)
	}
	if n == 0 {
		return apperror.Conflict("User already exists")
	}
	return nil
}

// accountNotFound is returned when a valid token names an email that has
// no users row, e.g. after the database was reseeded.
func accountNotFound(email string) *apperror.AppError {
	return apperror.Unauthorized(fmt.Sprintf("No account exists for %s", email))
}

// GetUser retrieves an account by email, case-sensitively.
// Returns apperror.ErrNotFound if no user exists with that email.
func (db *DB) GetUser(ctx context.Context, email string) (*model.User, error) {
	query, args, err := db.sb.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building user query: %w", err)
	}

	var rows []userRow
	if err := sqlscan.Select(ctx, db.q(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: getting user %s: %w", email, err)
	}
	if len(rows) == 0 {
		return nil, apperror.NotFound("user", email)
	}
	return rows[0].toModel(), nil
}

// UpdateProfile overwrites the four profile fields and returns the stored
// account. Returns apperror.ErrNotFound if the account does not exist.
func (db *DB) UpdateProfile(ctx context.Context, email string, u model.ProfileUpdate, at time.Time) (*model.User, error) {
	var user *model.User

	err := db.RunInTx(ctx, func(ctx context.Context) error {
		b := db.sb.Update("users").
			Set("first_name", u.FirstName).
			Set("last_name", u.LastName).
			Set("dob", u.DateOfBirth).
			Set("address", u.Address).
			Set("updated_at", at.UTC()).
			Where(squirrel.Eq{"email": email})

		n, err := db.exec(ctx, b)
		if err != nil {
			return fmt.Errorf("sqlite: updating profile %s: %w", email, err)
		}
		if n == 0 {
			return apperror.NotFound("user", email)
		}

		user, err = db.GetUser(ctx, email)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
