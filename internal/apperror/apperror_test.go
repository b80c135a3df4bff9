package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	dbErr := errors.New("disk I/O error")

	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("volcano", "42"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("comment", "The comment is a required parameter"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("user already exists"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("Unauthorized"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "Internal wraps ErrInternal",
			err:       Internal(dbErr),
			target:    ErrInternal,
			wantMatch: true,
		},
		{
			name:      "Internal keeps its cause reachable",
			err:       Internal(dbErr),
			target:    dbErr,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("volcano", "42"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Forbidden does NOT match ErrUnauthorized",
			err:       Forbidden("User is not the author of the comment"),
			target:    ErrUnauthorized,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("volcano", "42"),
			wantMessage: "volcano not found with id 42",
		},
		{
			name:        "NotFoundf formats its message",
			err:         NotFoundf("no volcanoes found for ids %v", []int64{1, 2}),
			wantMessage: "no volcanoes found for ids [1 2]",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("comment", "Comment is too long (255 characters max)"),
			wantMessage: "Comment is too long (255 characters max)",
		},
		{
			name:        "Conflict uses custom message",
			err:         Conflict("user already exists"),
			wantMessage: "user already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestInternal_MessageIsGeneric(t *testing.T) {
	err := Internal(errors.New("sqlite: no such table: volcanoes"))

	if err.Message != InternalMessage {
		t.Errorf("Message = %q, want %q", err.Message, InternalMessage)
	}
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		if err := Wrap("op", nil); err != nil {
			t.Errorf("Wrap(nil) = %v, want nil", err)
		}
	})

	t.Run("typed errors pass through", func(t *testing.T) {
		original := fmt.Errorf("lookup: %w", NotFound("volcano", "7"))
		got := Wrap("getting volcano", original)
		if got != original {
			t.Errorf("Wrap() = %v, want the original error", got)
		}
	})

	t.Run("untyped errors become internal", func(t *testing.T) {
		cause := errors.New("database is locked")
		got := Wrap("getting volcano", cause)
		if !errors.Is(got, ErrInternal) {
			t.Fatalf("Wrap() = %v, want ErrInternal", got)
		}
		if !errors.Is(got, cause) {
			t.Errorf("Wrap() lost the cause")
		}
	})
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("dob", "Invalid input: dob must be a real date in format YYYY-MM-DD.")

	if err.Field != "dob" {
		t.Errorf("Field = %q, want %q", err.Field, "dob")
	}
}
