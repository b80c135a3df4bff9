package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/sakif/volcano-explorer/internal/apperror"
	"github.com/sakif/volcano-explorer/internal/auth"
	"github.com/sakif/volcano-explorer/internal/model"
	"github.com/sakif/volcano-explorer/internal/moderation"
	"github.com/sakif/volcano-explorer/internal/repository/sqlite"
)

// =========================================================================
// FIXTURES
// =========================================================================

var (
	ada  = auth.Identity{Email: "ada@example.com"}
	bob  = auth.Identity{Email: "bob@example.com"}
	cara = auth.Identity{Email: "cara@example.com"}
	dan  = auth.Identity{Email: "dan@example.com"}
)

func strPtr(s string) *string { return &s }

var fixtureVolcanoes = []model.Volcano{
	{ID: 1, Name: "Merapi", Country: "Indonesia", Region: "Indonesia", Subregion: "Java",
		LastEruption: strPtr("2023 CE"), Summit: 2910, Elevation: 9547, Latitude: -7.54, Longitude: 110.446,
		Population: &model.Population{Population5km: 5000, Population10km: 60000, Population30km: 1000000, Population100km: 5000000}},
	{ID: 2, Name: "Krakatau", Country: "Indonesia", Region: "Indonesia", Subregion: "Sunda Strait",
		Summit: 155, Elevation: 509, Latitude: -6.102, Longitude: 105.423,
		Population: &model.Population{Population100km: 2000000}},
	{ID: 3, Name: "Etna", Country: "Italy", Region: "Mediterranean and Western Asia", Subregion: "Italy",
		LastEruption: strPtr("2024 CE"), Summit: 3357, Elevation: 11014, Latitude: 37.748, Longitude: 14.999,
		Population: &model.Population{Population5km: 100, Population10km: 7000, Population30km: 400000, Population100km: 2000000}},
}

// stack is every service wired to one throwaway database.
type stack struct {
	db        *sqlite.DB
	volcanoes *VolcanoService
	accounts  *AccountService
	favorites *FavoriteService
	comments  *CommentService
	images    *ImageService
	guesses   *GuessService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestStack returns services over a migrated, seeded SQLite file.
// ada, bob, cara and dan are registered with password "password1".
func newTestStack(t *testing.T) *stack {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.New(ctx, filepath.Join(t.TempDir(), "service.db"))
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.InsertVolcanoes(ctx, fixtureVolcanoes); err != nil {
		t.Fatalf("seeding volcanoes: %v", err)
	}

	tokens, err := auth.NewTokenService("service-test-secret-123", auth.DefaultIssuer, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	logger := discardLogger()
	volcanoes := NewVolcanoService(db, logger)
	s := &stack{
		db:        db,
		volcanoes: volcanoes,
		accounts:  NewAccountService(db, auth.NewPasswordServiceForTest(), tokens, logger),
		favorites: NewFavoriteService(db, volcanoes, logger),
		comments:  NewCommentService(db, volcanoes, moderation.NewFilter(), logger),
		images:    NewImageService(db, volcanoes, logger),
		guesses:   NewGuessService(db, volcanoes, YearBounds{MinYear: -10000, MaxYearsAhead: 1000}, logger),
	}

	for _, id := range []auth.Identity{ada, bob, cara, dan} {
		if err := s.accounts.Register(ctx, id.Email, "password1"); err != nil {
			t.Fatalf("Register(%s): %v", id.Email, err)
		}
	}
	return s
}

// assertErrIs fails unless errors.Is(err, target).
func assertErrIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}

// assertMessage checks the client-facing message of an *apperror.AppError.
func assertMessage(t *testing.T, err error, want string) {
	t.Helper()
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error %v is not an *apperror.AppError", err)
	}
	if appErr.Message != want {
		t.Errorf("message = %q, want %q", appErr.Message, want)
	}
}
