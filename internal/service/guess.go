package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/sakif/volcano-explorer/internal/apperror"
	"github.com/sakif/volcano-explorer/internal/auth"
	"github.com/sakif/volcano-explorer/internal/model"
	"github.com/sakif/volcano-explorer/internal/repository"
)

// YearBounds limits accepted guesses to MinYear ≤ year ≤ current year + MaxYearsAhead.
type YearBounds struct {
	MinYear       int
	MaxYearsAhead int
}

// GuessService collects eruption-year guesses, one per user per volcano.
type GuessService struct {
	repo     repository.GuessRepository
	volcanos VolcanoLookup
	bounds   YearBounds
	logger   *slog.Logger
	now      clock
}

func NewGuessService(repo repository.GuessRepository, volcanos VolcanoLookup, bounds YearBounds, logger *slog.Logger) *GuessService {
	return &GuessService{
		repo:     repo,
		volcanos: volcanos,
		bounds:   bounds,
		logger:   logger,
		now:      systemClock,
	}
}

// SetGuess records the caller's guess, replacing any earlier one for the
// same volcano.
func (s *GuessService) SetGuess(ctx context.Context, volcanoID int64, year int, caller auth.Identity) error {
	if err := validateVolcanoID(volcanoID); err != nil {
		return err
	}
	if !caller.Authenticated() {
		return apperror.Unauthorized(msgUnauthorized)
	}

	now := s.now()
	maxYear := now.Year() + s.bounds.MaxYearsAhead
	if year < s.bounds.MinYear || year > maxYear {
		return apperror.ValidationFailed("year",
			fmt.Sprintf("Eruption year must be between %d and %d", s.bounds.MinYear, maxYear))
	}

	if err := s.volcanos.Exists(ctx, volcanoID); err != nil {
		return err
	}

	g := model.EruptionGuess{UserEmail: caller.Email, VolcanoID: volcanoID, Year: year, UpdatedAt: now}
	if err := s.repo.UpsertGuess(ctx, g); err != nil {
		return apperror.Wrap("service/guess: set", err)
	}

	s.logger.Info("eruption guess saved",
		slog.String("email", caller.Email),
		slog.Int64("volcanoID", volcanoID),
		slog.Int("year", year),
	)
	return nil
}

// Stats summarises every guess for a volcano. No guesses is all zeros.
func (s *GuessService) Stats(ctx context.Context, volcanoID int64) (model.GuessStats, error) {
	if err := s.volcanos.Exists(ctx, volcanoID); err != nil {
		return model.GuessStats{}, err
	}

	guesses, err := s.repo.ListGuesses(ctx, volcanoID)
	if err != nil {
		return model.GuessStats{}, apperror.Wrap("service/guess: stats", err)
	}

	years := make([]int, len(guesses))
	for i, g := range guesses {
		years[i] = g.Year
	}
	return computeStats(years), nil
}

// computeStats takes years in any order. For an even count the median is
// the lower of the two middle values.
func computeStats(years []int) model.GuessStats {
	if len(years) == 0 {
		return model.GuessStats{}
	}

	sorted := slices.Clone(years)
	slices.Sort(sorted)

	var sum int64
	for _, y := range sorted {
		sum += int64(y)
	}

	return model.GuessStats{
		Count:   len(sorted),
		Average: float64(sum) / float64(len(sorted)),
		Median:  sorted[(len(sorted)-1)/2],
		Min:     sorted[0],
		Max:     sorted[len(sorted)-1],
	}
}
