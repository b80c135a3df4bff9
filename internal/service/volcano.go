package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/volcano-explorer/internal/apperror"
	"github.com/sakif/volcano-explorer/internal/auth"
	"github.com/sakif/volcano-explorer/internal/model"
	"github.com/sakif/volcano-explorer/internal/repository"
)

// Sampling limits for SampleRandom.
const (
	DefaultSampleSize = 1
	MaxSampleSize     = 10
)

// VolcanoService serves the read-only volcano dataset. Population bands are
// only returned to authenticated callers.
type VolcanoService struct {
	repo   repository.VolcanoRepository
	logger *slog.Logger
}

func NewVolcanoService(repo repository.VolcanoRepository, logger *slog.Logger) *VolcanoService {
	return &VolcanoService{repo: repo, logger: logger}
}

func validateVolcanoID(id int64) error {
	if id <= 0 {
		return apperror.ValidationFailed("id", "Volcano ID must be a positive integer")
	}
	return nil
}

// GetByID returns one volcano, restricted or full depending on caller.
func (s *VolcanoService) GetByID(ctx context.Context, id int64, caller auth.Identity) (*model.Volcano, error) {
	if err := validateVolcanoID(id); err != nil {
		return nil, err
	}

	v, err := s.repo.GetVolcano(ctx, id, fieldsFor(caller))
	if err != nil {
		return nil, apperror.Wrap("service/volcano: get", err)
	}
	return v, nil
}

// Exists returns nil if the volcano exists and apperror.ErrNotFound if not.
func (s *VolcanoService) Exists(ctx context.Context, id int64) error {
	if err := validateVolcanoID(id); err != nil {
		return err
	}

	ok, err := s.repo.VolcanoExists(ctx, id)
	if err != nil {
		return apperror.Wrap("service/volcano: exists", err)
	}
	if !ok {
		return apperror.NotFoundf("Volcano with ID %d not found", id)
	}
	return nil
}

// ListByCountry returns the volcanoes of a country, optionally only those
// with people living within band (one of 5km, 10km, 30km, 100km).
func (s *VolcanoService) ListByCountry(ctx context.Context, country, band string, caller auth.Identity) ([]model.Volcano, error) {
	country = strings.TrimSpace(country)
	if country == "" {
		return nil, apperror.ValidationFailed("country", "Country is a required query parameter.")
	}

	filter := model.VolcanoFilter{Country: country}
	if band != "" {
		b, ok := model.ParsePopulationBand(band)
		if !ok {
			return nil, apperror.ValidationFailed("populatedWithin", invalidBandMessage())
		}
		filter.PopulatedWithin = b
	}

	vs, err := s.repo.ListVolcanoes(ctx, filter, fieldsFor(caller))
	if err != nil {
		return nil, apperror.Wrap("service/volcano: list by country", err)
	}
	return vs, nil
}

func invalidBandMessage() string {
	names := make([]string, len(model.PopulationBands))
	for i, b := range model.PopulationBands {
		names[i] = string(b)
	}
	return "Invalid value for populatedWithin. Allowed values: " + strings.Join(names, ", ")
}

// ListByIDs returns the volcanoes among ids that exist. Duplicate ids are
// collapsed. No ids, or no matches, is apperror.ErrNotFound.
func (s *VolcanoService) ListByIDs(ctx context.Context, ids []int64, caller auth.Identity) ([]model.Volcano, error) {
	seen := make(map[int64]bool, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if err := validateVolcanoID(id); err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	if len(unique) == 0 {
		return nil, apperror.NotFoundf("No volcanoes found for the given IDs")
	}

	vs, err := s.repo.ListVolcanoesByIDs(ctx, unique, fieldsFor(caller))
	if err != nil {
		return nil, apperror.Wrap("service/volcano: list by ids", err)
	}
	if len(vs) == 0 {
		return nil, apperror.NotFoundf("No volcanoes found for the given IDs")
	}
	return vs, nil
}

// SampleRandom returns count distinct volcanoes chosen at random. A corpus
// smaller than count yields every volcano; an empty corpus is NotFound.
func (s *VolcanoService) SampleRandom(ctx context.Context, count int, caller auth.Identity) ([]model.Volcano, error) {
	if count < 1 || count > MaxSampleSize {
		return nil, apperror.ValidationFailed("amount",
			fmt.Sprintf("Amount must be an integer between 1 and %d", MaxSampleSize))
	}

	vs, err := s.repo.RandomVolcanoes(ctx, count, fieldsFor(caller))
	if err != nil {
		return nil, apperror.Wrap("service/volcano: sample", err)
	}
	if len(vs) == 0 {
		return nil, apperror.NotFoundf("No volcanoes available")
	}
	return vs, nil
}

// ListCountries returns every country with at least one volcano, ascending.
func (s *VolcanoService) ListCountries(ctx context.Context) ([]string, error) {
	countries, err := s.repo.ListCountries(ctx)
	if err != nil {
		return nil, apperror.Wrap("service/volcano: countries", err)
	}
	return countries, nil
}
