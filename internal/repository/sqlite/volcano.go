package sqlite

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"github.com/sakif/volcano-explorer/internal/apperror"
	"github.com/sakif/volcano-explorer/internal/model"
	"github.com/sakif/volcano-explorer/internal/repository"
)

var _ repository.VolcanoRepository = (*DB)(nil)

var (
	restrictedVolcanoColumns = []string{
		"id", "name", "country", "region", "subregion", "last_eruption",
		"summit", "elevation", "latitude", "longitude",
	}
	allVolcanoColumns = append(append([]string{}, restrictedVolcanoColumns...),
		"population_5km", "population_10km", "population_30km", "population_100km",
	)
)

// volcanoRow is the scan target for every volcano query. Restricted reads
// leave the population columns at zero and toModel drops them.
type volcanoRow struct {
	ID              int64   `db:"id"`
	Name            string  `db:"name"`
	Country         string  `db:"country"`
	Region          string  `db:"region"`
	Subregion       string  `db:"subregion"`
	LastEruption    *string `db:"last_eruption"`
	Summit          int64   `db:"summit"`
	Elevation       int64   `db:"elevation"`
	Latitude        float64 `db:"latitude"`
	Longitude       float64 `db:"longitude"`
	Population5km   int64   `db:"population_5km"`
	Population10km  int64   `db:"population_10km"`
	Population30km  int64   `db:"population_30km"`
	Population100km int64   `db:"population_100km"`
}

func (r volcanoRow) toModel(fields model.VolcanoFields) model.Volcano {
	v := model.Volcano{
		ID:           r.ID,
		Name:         r.Name,
		Country:      r.Country,
		Region:       r.Region,
		Subregion:    r.Subregion,
		LastEruption: r.LastEruption,
		Summit:       r.Summit,
		Elevation:    r.Elevation,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
	}
	if fields == model.AllFields {
		v.Population = &model.Population{
			Population5km:   r.Population5km,
			Population10km:  r.Population10km,
			Population30km:  r.Population30km,
			Population100km: r.Population100km,
		}
	}
	return v
}

func volcanoColumns(fields model.VolcanoFields) []string {
	if fields == model.AllFields {
		return allVolcanoColumns
	}
	return restrictedVolcanoColumns
}

// selectVolcanoes runs b and converts every row. It never returns nil.
func (db *DB) selectVolcanoes(ctx context.Context, b squirrel.SelectBuilder, fields model.VolcanoFields) ([]model.Volcano, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	var rows []volcanoRow
	if err := sqlscan.Select(ctx, db.q(ctx), &rows, query, args...); err != nil {
		return nil, err
	}

	out := make([]model.Volcano, len(rows))
	for i, r := range rows {
		out[i] = r.toModel(fields)
	}
	return out, nil
}

func volcanoNotFound(id int64) *apperror.AppError {
	return apperror.NotFoundf("Volcano with ID %d not found", id)
}

// GetVolcano retrieves a single volcano by id.
// Returns apperror.ErrNotFound if no volcano has that id.
func (db *DB) GetVolcano(ctx context.Context, id int64, fields model.VolcanoFields) (*model.Volcano, error) {
	b := db.sb.Select(volcanoColumns(fields)...).
		From("volcanoes").
		Where(squirrel.Eq{"id": id})

	vs, err := db.selectVolcanoes(ctx, b, fields)
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting volcano %d: %w", id, err)
	}
	if len(vs) == 0 {
		return nil, volcanoNotFound(id)
	}
	return &vs[0], nil
}

// VolcanoExists reports whether a volcano with this id is present.
func (db *DB) VolcanoExists(ctx context.Context, id int64) (bool, error) {
	query, args, err := db.sb.Select("1").From("volcanoes").Where(squirrel.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return false, fmt.Errorf("sqlite: building exists query: %w", err)
	}

	var hits []int
	if err := sqlscan.Select(ctx, db.q(ctx), &hits, query, args...); err != nil {
		return false, fmt.Errorf("sqlite: checking volcano %d: %w", id, err)
	}
	return len(hits) > 0, nil
}

// ListVolcanoes returns every volcano in filter.Country, ordered by name.
// With a PopulatedWithin band only volcanoes with a non-zero count for that
// band are kept.
func (db *DB) ListVolcanoes(ctx context.Context, filter model.VolcanoFilter, fields model.VolcanoFields) ([]model.Volcano, error) {
	b := db.sb.Select(volcanoColumns(fields)...).
		From("volcanoes").
		Where(squirrel.Eq{"country": filter.Country}).
		OrderBy("name ASC", "id ASC")

	if filter.PopulatedWithin != "" {
		b = b.Where(squirrel.Gt{filter.PopulatedWithin.Column(): 0})
	}

	vs, err := db.selectVolcanoes(ctx, b, fields)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing volcanoes for %q: %w", filter.Country, err)
	}
	return vs, nil
}

// ListVolcanoesByIDs returns the subset of ids that exist, ordered by id.
func (db *DB) ListVolcanoesByIDs(ctx context.Context, ids []int64, fields model.VolcanoFields) ([]model.Volcano, error) {
	if len(ids) == 0 {
		return []model.Volcano{}, nil
	}

	// squirrel.Eq with a slice renders "id IN (?,?,...)".
	b := db.sb.Select(volcanoColumns(fields)...).
		From("volcanoes").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id ASC")

	vs, err := db.selectVolcanoes(ctx, b, fields)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing volcanoes by ids: %w", err)
	}
	return vs, nil
}

// RandomVolcanoes returns up to n distinct volcanoes in random order.
func (db *DB) RandomVolcanoes(ctx context.Context, n int, fields model.VolcanoFields) ([]model.Volcano, error) {
	b := db.sb.Select(volcanoColumns(fields)...).
		From("volcanoes").
		OrderBy("RANDOM()").
		Limit(uint64(n))

	vs, err := db.selectVolcanoes(ctx, b, fields)
	if err != nil {
		return nil, fmt.Errorf("sqlite: sampling %d volcanoes: %w", n, err)
	}
	return vs, nil
}

// ListCountries returns every distinct country, ascending.
func (db *DB) ListCountries(ctx context.Context) ([]string, error) {
	query, args, err := db.sb.Select("country").
		Distinct().
		From("volcanoes").
		Where(squirrel.NotEq{"country": ""}).
		OrderBy("country ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building countries query: %w", err)
	}

	countries := []string{}
	if err := sqlscan.Select(ctx, db.q(ctx), &countries, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: listing countries: %w", err)
	}
	return countries, nil
}

// InsertVolcanoes upserts reference rows in a single transaction.
// Population counts are taken from v.Population; a nil Population stores zeros.
func (db *DB) InsertVolcanoes(ctx context.Context, volcanoes []model.Volcano) (int, error) {
	err := db.RunInTx(ctx, func(ctx context.Context) error {
		for _, v := range volcanoes {
			pop := model.Population{}
			if v.Population != nil {
				pop = *v.Population
			}

			b := db.sb.Insert("volcanoes").
				Columns(allVolcanoColumns...).
				Values(
					v.ID, v.Name, v.Country, v.Region, v.Subregion, v.LastEruption,
					v.Summit, v.Elevation, v.Latitude, v.Longitude,
					pop.Population5km, pop.Population10km, pop.Population30km, pop.Population100km,
				).
				Suffix(`ON CONFLICT(id) DO UPDATE SET
					name = excluded.name, country = excluded.country,
					region = excluded.region, subregion = excluded.subregion,
					last_eruption = excluded.last_eruption, summit = excluded.summit,
					elevation = excluded.elevation, latitude = excluded.latitude,
					longitude = excluded.longitude,
					population_5km = excluded.population_5km,
					population_10km = excluded.population_10km,
					population_30km = excluded.population_30km,
					population_100km = excluded.population_100km`)

			if _, err := db.exec(ctx, b); err != nil {
				return fmt.Errorf("inserting volcano %d: %w", v.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("sqlite: loading volcanoes: %w", err)
	}
	return len(volcanoes), nil
}
