// Command seed bulk-loads the volcano reference dataset from a CSV file.
//
//	seed -csv data/volcanoes.csv [-db data/volcanoes.db]
//
// The first row is a header; columns are matched by name, so their order
// does not matter. Re-running with the same file updates rows in place.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sakif/volcano-explorer/internal/config"
	"github.com/sakif/volcano-explorer/internal/model"
	"github.com/sakif/volcano-explorer/internal/repository/sqlite"
	"github.com/sakif/volcano-explorer/internal/server"
)

func main() {
	csvPath := flag.String("csv", "", "path to the volcano CSV file (required)")
	dbPath := flag.String("db", "", "SQLite database path (default: DATABASE_PATH or data/volcanoes.db)")
	flag.Parse()

	logger := server.NewLogger(config.LogConfig{Level: "info", Format: "text"}, os.Stderr)

	if err := run(context.Background(), *csvPath, *dbPath, logger); err != nil {
		logger.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, csvPath, dbPath string, logger *slog.Logger) error {
	if csvPath == "" {
		return errors.New("-csv is required")
	}
	if dbPath == "" {
		dbPath = os.Getenv("DATABASE_PATH")
	}
	if dbPath == "" {
		dbPath = "data/volcanoes.db"
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("opening csv: %w", err)
	}
	defer f.Close()

	volcanoes, err := parseVolcanoes(f)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	db, err := sqlite.New(ctx, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.InsertVolcanoes(ctx, volcanoes)
	if err != nil {
		return fmt.Errorf("inserting volcanoes: %w", err)
	}

	logger.Info("volcanoes seeded", slog.Int("rows", n), slog.String("database", dbPath))
	return nil
}

var requiredColumns = []string{"id", "name", "country"}

// parseVolcanoes reads every data row. Empty numeric cells read as zero and
// an empty last_eruption as unknown.
func parseVolcanoes(r io.Reader) ([]model.Volcano, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var out []model.Volcano
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row := csvRow{rec: rec, col: col}
		v := model.Volcano{
			ID:        row.integer("id"),
			Name:      row.str("name"),
			Country:   row.str("country"),
			Region:    row.str("region"),
			Subregion: row.str("subregion"),
			Summit:    row.integer("summit"),
			Elevation: row.integer("elevation"),
			Latitude:  row.decimal("latitude"),
			Longitude: row.decimal("longitude"),
			Population: &model.Population{
				Population5km:   row.integer("population_5km"),
				Population10km:  row.integer("population_10km"),
				Population30km:  row.integer("population_30km"),
				Population100km: row.integer("population_100km"),
			},
		}
		if le := row.str("last_eruption"); le != "" {
			v.LastEruption = &le
		}
		if row.err != nil {
			return nil, fmt.Errorf("line %d: %w", line, row.err)
		}
		if v.ID <= 0 {
			return nil, fmt.Errorf("line %d: id must be a positive integer", line)
		}
		out = append(out, v)
	}
	return out, nil
}

// csvRow reads named cells and keeps the first conversion error.
type csvRow struct {
	rec []string
	col map[string]int
	err error
}

func (r *csvRow) str(name string) string {
	i, ok := r.col[name]
	if !ok || i >= len(r.rec) {
		return ""
	}
	return strings.TrimSpace(r.rec[i])
}

func (r *csvRow) integer(name string) int64 {
	s := r.str(name)
	if s == "" || r.err != nil {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		r.err = fmt.Errorf("column %s: %w", name, err)
	}
	return n
}

func (r *csvRow) decimal(name string) float64 {
	s := r.str(name)
	if s == "" || r.err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.err = fmt.Errorf("column %s: %w", name, err)
	}
	return f
}
