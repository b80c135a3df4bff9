package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/volcano-explorer/internal/model"
	"github.com/sakif/volcano-explorer/internal/repository/sqlite"
)

const sampleCSV = `id,name,country,region,subregion,last_eruption,summit,elevation,latitude,longitude,population_5km,population_10km,population_30km,population_100km
1,Etna,Italy,Mediterranean,Italy,2024 CE,3357,11014,37.748,14.999,100,7000,400000,2000000
2,"Taranaki, Mount",New Zealand,New Zealand to Fiji,North Island,,2518,8261,-39.3,174.07,,,,
`

func TestParseVolcanoes(t *testing.T) {
	vs, err := parseVolcanoes(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, vs, 2)

	assert.Equal(t, "Etna", vs[0].Name)
	require.NotNil(t, vs[0].LastEruption)
	assert.Equal(t, "2024 CE", *vs[0].LastEruption)
	assert.Equal(t, int64(400000), vs[0].Population30km)
	assert.InDelta(t, 37.748, vs[0].Latitude, 1e-9)

	assert.Equal(t, "Taranaki, Mount", vs[1].Name)
	assert.Nil(t, vs[1].LastEruption)
	assert.Equal(t, model.Population{}, *vs[1].Population)
}

func TestParseVolcanoes_Errors(t *testing.T) {
	tests := map[string]string{
		"missing column": "id,name\n1,Etna\n",
		"bad number":     "id,name,country,summit\n1,Etna,Italy,tall\n",
		"bad id":         "id,name,country\n0,Etna,Italy\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseVolcanoes(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "volcanoes.csv")
	dbPath := filepath.Join(dir, "db", "volcanoes.db")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0o644))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	require.NoError(t, run(ctx, csvPath, dbPath, logger))
	// Idempotent.
	require.NoError(t, run(ctx, csvPath, dbPath, logger))

	db, err := sqlite.New(ctx, dbPath)
	require.NoError(t, err)
	defer db.Close()

	countries, err := db.ListCountries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Italy", "New Zealand"}, countries)

	assert.Error(t, run(ctx, "", dbPath, logger))
}
