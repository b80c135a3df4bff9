package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/volcano-explorer/internal/config"
	"github.com/sakif/volcano-explorer/internal/model"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			IdleTimeout:     5 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "data", "server.db")},
		Auth: config.AuthConfig{
			JWTSecret:  "server-test-secret-0123456789",
			JWTIssuer:  "volcano-explorer",
			TokenTTL:   time.Hour,
			BcryptCost: 4,
		},
		Guess: config.GuessConfig{MinYear: -10000, MaxYearsAhead: 1000},
		Log:   config.LogConfig{Level: "error", Format: "text"},
		Owner: config.OwnerConfig{Name: "Sakif", StudentNumber: "n0000001"},
	}
}

// testClient drives the full router in-process.
type testClient struct {
	t *testing.T
	h http.Handler
}

func (c testClient) do(method, path, token string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	c.h.ServeHTTP(rr, req)
	return rr
}

func (c testClient) login(email string) string {
	c.t.Helper()

	rr := c.do(http.MethodPost, "/user/register", "", map[string]string{"email": email, "password": "password1"})
	require.Equal(c.t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = c.do(http.MethodPost, "/user/login", "", map[string]string{"email": email, "password": "password1"})
	require.Equal(c.t, http.StatusOK, rr.Code, rr.Body.String())

	var res struct {
		Token string `json:"token"`
	}
	require.NoError(c.t, json.Unmarshal(rr.Body.Bytes(), &res))
	return res.Token
}

func newTestServer(t *testing.T) (*Server, testClient) {
	t.Helper()
	ctx := context.Background()

	srv, err := New(ctx, testConfig(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	_, err = srv.db.InsertVolcanoes(ctx, []model.Volcano{{
		ID: 1, Name: "Etna", Country: "Italy", Region: "Mediterranean", Subregion: "Italy",
		Summit: 3357, Elevation: 11014, Latitude: 37.748, Longitude: 14.999,
		Population: &model.Population{Population5km: 100, Population10km: 7000, Population30km: 400000, Population100km: 2000000},
	}})
	require.NoError(t, err)

	return srv, testClient{t: t, h: srv.Handler()}
}

// =========================================================================
// END TO END
// =========================================================================

func TestServer_VolcanoVisibility(t *testing.T) {
	_, c := newTestServer(t)
	token := c.login("ada@example.com")

	rr := c.do(http.MethodGet, "/volcano/1", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "population_5km")

	rr = c.do(http.MethodGet, "/volcano/1", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"population_5km":100`)

	rr = c.do(http.MethodGet, "/volcano/2", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = c.do(http.MethodGet, "/countries", "", nil)
	assert.JSONEq(t, `["Italy"]`, rr.Body.String())
}

func TestServer_BadTokenIsRejectedBeforeHandlers(t *testing.T) {
	_, c := newTestServer(t)

	rr := c.do(http.MethodGet, "/volcano/1", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid JWT token")
}

func TestServer_CommentModeration(t *testing.T) {
	_, c := newTestServer(t)
	author := c.login("author@example.com")

	rr := c.do(http.MethodPost, "/volcano/1/comments", author, map[string]string{"comment": "Glowing tonight"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var comment model.Comment
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &comment))

	rr = c.do(http.MethodPost, "/comments/"+comment.ID+"/report", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = c.do(http.MethodPost, "/comments/"+comment.ID+"/report", author, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	for i := 1; i <= 3; i++ {
		reporter := c.login(fmt.Sprintf("reporter%d@example.com", i))
		rr = c.do(http.MethodPost, "/comments/"+comment.ID+"/report", reporter, nil)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}
	assert.Contains(t, rr.Body.String(), `"removed":true`)

	rr = c.do(http.MethodGet, "/comments/"+comment.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = c.do(http.MethodGet, "/volcano/1/comments", "", nil)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestServer_FavoritesAndGuesses(t *testing.T) {
	_, c := newTestServer(t)
	token := c.login("ada@example.com")

	rr := c.do(http.MethodPost, "/favorites", token, map[string]int{"volcanoID": 1})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = c.do(http.MethodPost, "/favorites", token, map[string]int{"volcanoID": 1})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = c.do(http.MethodGet, "/user/ada@example.com/favorites", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"Etna"`)

	for _, year := range []int{1980, 2000} {
		rr = c.do(http.MethodPost, "/volcano/1/eruptions", token, map[string]int{"guessYear": year})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}
	rr = c.do(http.MethodGet, "/volcano/1/eruptions", "", nil)
	assert.JSONEq(t, `{"count":1,"average":2000,"median":2000,"min":2000,"max":2000}`, rr.Body.String())
}

func TestServer_ProfileOwnership(t *testing.T) {
	_, c := newTestServer(t)
	ada := c.login("ada@example.com")
	bob := c.login("bob@example.com")

	profile := map[string]string{"firstName": "Ada", "lastName": "L", "dob": "1990-01-01", "address": "1 Vent St"}

	rr := c.do(http.MethodPut, "/user/ada@example.com/profile", bob, profile)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = c.do(http.MethodPut, "/user/ada@example.com/profile", ada, profile)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = c.do(http.MethodGet, "/user/ada@example.com/profile", bob, nil)
	assert.NotContains(t, rr.Body.String(), "1 Vent St")

	rr = c.do(http.MethodGet, "/user/ada@example.com/profile", ada, nil)
	assert.Contains(t, rr.Body.String(), "1 Vent St")
}

func TestServer_MetaRoutes(t *testing.T) {
	_, c := newTestServer(t)

	rr := c.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = c.do(http.MethodGet, "/me", "", nil)
	assert.JSONEq(t, `{"name":"Sakif","student_number":"n0000001"}`, rr.Body.String())
}

func TestServer_StartStopsOnCancel(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), "parseLevel(%q)", in)
	}
}
