package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sakif/volcano-explorer/internal/auth"
	"github.com/sakif/volcano-explorer/internal/handler"
	"github.com/sakif/volcano-explorer/internal/model"
	"github.com/sakif/volcano-explorer/internal/service"
)

var (
	ada = auth.Identity{Email: "ada@example.com"}
	bob = auth.Identity{Email: "bob@example.com"}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// call routes one request through a chi router so URL params resolve,
// with caller already attached the way auth.Authenticate would.
func call(t *testing.T, method, pattern, target, body string, caller auth.Identity, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithIdentity(req.Context(), caller)))
		})
	})
	r.Method(method, pattern, h)

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), "body: %s", rr.Body.String())
	return v
}

// =========================================================================
// FAKES
// =========================================================================

type fakeVolcanoes struct {
	err error

	gotCountry, gotBand string
	gotIDs              []int64
	gotCount            int
	gotCaller           auth.Identity
}

func (f *fakeVolcanoes) GetByID(_ context.Context, id int64, caller auth.Identity) (*model.Volcano, error) {
	f.gotCaller = caller
	if f.err != nil {
		return nil, f.err
	}
	return &model.Volcano{ID: id, Name: "Etna", Country: "Italy"}, nil
}

func (f *fakeVolcanoes) ListByCountry(_ context.Context, country, band string, caller auth.Identity) ([]model.Volcano, error) {
	f.gotCountry, f.gotBand, f.gotCaller = country, band, caller
	if f.err != nil {
		return nil, f.err
	}
	return []model.Volcano{}, nil
}

func (f *fakeVolcanoes) ListByIDs(_ context.Context, ids []int64, _ auth.Identity) ([]model.Volcano, error) {
	f.gotIDs = ids
	if f.err != nil {
		return nil, f.err
	}
	return []model.Volcano{{ID: ids[0]}}, nil
}

func (f *fakeVolcanoes) SampleRandom(_ context.Context, count int, _ auth.Identity) ([]model.Volcano, error) {
	f.gotCount = count
	if f.err != nil {
		return nil, f.err
	}
	return []model.Volcano{{ID: 1}}, nil
}

func (f *fakeVolcanoes) ListCountries(context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []string{"Chile", "Japan"}, nil
}

type fakeAccounts struct {
	err       error
	gotFields map[string]any
}

func (f *fakeAccounts) Register(context.Context, string, string) error { return f.err }

func (f *fakeAccounts) Login(context.Context, string, string) (*service.LoginResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.LoginResult{Token: "signed.jwt.value", TokenType: "Bearer", ExpiresIn: 3600}, nil
}

func (f *fakeAccounts) GetProfile(_ context.Context, email string, _ auth.Identity) (*model.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Profile{Email: email}, nil
}

func (f *fakeAccounts) UpdateProfile(_ context.Context, email string, fields map[string]any, _ auth.Identity) (*model.Profile, error) {
	f.gotFields = fields
	if f.err != nil {
		return nil, f.err
	}
	return &model.Profile{Email: email}, nil
}

type fakeFavorites struct {
	err   error
	gotID int64
}

func (f *fakeFavorites) Add(_ context.Context, id int64, _ auth.Identity) error {
	f.gotID = id
	return f.err
}

func (f *fakeFavorites) List(context.Context, string, auth.Identity) ([]model.Volcano, error) {
	return []model.Volcano{}, f.err
}

func (f *fakeFavorites) Remove(_ context.Context, id int64, _ auth.Identity) error {
	f.gotID = id
	return f.err
}

type fakeComments struct {
	err     error
	report  model.ReportOutcome
	gotText string
	gotID   string
}

func (f *fakeComments) Post(_ context.Context, volcanoID int64, text string, caller auth.Identity) (*model.Comment, error) {
	f.gotText = text
	if f.err != nil {
		return nil, f.err
	}
	return &model.Comment{ID: "c1", VolcanoID: volcanoID, AuthorEmail: caller.Email, Text: text}, nil
}

func (f *fakeComments) Get(_ context.Context, id string) (*model.Comment, error) {
	f.gotID = id
	if f.err != nil {
		return nil, f.err
	}
	return &model.Comment{ID: id}, nil
}

func (f *fakeComments) Update(_ context.Context, id, text string, _ auth.Identity) (*model.Comment, error) {
	f.gotID, f.gotText = id, text
	if f.err != nil {
		return nil, f.err
	}
	return &model.Comment{ID: id, Text: text}, nil
}

func (f *fakeComments) Delete(_ context.Context, id string, _ auth.Identity) error {
	f.gotID = id
	return f.err
}

func (f *fakeComments) List(context.Context, int64) ([]model.Comment, error) {
	return []model.Comment{}, f.err
}

func (f *fakeComments) Report(_ context.Context, id string, _ auth.Identity) (model.ReportOutcome, error) {
	f.gotID = id
	return f.report, f.err
}

type fakeGuesses struct {
	err     error
	gotYear int
}

func (f *fakeGuesses) SetGuess(_ context.Context, _ int64, year int, _ auth.Identity) error {
	f.gotYear = year
	return f.err
}

func (f *fakeGuesses) Stats(context.Context, int64) (model.GuessStats, error) {
	return model.GuessStats{Count: 3, Average: 1990, Median: 1990, Min: 1980, Max: 2000}, f.err
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

var _ handler.Pinger = fakePinger{}
