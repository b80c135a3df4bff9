package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/sakif/volcano-explorer/internal/apperror"
	"github.com/sakif/volcano-explorer/internal/auth"
	"github.com/sakif/volcano-explorer/internal/model"
	"github.com/sakif/volcano-explorer/internal/service"
)

// VolcanoReader is what VolcanoHandler needs from the service layer.
// *service.VolcanoService satisfies it.
type VolcanoReader interface {
	GetByID(ctx context.Context, id int64, caller auth.Identity) (*model.Volcano, error)
	ListByCountry(ctx context.Context, country, band string, caller auth.Identity) ([]model.Volcano, error)
	ListByIDs(ctx context.Context, ids []int64, caller auth.Identity) ([]model.Volcano, error)
	SampleRandom(ctx context.Context, count int, caller auth.Identity) ([]model.Volcano, error)
	ListCountries(ctx context.Context) ([]string, error)
}

var _ VolcanoReader = (*service.VolcanoService)(nil)

// VolcanoHandler serves the read-only volcano dataset.
type VolcanoHandler struct {
	volcanoes VolcanoReader
	logger    *slog.Logger
}

func NewVolcanoHandler(volcanoes VolcanoReader, logger *slog.Logger) *VolcanoHandler {
	return &VolcanoHandler{volcanoes: volcanoes, logger: logger}
}

// HandleCountries lists every country with at least one volcano.
//
// HTTP: GET /countries
func (h *VolcanoHandler) HandleCountries(w http.ResponseWriter, r *http.Request) {
	if len(r.URL.Query()) > 0 {
		writeError(w, r, h.logger, apperror.ValidationFailed("query",
			"Invalid query parameters. Query parameters are not permitted."))
		return
	}

	countries, err := h.volcanoes.ListCountries(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, countries)
}

// HandleList lists the volcanoes of a country.
//
// HTTP: GET /volcanoes?country=Japan&populatedWithin=30km
//
// Only country and populatedWithin are accepted; any other query key is a 400.
func (h *VolcanoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	for key := range q {
		if key != "country" && key != "populatedWithin" {
			writeError(w, r, h.logger, apperror.ValidationFailed("query",
				"Invalid query parameters. Only country and populatedWithin are permitted."))
			return
		}
	}

	vs, err := h.volcanoes.ListByCountry(r.Context(), q.Get("country"), q.Get("populatedWithin"),
		auth.IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, vs)
}

// HandleRandom returns a random sample.
//
// HTTP: GET /volcanoes/random?amount=3 (amount defaults to 1)
func (h *VolcanoHandler) HandleRandom(w http.ResponseWriter, r *http.Request) {
	amount := service.DefaultSampleSize
	if raw := r.URL.Query().Get("amount"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, h.logger, apperror.ValidationFailed("amount",
				"Amount must be an integer between 1 and "+strconv.Itoa(service.MaxSampleSize)))
			return
		}
		amount = n
	}

	vs, err := h.volcanoes.SampleRandom(r.Context(), amount, auth.IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, vs)
}

// HandleListByIDs returns the listed volcanoes that exist.
//
// HTTP: GET /volcanoes/list?ids=1,2,3
func (h *VolcanoHandler) HandleListByIDs(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDList(r.URL.Query().Get("ids"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	vs, err := h.volcanoes.ListByIDs(r.Context(), ids, auth.IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, vs)
}

// parseIDList splits "1, 2,3" into ids. Empty segments are skipped.
func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, apperror.ValidationFailed("ids", "ids must be a comma separated list of integers")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// HandleGet returns one volcano.
//
// HTTP: GET /volcano/{id}
func (h *VolcanoHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := volcanoIDParam(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	v, err := h.volcanoes.GetByID(r.Context(), id, auth.IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
