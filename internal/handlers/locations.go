package handlers

import (
	"context"
	"net/http"

	"github.com/prudhvinik1/locationtracker/internal/models"
	"github.com/prudhvinik1/locationtracker/internal/query"
	"github.com/prudhvinik1/locationtracker/internal/validation"
)

type LocationService interface {
	Create(ctx context.Context, in validation.LocationLogInput) (*models.LocationLog, error)
	Get(ctx context.Context, id int64) (*models.LocationLog, error)
	List(ctx context.Context, q query.LocationQuery) ([]*models.LocationLog, int64, error)
	LastLocation(ctx context.Context, deviceID int64) (*models.LocationLog, error)
}

type LocationHandler struct {
	service LocationService
	pages   PageSettings
}

func NewLocationHandler(service LocationService, pages PageSettings) *LocationHandler {
	return &LocationHandler{service: service, pages: pages}
}

// List handles GET /api/locations/?device={id}
func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.parse(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	params := r.URL.Query()
	q := query.LocationQuery{
		Filter:   query.ParseLocationFilter(params.Get("device")),
		Ordering: query.ParseOrdering(params.Get("ordering"), query.LocationOrderingFields, query.DefaultLocationOrdering),
		Page:     page,
	}

	logs, count, err := h.service.List(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newPage(r, page, count, logs))
}

// Create handles POST /api/locations/
func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, berr := decodeFields(w, r)
	if berr != nil {
		writeJSON(w, r, berr.status, berr.payload)
		return
	}

	log, err := h.service.Create(r.Context(), validation.DecodeLocationLog(fields))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, log)
}

// Get handles GET /api/locations/{id}/
func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, r, http.StatusNotFound, detail{"Not found."})
		return
	}

	log, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, log)
}

// LastLocation handles GET /api/devices/{id}/last-location/
func (h *LocationHandler) LastLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, r, http.StatusNotFound, detail{"Not found."})
		return
	}

	log, err := h.service.LastLocation(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, log)
}
