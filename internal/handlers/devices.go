package handlers

import (
	"context"
	"net/http"

	"github.com/prudhvinik1/locationtracker/internal/models"
	"github.com/prudhvinik1/locationtracker/internal/query"
	"github.com/prudhvinik1/locationtracker/internal/validation"
)

type DeviceService interface {
	Create(ctx context.Context, in validation.DeviceInput) (*models.Device, error)
	Get(ctx context.Context, id int64) (*models.Device, error)
	List(ctx context.Context, q query.DeviceQuery) ([]*models.Device, int64, error)
	Update(ctx context.Context, id int64, in validation.DeviceInput, partial bool) (*models.Device, error)
	Delete(ctx context.Context, id int64) error
}

type DeviceHandler struct {
	service DeviceService
	pages   PageSettings
}

func NewDeviceHandler(service DeviceService, pages PageSettings) *DeviceHandler {
	return &DeviceHandler{service: service, pages: pages}
}

// List handles GET /api/devices/
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.parse(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	params := r.URL.Query()
	q := query.DeviceQuery{
		Search:   query.SearchTerms(params.Get("search")),
		Ordering: query.ParseOrdering(params.Get("ordering"), query.DeviceOrderingFields, query.DefaultDeviceOrdering),
		Page:     page,
	}

	devices, count, err := h.service.List(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newPage(r, page, count, devices))
}

// Create handles POST /api/devices/
func (h *DeviceHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, berr := decodeFields(w, r)
	if berr != nil {
		writeJSON(w, r, berr.status, berr.payload)
		return
	}

	device, err := h.service.Create(r.Context(), validation.DecodeDevice(fields))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, device)
}

// Get handles GET /api/devices/{id}/
func (h *DeviceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, r, http.StatusNotFound, detail{"Not found."})
		return
	}

	device, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, device)
}

// Update handles PUT /api/devices/{id}/
func (h *DeviceHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

// PartialUpdate handles PATCH /api/devices/{id}/
func (h *DeviceHandler) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *DeviceHandler) update(w http.ResponseWriter, r *http.Request, partial bool) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, r, http.StatusNotFound, detail{"Not found."})
		return
	}

	fields, berr := decodeFields(w, r)
	if berr != nil {
		writeJSON(w, r, berr.status, berr.payload)
		return
	}

	device, err := h.service.Update(r.Context(), id, validation.DecodeDevice(fields), partial)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, device)
}

// Delete handles DELETE /api/devices/{id}/
func (h *DeviceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, r, http.StatusNotFound, detail{"Not found."})
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
