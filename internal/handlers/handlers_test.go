package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prudhvinik1/locationtracker/internal/services"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := newMemoryStore()
	devices := memoryDevices{store}
	logs := memoryLogs{store}
	logger := zerolog.Nop()
	pages := PageSettings{DefaultSize: 50, MaxSize: 500}

	deviceService := services.NewDeviceService(devices, nil, logger)
	locationService := services.NewLocationService(devices, logs, nil, 5*time.Minute, logger)

	return NewRouter(
		NewDeviceHandler(deviceService, pages),
		NewLocationHandler(locationService, pages),
		logger,
	)
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func createDevice(t *testing.T, router http.Handler, name, owner string) int64 {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/devices/", fmt.Sprintf(`{"name":%q,"owner":%q}`, name, owner))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return int64(decodeBody(t, rec)["id"].(float64))
}

func createLog(t *testing.T, router http.Handler, deviceID int64, capturedAt time.Time) int64 {
	t.Helper()
	body := fmt.Sprintf(`{"device":%d,"latitude":12.12,"longitude":77.77,"accuracy_meters":5,"captured_at":%q}`,
		deviceID, capturedAt.UTC().Format(time.RFC3339))
	rec := do(t, router, http.MethodPost, "/api/locations/", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return int64(decodeBody(t, rec)["id"].(float64))
}

func TestDeviceCreate_IncrementsCount(t *testing.T) {
	// ARRANGE
	router := newTestRouter(t)
	before := decodeBody(t, do(t, router, http.MethodGet, "/api/devices/", ""))

	// ACT
	rec := do(t, router, http.MethodPost, "/api/devices/", `{"name":"Tracker A","owner":"alice"}`)

	// ASSERT
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody(t, rec)
	assert.Equal(t, "Tracker A", created["name"])
	assert.Equal(t, "alice", created["owner"])
	assert.NotNil(t, created["id"])
	assert.NotEmpty(t, created["created_at"])

	after := decodeBody(t, do(t, router, http.MethodGet, "/api/devices/", ""))
	assert.Equal(t, before["count"].(float64)+1, after["count"])
}

func TestDeviceCreate_BlankName(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/devices/", `{"name":"   "}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec), "name")
}

func TestDeviceCreate_IgnoresServerFields(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/devices/", `{"id":999,"name":"x","created_at":"2001-01-01T00:00:00Z"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEqual(t, float64(999), body["id"])
	assert.NotContains(t, body["created_at"], "2001")
}

func TestDeviceUpdate_PutAndPatch(t *testing.T) {
	router := newTestRouter(t)
	id := createDevice(t, router, "old", "bob")

	// PATCH keeps the owner
	rec := do(t, router, http.MethodPatch, fmt.Sprintf("/api/devices/%d/", id), `{"name":"renamed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "renamed", body["name"])
	assert.Equal(t, "bob", body["owner"])

	// PUT without a name is rejected
	rec = do(t, router, http.MethodPut, fmt.Sprintf("/api/devices/%d/", id), `{"owner":"carol"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []interface{}{"This field is required."}, decodeBody(t, rec)["name"])
}

func TestDeviceGet_NotFound(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/api/devices/42/", "/api/devices/abc/"} {
		rec := do(t, router, http.MethodGet, path, "")
		require.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "Not found.", decodeBody(t, rec)["detail"])
	}
}

func TestLocationCreate_LatitudeOutOfRange(t *testing.T) {
	router := newTestRouter(t)
	id := createDevice(t, router, "A", "")

	body := fmt.Sprintf(`{"device":%d,"latitude":93,"longitude":0,"captured_at":%q}`, id, time.Now().UTC().Format(time.RFC3339))
	rec := do(t, router, http.MethodPost, "/api/locations/", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decodeBody(t, rec)
	assert.Contains(t, errs, "latitude")
	assert.NotContains(t, errs, "longitude")
}

func TestLocationCreate_NegativeAccuracy(t *testing.T) {
	router := newTestRouter(t)
	id := createDevice(t, router, "A", "")

	body := fmt.Sprintf(`{"device":%d,"latitude":1,"longitude":1,"accuracy_meters":-1,"captured_at":%q}`, id, time.Now().UTC().Format(time.RFC3339))
	rec := do(t, router, http.MethodPost, "/api/locations/", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec), "accuracy_meters")
}

func TestLocationCreate_ReportsEveryField(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/locations/", `{"device":777,"latitude":"north","longitude":500}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decodeBody(t, rec)
	for _, field := range []string{"device", "latitude", "longitude", "captured_at"} {
		assert.Contains(t, errs, field)
	}
}

func TestLocationCreate_ReturnsFixedPointCoordinates(t *testing.T) {
	router := newTestRouter(t)
	id := createDevice(t, router, "A", "")

	body := fmt.Sprintf(`{"device":%d,"latitude":"12.12","longitude":-0.5,"captured_at":%q}`, id, time.Now().UTC().Format(time.RFC3339))
	rec := do(t, router, http.MethodPost, "/api/locations/", body)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody(t, rec)
	assert.Equal(t, "12.120000", created["latitude"])
	assert.Equal(t, "-0.500000", created["longitude"])
	assert.Equal(t, float64(0), created["accuracy_meters"])
	assert.Equal(t, float64(id), created["device"])
}

func TestLocationList_FilterByDevice(t *testing.T) {
	router := newTestRouter(t)
	a := createDevice(t, router, "A", "")
	b := createDevice(t, router, "B", "")
	createLog(t, router, a, time.Now().Add(-time.Minute))
	createLog(t, router, b, time.Now().Add(-time.Minute))

	rec := do(t, router, http.MethodGet, fmt.Sprintf("/api/locations/?device=%d", a), "")

	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeBody(t, rec)
	assert.Equal(t, float64(1), page["count"])
	results := page["results"].([]interface{})
	require.Len(t, results, 1)
	assert.Equal(t, float64(a), results[0].(map[string]interface{})["device"])
}

func TestLocationList_NonNumericDeviceIsEmpty(t *testing.T) {
	router := newTestRouter(t)
	a := createDevice(t, router, "A", "")
	createLog(t, router, a, time.Now().Add(-time.Minute))

	rec := do(t, router, http.MethodGet, "/api/locations/?device=abc", "")

	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeBody(t, rec)
	assert.Equal(t, float64(0), page["count"])
	assert.Empty(t, page["results"])
}

func TestLocationList_NewestCapturedFirst(t *testing.T) {
	router := newTestRouter(t)
	a := createDevice(t, router, "A", "")
	older := createLog(t, router, a, time.Now().Add(-2*time.Hour))
	newer := createLog(t, router, a, time.Now().Add(-time.Hour))

	page := decodeBody(t, do(t, router, http.MethodGet, "/api/locations", ""))

	results := page["results"].([]interface{})
	require.Len(t, results, 2)
	assert.Equal(t, float64(newer), results[0].(map[string]interface{})["id"])
	assert.Equal(t, float64(older), results[1].(map[string]interface{})["id"])
}

func TestDeviceDelete_CascadesToLogs(t *testing.T) {
	router := newTestRouter(t)
	a := createDevice(t, router, "A", "")
	logID := createLog(t, router, a, time.Now().Add(-time.Minute))

	rec := do(t, router, http.MethodDelete, fmt.Sprintf("/api/devices/%d/", a), "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, fmt.Sprintf("/api/locations/%d/", logID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodDelete, fmt.Sprintf("/api/devices/%d/", a), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLastLocation(t *testing.T) {
	router := newTestRouter(t)
	a := createDevice(t, router, "A", "")
	b := createDevice(t, router, "B", "")
	newest := createLog(t, router, a, time.Now().Add(-time.Minute))
	createLog(t, router, a, time.Now().Add(-time.Hour))

	rec := do(t, router, http.MethodGet, fmt.Sprintf("/api/devices/%d/last-location/", a), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(newest), decodeBody(t, rec)["id"])

	// device without readings
	rec = do(t, router, http.MethodGet, fmt.Sprintf("/api/devices/%d/last-location/", b), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPagination_InvalidPage(t *testing.T) {
	router := newTestRouter(t)
	createDevice(t, router, "A", "")

	for _, path := range []string{"/api/devices/?page=999", "/api/devices/?page=0", "/api/locations/?page=x"} {
		rec := do(t, router, http.MethodGet, path, "")
		require.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "Invalid page.", decodeBody(t, rec)["detail"])
	}

	// an empty first page is still valid
	rec := do(t, router, http.MethodGet, "/api/locations/?page=1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPagination_Links(t *testing.T) {
	router := newTestRouter(t)
	for i := 0; i < 5; i++ {
		createDevice(t, router, fmt.Sprintf("d%d", i), "")
	}

	first := decodeBody(t, do(t, router, http.MethodGet, "/api/devices/?page_size=2", ""))
	assert.Equal(t, float64(5), first["count"])
	assert.Nil(t, first["previous"])
	assert.Equal(t, "http://example.com/api/devices/?page=2&page_size=2", first["next"])

	second := decodeBody(t, do(t, router, http.MethodGet, "/api/devices/?page=2&page_size=2", ""))
	assert.Equal(t, "http://example.com/api/devices/?page_size=2", second["previous"])
	assert.Equal(t, "http://example.com/api/devices/?page=3&page_size=2", second["next"])

	last := decodeBody(t, do(t, router, http.MethodGet, "/api/devices/?page=3&page_size=2", ""))
	assert.Nil(t, last["next"])
	assert.Len(t, last["results"], 1)
}

func TestDeviceList_Search(t *testing.T) {
	router := newTestRouter(t)
	createDevice(t, router, "Delivery Van", "alice")
	createDevice(t, router, "Delivery Bike", "bob")
	createDevice(t, router, "Forklift", "alice")

	page := decodeBody(t, do(t, router, http.MethodGet, "/api/devices/?search=delivery+alice", ""))

	assert.Equal(t, float64(1), page["count"])
}

func TestMalformedJSON(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/devices/", `{"name":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.HasPrefix(decodeBody(t, rec)["detail"].(string), "JSON parse error - "))

	rec = do(t, router, http.MethodPost, "/api/locations/", `[1,2]`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec), "non_field_errors")
}

func TestRequestIDAndHealth(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = do(t, router, http.MethodGet, "/health", "")
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestLocationCreate_NonFiniteAccuracy(t *testing.T) {
	router := newTestRouter(t)
	id := createDevice(t, router, "A", "")

	for _, value := range []string{"NaN", "Infinity"} {
		body := fmt.Sprintf(`{"device":%d,"latitude":1,"longitude":1,"accuracy_meters":%q,"captured_at":%q}`,
			id, value, time.Now().UTC().Format(time.RFC3339))
		rec := do(t, router, http.MethodPost, "/api/locations/", body)

		require.Equal(t, http.StatusBadRequest, rec.Code, value)
		assert.Contains(t, decodeBody(t, rec), "accuracy_meters")
	}

	// nothing was stored, so listing still renders
	page := decodeBody(t, do(t, router, http.MethodGet, "/api/locations/", ""))
	assert.Equal(t, float64(0), page["count"])
}

func TestLocationCreate_HugeExponentRejectedQuickly(t *testing.T) {
	router := newTestRouter(t)
	id := createDevice(t, router, "A", "")

	for _, value := range []string{"1e999999999", "1e-999999999"} {
		start := time.Now()
		body := fmt.Sprintf(`{"device":%d,"latitude":%q,"longitude":1,"captured_at":%q}`,
			id, value, time.Now().UTC().Format(time.RFC3339))
		rec := do(t, router, http.MethodPost, "/api/locations/", body)

		require.Equal(t, http.StatusBadRequest, rec.Code, value)
		assert.Contains(t, decodeBody(t, rec), "latitude")
		assert.Less(t, time.Since(start), time.Second, value)
	}
}

func TestDeviceCreate_NullCharacter(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/devices/", `{"name":"Pix\u0000el"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []interface{}{"Null characters are not allowed."}, decodeBody(t, rec)["name"])
}

func TestDeviceCreate_TrimsWhitespace(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/devices/", `{"name":" Pixel ","owner":" alice "}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Pixel", body["name"])
	assert.Equal(t, "alice", body["owner"])
}

func TestDeviceList_SearchDropsNullCharacters(t *testing.T) {
	router := newTestRouter(t)
	createDevice(t, router, "Pixel", "")
	createDevice(t, router, "Galaxy", "")

	page := decodeBody(t, do(t, router, http.MethodGet, "/api/devices/?search=pix%00el", ""))

	assert.Equal(t, float64(1), page["count"])
}
