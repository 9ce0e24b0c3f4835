package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prudhvinik1/locationtracker/internal/query"
	"github.com/prudhvinik1/locationtracker/internal/repositories"
	"github.com/prudhvinik1/locationtracker/internal/validation"
	"github.com/rs/zerolog/hlog"
)

const maxBodyBytes = 1 << 20

type detail struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		hlog.FromRequest(r).Error().Err(err).Int("status", status).Msg("failed to encode response")
	}
}

// writeError maps service errors onto status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs *validation.Errors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, r, http.StatusBadRequest, verrs)
	case errors.Is(err, repositories.ErrNotFound):
		writeJSON(w, r, http.StatusNotFound, detail{"Not found."})
	case errors.Is(err, query.ErrInvalidPage):
		writeJSON(w, r, http.StatusNotFound, detail{"Invalid page."})
	default:
		hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, r, http.StatusInternalServerError, detail{"A server error occurred."})
	}
}

// pathID reads the {id} URL parameter. Anything but an integer cannot name a row.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

type bodyError struct {
	status  int
	payload interface{}
}

// decodeFields reads a JSON object body. An empty body is an empty object.
func decodeFields(w http.ResponseWriter, r *http.Request) (validation.Fields, *bodyError) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &bodyError{http.StatusRequestEntityTooLarge, detail{"Request body too large."}}
		}
		return nil, &bodyError{http.StatusBadRequest, detail{"Could not read request body."}}
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return validation.Fields{}, nil
	}

	var raw json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, &bodyError{http.StatusBadRequest, detail{fmt.Sprintf("JSON parse error - %v", err)}}
	}

	var fields validation.Fields
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, &bodyError{http.StatusBadRequest, map[string][]string{
			"non_field_errors": {fmt.Sprintf("Invalid data. Expected a dictionary, but got %s.", jsonKind(trimmed))},
		}}
	}
	return fields, nil
}

func jsonKind(s string) string {
	switch s[0] {
	case '[':
		return "list"
	case '"':
		return "str"
	case 't', 'f':
		return "bool"
	case 'n':
		return "NoneType"
	default:
		return "number"
	}
}
