package validation

import (
	"encoding/json"
	"sort"
	"strings"
)

const (
	MsgRequired = "This field is required."
	MsgNull     = "This field may not be null."
	MsgBlank    = "This field may not be blank."
)

// Errors collects every violated rule of one request, keyed by JSON field name.
type Errors struct {
	fields map[string][]string
}

func NewErrors() *Errors {
	return &Errors{fields: make(map[string][]string)}
}

func (e *Errors) Add(field, message string) {
	if e.fields == nil {
		e.fields = make(map[string][]string)
	}
	e.fields[field] = append(e.fields[field], message)
}

func (e *Errors) Has(field string) bool {
	return e != nil && len(e.fields[field]) > 0
}

func (e *Errors) Empty() bool {
	return e == nil || len(e.fields) == 0
}

// Fields returns a copy of the field -> messages map.
func (e *Errors) Fields() map[string][]string {
	out := make(map[string][]string, len(e.fields))
	for k, v := range e.fields {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Err returns e as an error, or nil when nothing was collected.
func (e *Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *Errors) Error() string {
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *Errors) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.fields)
}
