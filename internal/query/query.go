// Package query turns list-endpoint parameters into typed filters, ordering
// and pagination for the repositories.
package query

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidPage = errors.New("invalid page")

// Ordering is one ORDER BY term. Column is the SQL column it maps to.
type Ordering struct {
	Column string
	Desc   bool
}

// Fields maps public ordering names to SQL columns.
type Fields map[string]string

var (
	DeviceOrderingFields   = Fields{"name": "name", "created_at": "created_at"}
	LocationOrderingFields = Fields{"captured_at": "captured_at", "created_at": "created_at"}

	DefaultDeviceOrdering   = []Ordering{{Column: "created_at", Desc: true}}
	DefaultLocationOrdering = []Ordering{{Column: "captured_at", Desc: true}}
)

// ParseOrdering reads a comma-separated list such as "-captured_at,created_at".
// Unknown fields are skipped; when none remain the defaults apply.
func ParseOrdering(raw string, allowed Fields, defaults []Ordering) []Ordering {
	var out []Ordering
	seen := make(map[string]bool)
	for _, term := range strings.Split(raw, ",") {
		term = strings.TrimSpace(term)
		desc := strings.HasPrefix(term, "-")
		column, ok := allowed[strings.TrimPrefix(term, "-")]
		if !ok || seen[column] {
			continue
		}
		seen[column] = true
		out = append(out, Ordering{Column: column, Desc: desc})
	}
	if len(out) == 0 {
		return append([]Ordering(nil), defaults...)
	}
	return out
}

// OrderBy renders orderings as an ORDER BY body with id as the tie-breaker.
// Columns come from a whitelist, never from the request.
func OrderBy(orderings []Ordering) string {
	parts := make([]string, 0, len(orderings)+1)
	for _, o := range orderings {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts = append(parts, o.Column+" "+dir)
	}
	parts = append(parts, "id DESC")
	return strings.Join(parts, ", ")
}

// SearchTerms splits a search parameter on whitespace and commas. NUL
// characters are dropped since PostgreSQL text cannot hold them.
func SearchTerms(raw string) []string {
	raw = strings.ReplaceAll(raw, "\x00", "")
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// LikePattern wraps term for a case-insensitive containment match, escaping
// the LIKE wildcards it contains.
func LikePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

type Pagination struct {
	Page int
	Size int
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Size
}

// ParsePagination reads page and page_size. A malformed page is an error;
// a malformed page_size falls back to the default and is capped at maxSize.
func ParsePagination(pageRaw, sizeRaw string, defaultSize, maxSize int) (Pagination, error) {
	p := Pagination{Page: 1, Size: defaultSize}

	if pageRaw != "" {
		page, err := strconv.Atoi(pageRaw)
		if err != nil || page < 1 {
			return Pagination{}, ErrInvalidPage
		}
		p.Page = page
	}

	if sizeRaw != "" {
		if size, err := strconv.Atoi(sizeRaw); err == nil && size > 0 {
			p.Size = size
		}
	}
	if maxSize > 0 && p.Size > maxSize {
		p.Size = maxSize
	}
	return p, nil
}

// LastPage is the number of the final page for count results (at least 1).
func (p Pagination) LastPage(count int64) int {
	if count == 0 {
		return 1
	}
	return int((count + int64(p.Size) - 1) / int64(p.Size))
}

// Check fails when the page lies past the last page.
func (p Pagination) Check(count int64) error {
	if p.Page > p.LastPage(count) {
		return ErrInvalidPage
	}
	return nil
}
