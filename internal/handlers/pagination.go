package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/prudhvinik1/locationtracker/internal/models"
	"github.com/prudhvinik1/locationtracker/internal/query"
)

type PageSettings struct {
	DefaultSize int
	MaxSize     int
}

func (s PageSettings) parse(r *http.Request) (query.Pagination, error) {
	q := r.URL.Query()
	return query.ParsePagination(q.Get("page"), q.Get("page_size"), s.DefaultSize, s.MaxSize)
}

// newPage builds the response envelope with absolute next/previous links.
func newPage[T any](r *http.Request, p query.Pagination, count int64, results []T) models.Page[T] {
	if results == nil {
		results = []T{}
	}
	page := models.Page[T]{Count: count, Results: results}
	if p.Page < p.LastPage(count) {
		next := pageURL(r, p.Page+1)
		page.Next = &next
	}
	if p.Page > 1 {
		previous := pageURL(r, p.Page-1)
		page.Previous = &previous
	}
	return page
}

// pageURL rewrites the page parameter of the request URL. Page 1 drops it.
func pageURL(r *http.Request, number int) string {
	u := url.URL{
		Scheme: "http",
		Host:   r.Host,
		Path:   r.URL.Path,
	}
	if r.TLS != nil {
		u.Scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		u.Scheme = proto
	}

	values := r.URL.Query()
	if number <= 1 {
		values.Del("page")
	} else {
		values.Set("page", strconv.Itoa(number))
	}
	u.RawQuery = values.Encode()
	return u.String()
}
