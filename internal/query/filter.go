package query

import (
	"strconv"
	"strings"
)

// LocationFilter restricts a location log listing.
type LocationFilter struct {
	// DeviceID, when set, keeps only logs of that device.
	DeviceID *int64
	// NoMatch is set when the device parameter can never match a row.
	NoMatch bool
}

// ParseLocationFilter reads the device parameter. An empty value means no
// filter; a non-numeric value matches nothing.
func ParseLocationFilter(device string) LocationFilter {
	device = strings.TrimSpace(device)
	if device == "" {
		return LocationFilter{}
	}
	id, err := strconv.ParseInt(device, 10, 64)
	if err != nil {
		return LocationFilter{NoMatch: true}
	}
	return LocationFilter{DeviceID: &id}
}

type DeviceQuery struct {
	Search   []string
	Ordering []Ordering
	Page     Pagination
}

type LocationQuery struct {
	Filter   LocationFilter
	Ordering []Ordering
	Page     Pagination
}
