package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// CoordinatePlaces is the number of fractional digits stored for latitude and longitude.
const CoordinatePlaces = 6

// LocationLog is one GPS reading reported by a device.
type LocationLog struct {
	ID             int64           `json:"id"`
	DeviceID       int64           `json:"device"`
	Latitude       decimal.Decimal `json:"latitude"`
	Longitude      decimal.Decimal `json:"longitude"`
	AccuracyMeters float64         `json:"accuracy_meters"`
	CapturedAt     time.Time       `json:"captured_at"`
	CreatedAt      time.Time       `json:"created_at"`
}

// MarshalJSON renders coordinates as fixed-point strings ("12.120000").
func (l LocationLog) MarshalJSON() ([]byte, error) {
	type alias LocationLog
	return json.Marshal(struct {
		alias
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	}{
		alias:     alias(l),
		Latitude:  l.Latitude.StringFixed(CoordinatePlaces),
		Longitude: l.Longitude.StringFixed(CoordinatePlaces),
	})
}
