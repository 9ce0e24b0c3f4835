package validation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prudhvinik1/locationtracker/internal/models"
	"github.com/shopspring/decimal"
)

const (
	maxCoordinateDigits = 9
	DefaultTolerance    = 5 * time.Minute
)

var (
	latitudeLimit  = decimal.NewFromInt(90)
	longitudeLimit = decimal.NewFromInt(180)
)

// DeviceLookup reports whether a device row exists.
type DeviceLookup func(ctx context.Context, id int64) (bool, error)

// LocationLogInput holds the client-supplied fields of a new location log.
// Nil means the member was absent (or could not be coerced).
type LocationLogInput struct {
	DeviceID       *int64
	Latitude       *decimal.Decimal
	Longitude      *decimal.Decimal
	AccuracyMeters *float64
	CapturedAt     *time.Time

	errs *Errors
}

// DecodeLocationLog coerces the body members; coercion failures are kept on
// the input and reported together with the rule violations by Validate.
func DecodeLocationLog(f Fields) LocationLogInput {
	in := LocationLogInput{errs: NewErrors()}
	if v, ok := f.PrimaryKey(in.errs, "device"); ok {
		in.DeviceID = &v
	}
	if v, ok := f.Decimal(in.errs, "latitude"); ok {
		in.Latitude = &v
	}
	if v, ok := f.Decimal(in.errs, "longitude"); ok {
		in.Longitude = &v
	}
	if v, ok := f.Float(in.errs, "accuracy_meters"); ok {
		in.AccuracyMeters = &v
	}
	if v, ok := f.Time(in.errs, "captured_at"); ok {
		in.CapturedAt = &v
	}
	return in
}

type LocationRules struct {
	// CapturedAtTolerance is how far past the server clock captured_at may lie.
	CapturedAtTolerance time.Duration
	Now                 func() time.Time
}

func (r LocationRules) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Validate applies every location log rule and returns the log to insert.
// Rule violations come back as *Errors; a failing lookup is returned wrapped.
func (r LocationRules) Validate(ctx context.Context, in LocationLogInput, deviceExists DeviceLookup) (models.LocationLog, error) {
	errs := in.errs
	if errs == nil {
		errs = NewErrors()
	}

	required := func(field string, present bool) {
		if !present && !errs.Has(field) {
			errs.Add(field, MsgRequired)
		}
	}
	required("device", in.DeviceID != nil)
	required("latitude", in.Latitude != nil)
	required("longitude", in.Longitude != nil)
	required("captured_at", in.CapturedAt != nil)

	if in.Latitude != nil {
		checkCoordinate(errs, "latitude", *in.Latitude, latitudeLimit, "Latitude must be between -90 and 90.")
	}
	if in.Longitude != nil {
		checkCoordinate(errs, "longitude", *in.Longitude, longitudeLimit, "Longitude must be between -180 and 180.")
	}

	accuracy := 0.0
	if in.AccuracyMeters != nil {
		accuracy = *in.AccuracyMeters
		if accuracy < 0 {
			errs.Add("accuracy_meters", "Accuracy cannot be negative.")
		}
	}

	if in.CapturedAt != nil && in.CapturedAt.After(r.now().Add(r.CapturedAtTolerance)) {
		errs.Add("captured_at", "captured_at cannot be far in the future.")
	}

	if in.DeviceID != nil {
		exists, err := deviceExists(ctx, *in.DeviceID)
		if err != nil {
			return models.LocationLog{}, fmt.Errorf("failed to look up device: %w", err)
		}
		if !exists {
			errs.Add("device", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", *in.DeviceID))
		}
	}

	if err := errs.Err(); err != nil {
		return models.LocationLog{}, err
	}

	return models.LocationLog{
		DeviceID:       *in.DeviceID,
		Latitude:       *in.Latitude,
		Longitude:      *in.Longitude,
		AccuracyMeters: accuracy,
		CapturedAt:     *in.CapturedAt,
	}, nil
}

// checkCoordinate enforces NUMERIC(9,6) precision before the range.
func checkCoordinate(errs *Errors, field string, value, limit decimal.Decimal, rangeMsg string) {
	whole, places := digits(value)
	if places > models.CoordinatePlaces {
		errs.Add(field, fmt.Sprintf("Ensure that there are no more than %d decimal places.", models.CoordinatePlaces))
		return
	}
	if whole+places > maxCoordinateDigits {
		errs.Add(field, fmt.Sprintf("Ensure that there are no more than %d digits in total.", maxCoordinateDigits))
		return
	}
	if value.Abs().GreaterThan(limit) {
		errs.Add(field, rangeMsg)
	}
}

// digits counts integer and fractional digits, ignoring trailing zeros. It
// works on the coefficient and exponent so huge exponents are never expanded.
func digits(value decimal.Decimal) (whole, places int) {
	coef := strings.TrimPrefix(value.Coefficient().String(), "-")
	if coef == "0" {
		return 0, 0
	}
	exp := int(value.Exponent())
	trimmed := strings.TrimRight(coef, "0")
	exp += len(coef) - len(trimmed)

	if exp >= 0 {
		return len(trimmed) + exp, 0
	}
	places = -exp
	if len(trimmed) > places {
		whole = len(trimmed) - places
	}
	return whole, places
}
