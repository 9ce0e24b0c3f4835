package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Fields is a request body split into its top-level members so that every
// member can be coerced and reported on independently.
type Fields map[string]json.RawMessage

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// String coerces a JSON string member. present is false when the member is
// absent or an error was recorded for it.
func (f Fields) String(errs *Errors, name string) (value string, present bool) {
	raw, found := f[name]
	if !found {
		return "", false
	}
	if isNull(raw) {
		errs.Add(name, MsgNull)
		return "", false
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		errs.Add(name, "Not a valid string.")
		return "", false
	}
	if strings.ContainsRune(value, 0) {
		errs.Add(name, "Null characters are not allowed.")
		return "", false
	}
	return value, true
}

// Decimal accepts a JSON number or a numeric string.
func (f Fields) Decimal(errs *Errors, name string) (decimal.Decimal, bool) {
	raw, found := f[name]
	if !found {
		return decimal.Zero, false
	}
	if isNull(raw) {
		errs.Add(name, MsgNull)
		return decimal.Zero, false
	}
	text := strings.TrimSpace(string(raw))
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = strings.TrimSpace(unquoted)
	}
	d, err := decimal.NewFromString(text)
	if err == nil {
		d, err = canonical(d)
	}
	if err != nil {
		errs.Add(name, "A valid number is required.")
		return decimal.Zero, false
	}
	return d, true
}

// canonical strips trailing zeros from the coefficient so that later
// comparisons never rescale by a client-chosen exponent.
func canonical(d decimal.Decimal) (decimal.Decimal, error) {
	coef := d.Coefficient()
	if coef.Sign() == 0 {
		return decimal.Zero, nil
	}
	text := coef.String()
	trimmed := strings.TrimRight(text, "0")
	exp := int64(d.Exponent()) + int64(len(text)-len(trimmed))
	if exp > math.MaxInt32 {
		return decimal.Zero, errors.New("exponent out of range")
	}
	if len(trimmed) == len(text) {
		return d, nil
	}
	n, _ := new(big.Int).SetString(trimmed, 10)
	return decimal.NewFromBigInt(n, int32(exp)), nil
}

// Float accepts a JSON number or a numeric string. NaN and infinities are
// rejected.
func (f Fields) Float(errs *Errors, name string) (float64, bool) {
	raw, found := f[name]
	if !found {
		return 0, false
	}
	if isNull(raw) {
		errs.Add(name, MsgNull)
		return 0, false
	}
	text := strings.TrimSpace(string(raw))
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = strings.TrimSpace(unquoted)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		errs.Add(name, "A valid number is required.")
		return 0, false
	}
	return v, true
}

// localDateTime is ISO 8601 without an offset; such values are read as UTC.
const localDateTime = "2006-01-02T15:04:05.999999999"

// Time accepts an RFC 3339 string, or one without an offset.
func (f Fields) Time(errs *Errors, name string) (time.Time, bool) {
	raw, found := f[name]
	if !found {
		return time.Time{}, false
	}
	if isNull(raw) {
		errs.Add(name, MsgNull)
		return time.Time{}, false
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		errs.Add(name, "Datetime has wrong format. Use one of these formats instead: RFC 3339.")
		return time.Time{}, false
	}
	text = strings.TrimSpace(text)
	t, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		t, err = time.Parse(localDateTime, text)
	}
	if err != nil {
		errs.Add(name, "Datetime has wrong format. Use one of these formats instead: RFC 3339.")
		return time.Time{}, false
	}
	return t, true
}

// PrimaryKey accepts an integer or a string holding one.
func (f Fields) PrimaryKey(errs *Errors, name string) (int64, bool) {
	raw, found := f[name]
	if !found {
		return 0, false
	}
	if isNull(raw) {
		errs.Add(name, MsgNull)
		return 0, false
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		id, convErr := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if convErr != nil {
			errs.Add(name, "Incorrect type. Expected pk value, received str.")
			return 0, false
		}
		return id, true
	}

	var id int64
	if err := json.Unmarshal(raw, &id); err != nil {
		errs.Add(name, "Incorrect type. Expected pk value.")
		return 0, false
	}
	return id, true
}
