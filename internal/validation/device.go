package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxDeviceText = 100

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// DeviceInput holds the writable device members. Nil means absent.
type DeviceInput struct {
	Name  *string
	Owner *string

	errs *Errors
}

type deviceFields struct {
	Name  string `json:"name" validate:"notblank,max=100"`
	Owner string `json:"owner" validate:"max=100"`
}

func DecodeDevice(f Fields) DeviceInput {
	in := DeviceInput{errs: NewErrors()}
	if v, ok := f.String(in.errs, "name"); ok {
		v = strings.TrimSpace(v)
		in.Name = &v
	}
	if v, ok := f.String(in.errs, "owner"); ok {
		v = strings.TrimSpace(v)
		in.Owner = &v
	}
	return in
}

// ValidateDevice merges in over current and checks the result. With partial
// set (PATCH) absent members keep their current value; otherwise name is
// required and an absent owner resets to empty.
func ValidateDevice(in DeviceInput, currentName, currentOwner string, partial bool) (name, owner string, err error) {
	errs := in.errs
	if errs == nil {
		errs = NewErrors()
	}

	name, owner = currentName, currentOwner
	if !partial {
		owner = ""
		if in.Name == nil && !errs.Has("name") {
			errs.Add("name", MsgRequired)
		}
	}
	if in.Name != nil {
		name = *in.Name
	}
	if in.Owner != nil {
		owner = *in.Owner
	}

	fields := deviceFields{Name: name, Owner: owner}
	if vErr := validate.Struct(fields); vErr != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(vErr, &fieldErrs) {
			return "", "", fmt.Errorf("failed to validate device: %w", vErr)
		}
		for _, fe := range fieldErrs {
			// A member that already failed coercion keeps a single message.
			if errs.Has(fe.Field()) {
				continue
			}
			if fe.Field() == "name" && in.Name == nil && !partial {
				continue
			}
			errs.Add(fe.Field(), deviceMessage(fe))
		}
	}

	if err := errs.Err(); err != nil {
		return "", "", err
	}
	return name, owner, nil
}

func deviceMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank":
		return MsgBlank
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %d characters.", maxDeviceText)
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}
