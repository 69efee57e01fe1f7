package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var birthdayLayouts = []string{"2006-01-02", time.RFC3339}

// newValidator returns a validator that reports fields by their JSON name and
// understands the "birthday" rule.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("birthday", func(fl validator.FieldLevel) bool {
		_, err := parseBirthday(fl.Field().String())
		return err == nil
	})
	return v
}

// validateStruct runs v over s and returns a *ValidationError listing every
// violation, or nil.
func validateStruct(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("failed to validate input: %w", err)
	}

	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Field()] = describe(e)
	}
	return &ValidationError{Fields: fields}
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", e.Param())
	case "alphanum":
		return "must contain only letters and numbers"
	case "email":
		return "must be a valid email address"
	case "birthday":
		return "must be a date such as 1990-04-01"
	default:
		return fmt.Sprintf("failed on the '%s' rule", e.Tag())
	}
}

// parseBirthday accepts an empty string (no birthday), a calendar date or an
// RFC 3339 timestamp.
func parseBirthday(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range birthdayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", s)
}
