package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)

// NewValidator returns a validator that reports json field names and
// compares decimal.Decimal fields as numbers, so tags like gt=0 apply to money.
func NewValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return v
}

// ValidationErrors flattens validator errors into field -> failed tag.
// Field keys drop the top-level struct name, e.g. "items[0].quantity".
func ValidationErrors(err error) map[string]string {
	out := make(map[string]string)

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		if err != nil {
			out["_"] = err.Error()
		}
		return out
	}

	for _, ve := range ves {
		field := ve.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		tag := ve.Tag()
		if ve.Param() != "" {
			tag = tag + "=" + ve.Param()
		}
		out[field] = tag
	}
	return out
}

// SanitizeString removes control characters except tab and newline
func SanitizeString(s string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(s, ""))
}
