// Package validation collects field-level input violations.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Violations maps a field path to a violation code such as "required".
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return validate
}

// codes translates validator tags into violation codes.
var codes = map[string]string{
	"required": "required",
	"notblank": "required",
	"gt":       "must_be_positive",
	"gte":      "must_not_be_negative",
	"min":      "too_short",
	"max":      "too_long",
	"email":    "invalid_email",
	"oneof":    "invalid_choice",
	"len":      "invalid_length",
}

// Struct validates s against its `validate` tags. Field paths use json names,
// e.g. "items[0].quantity".
func Struct(s any) Violations {
	v := Violations{}
	err := instance().Struct(s)
	if err == nil {
		return v
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		v["_"] = "invalid"
		return v
	}
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		code, ok := codes[fe.Tag()]
		if !ok {
			code = "invalid"
		}
		v[field] = code
	}
	return v
}

// Merge copies every violation of other into v.
func (v Violations) Merge(other Violations) {
	for k, code := range other {
		v[k] = code
	}
}
