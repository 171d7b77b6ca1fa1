package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	postalCode = regexp.MustCompile(`^[0-9]{5}$`)

	validate = newValidator()
)

// Tags registered on the shared validator.
const (
	TagPostalCode = "cp5"
	TagEmailShape = "mailshape"
)

func newValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, TagPostalCode, func(fl validator.FieldLevel) bool {
		return postalCode.MatchString(fl.Field().String())
	})
	mustRegister(v, TagEmailShape, func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// Validator exposes the shared instance so structs can use the custom tags.
func Validator() *validator.Validate {
	return validate
}

// IsEmail reports whether s has the minimal local@domain.tld shape.
// The empty string is not an email; callers treat it as an absent field.
func IsEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return validate.Var(s, TagEmailShape) == nil
}
