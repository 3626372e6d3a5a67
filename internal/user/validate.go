// AngelaMos | 2026
// validate.go

package user

import (
	"regexp"
	"slices"

	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

// NewValidator returns the validator shared by registration and profile
// edits, with the designation and username rules registered.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	//nolint:errcheck // tags are static
	_ = v.RegisterValidation("designation", func(fl validator.FieldLevel) bool {
		return slices.Contains(Designations, fl.Field().String())
	})
	//nolint:errcheck // tags are static
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})

	return v
}
