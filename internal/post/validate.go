// AngelaMos | 2026
// validate.go

package post

import (
	"github.com/go-playground/validator/v10"
)

// NewValidator returns the validator applied to PostInput on both create
// and edit.
func NewValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}
