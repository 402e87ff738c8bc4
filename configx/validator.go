package configx

import (
	"github.com/go-playground/validator/v10"

	"go.eggybyte.com/easylog/core/errors"
)

// ValidatorOption configures the validator.
type ValidatorOption func(*validator.Validate)

// NewValidator creates a new validator instance.
func NewValidator(opts ...ValidatorOption) *validator.Validate {
	v := validator.New()
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// WithRule registers a string rule under tag. Empty values are passed to fn
// as well, so combine with omitempty when blanks are allowed.
func WithRule(tag string, fn func(value string) bool) ValidatorOption {
	return func(v *validator.Validate) {
		// Registration only fails for empty tags or nil funcs, both programmer errors.
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		})
	}
}

// ValidateStruct validates a struct using validator tags.
func ValidateStruct(v *validator.Validate, target any) error {
	if v == nil {
		v = validator.New()
	}

	if err := v.Struct(target); err != nil {
		return errors.Wrap(errors.CodeInvalidArgument, "configx.validate", err)
	}

	return nil
}
