package validation

import (
	"github.com/go-playground/validator/v10"

	"github.com/oiueei/oiueei/util/code"
)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: NewValidate()}
}

// NewValidate builds the shared validator with the custom tags the
// DTOs use. "entitycode" accepts a well-formed entity code.
func NewValidate() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("entitycode", func(fl validator.FieldLevel) bool {
		return code.Valid(fl.Field().String())
	})
	return v
}

func (v *Validator) Validate(i interface{}) error {
	return v.v.Struct(i)
}
