package validators

import "github.com/go-playground/validator/v10"

var v = validator.New()

// New returns the shared request validator.
func New() interface{ Struct(any) error } {
	return structValidator{}
}

type structValidator struct{}

func (structValidator) Struct(obj any) error {
	return v.Struct(obj)
}
