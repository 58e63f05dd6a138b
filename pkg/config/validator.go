package config

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// containerFieldPattern matches plain YAML keys usable as a task container field.
var containerFieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// RegisterCustomValidators registers custom validation functions
func RegisterCustomValidators(v *validator.Validate) error {
	return v.RegisterValidation("container_field", validateContainerField)
}

func validateContainerField(fl validator.FieldLevel) bool {
	return containerFieldPattern.MatchString(fl.Field().String())
}
