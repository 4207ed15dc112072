package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields under their form names so messages can be
// bound to the inputs the user filled in.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateStruct runs the struct's validate tags. It returns nil when s is valid.
func validateStruct(s interface{}) *ValidationError {
	return toValidationError(validate.Struct(s), "")
}

// validateVar checks a single value against tag, reporting failures under field.
func validateVar(field string, value interface{}, tag string) *ValidationError {
	return toValidationError(validate.Var(value, tag), field)
}

func toValidationError(err error, field string) *ValidationError {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fieldError(fallback(field), "Valor no válido.")
	}
	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		name := field
		if name == "" {
			name = fe.Field()
		}
		verr.Add(name, message(fe))
	}
	return verr
}

func fallback(field string) string {
	if field == "" {
		return "form"
	}
	return field
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Este campo es obligatorio."
	case "min":
		return fmt.Sprintf("Debe tener al menos %s caracteres.", fe.Param())
	case "max":
		return fmt.Sprintf("No puede superar %s caracteres.", fe.Param())
	case "email":
		return "Introduce un email válido."
	case "eqfield":
		return "Las contraseñas no coinciden."
	default:
		return "Valor no válido."
	}
}
