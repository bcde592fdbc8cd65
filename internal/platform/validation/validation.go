package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Reportar errores con el nombre JSON del campo.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct valida tags `validate` del DTO.
func Struct(s any) error {
	return validate.Struct(s)
}

// Fields convierte ValidationErrors en campo -> tag.
func Fields(err error) map[string]string {
	out := map[string]string{}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return out
	}
	for _, fe := range ve {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// Message arma un texto corto y estable para respuestas 400.
func Message(err error) string {
	fields := Fields(err)
	if len(fields) == 0 {
		return "invalid input"
	}
	parts := make([]string, 0, len(fields))
	for f, tag := range fields {
		parts = append(parts, f+": "+tag)
	}
	sort.Strings(parts)
	return "invalid input: " + strings.Join(parts, ", ")
}
