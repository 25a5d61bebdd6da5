// Package schema validates inbound profile payloads before they reach the backend.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mentorexpress/mentorexpress-web/internal/models"
	apperrors "github.com/mentorexpress/mentorexpress-web/pkg/errors"
)

// FieldErrors is the flattened validation failure returned in 400 responses
type FieldErrors struct {
	FormErrors  []string            `json:"formErrors"`
	FieldErrors map[string][]string `json:"fieldErrors"`
}

func newFieldErrors() *FieldErrors {
	return &FieldErrors{FormErrors: []string{}, FieldErrors: map[string][]string{}}
}

func (fe *FieldErrors) add(field, msg string) {
	fe.FieldErrors[field] = append(fe.FieldErrors[field], msg)
}

// Fields returns the names of the failing fields in stable order
func (fe *FieldErrors) Fields() []string {
	names := make([]string, 0, len(fe.FieldErrors))
	for name := range fe.FieldErrors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// First returns the first message for a field, or "" if the field passed
func (fe *FieldErrors) First(field string) string {
	if fe == nil {
		return ""
	}
	if msgs := fe.FieldErrors[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Error lists the failing fields, so a *FieldErrors can travel as an error
func (fe *FieldErrors) Error() string {
	parts := append([]string{}, fe.FormErrors...)
	parts = append(parts, fe.Fields()...)
	return fmt.Sprintf("%s: %s", strings.Join(parts, ", "), apperrors.ErrInvalidInput)
}

func (fe *FieldErrors) Unwrap() error {
	return apperrors.ErrInvalidInput
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "campus", oneOf(models.Campuses))
	mustRegister(v, "career", oneOf(models.Careers))
	mustRegister(v, "subject", oneOf(models.Subjects))
	mustRegister(v, "language", oneOf(models.Languages))
	mustRegister(v, "modality", oneOf(models.Modalities))

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("schema: register %s: %v", tag, err))
	}
}

func oneOf[E ~string](allowed []E) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, a := range allowed {
			if string(a) == value {
				return true
			}
		}
		return false
	}
}

// Validate checks a decoded payload against its struct tags
func Validate(v any) *FieldErrors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	fe := newFieldErrors()
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		fe.FormErrors = append(fe.FormErrors, err.Error())
		return fe
	}
	for _, fieldError := range validationErrors {
		fe.add(fieldError.Field(), message(fieldError.Field(), fieldError.Tag(), fieldError.Param()))
	}
	return fe
}

// Unmarshal parses a JSON body into T without checking field constraints
func Unmarshal[T any](body []byte) (*T, *FieldErrors) {
	var out T

	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&out); err != nil {
		fe := newFieldErrors()
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			fe.add(typeErr.Field, fmt.Sprintf("Se esperaba %s", typeName(typeErr.Type)))
		} else {
			fe.FormErrors = append(fe.FormErrors, "Cuerpo JSON inválido")
		}
		return nil, fe
	}
	return &out, nil
}

func typeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int32, reflect.Int64, reflect.Float64:
		return "un número"
	case reflect.String:
		return "un texto"
	default:
		return t.String()
	}
}

// fieldMessages overrides the generic message for specific field/tag pairs
var fieldMessages = map[string]string{
	"fullName.min":         "El nombre debe tener al menos 2 caracteres",
	"fullName.required":    "El nombre debe tener al menos 2 caracteres",
	"email.email":          "Por favor ingresa un correo válido",
	"email.required":       "Por favor ingresa un correo válido",
	"currentYear.min":      "El año debe ser válido",
	"currentYear.max":      "El año debe ser válido",
	"currentYear.required": "El año debe ser válido",
	"needs.min":            "Por favor proporciona más detalles sobre lo que necesitas para un mejor emparejamiento",
	"needs.required":       "Por favor proporciona más detalles sobre lo que necesitas para un mejor emparejamiento",
	"bio.min":              "La biografía debe tener al menos 20 caracteres",
	"availability.min":     "Describe tu disponibilidad con al menos 10 caracteres",
}

func message(field, tag, param string) string {
	if msg, ok := fieldMessages[field+"."+tag]; ok {
		return msg
	}
	switch tag {
	case "required":
		return "Este campo es obligatorio"
	case "min":
		return fmt.Sprintf("Debe tener al menos %s caracteres", param)
	case "max":
		return fmt.Sprintf("No debe superar %s", param)
	case "email":
		return "Por favor ingresa un correo válido"
	case "campus", "career", "subject", "language", "modality":
		return "Opción inválida"
	default:
		return "Valor inválido"
	}
}
