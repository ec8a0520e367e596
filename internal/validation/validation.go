// Package validation wraps go-playground/validator with the tags and messages used by the API.
package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"supplierapi/internal/brdoc"
)

// Code is reported with every field error.
const Code = "invalid"

// NonFieldErrors addresses errors that concern the payload as a whole.
const NonFieldErrors = "nonFieldErrors"

// FieldError is one failed rule, addressed by its camelCase JSON path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error collects field errors for a single request.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field error and returns e for chaining.
func (e *Error) Add(field, message string) *Error {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message, Code: Code})
	return e
}

// OrNil returns nil when no field error was collected.
func (e *Error) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NewError builds an error for a single field.
func NewError(field, message string) *Error {
	return (&Error{}).Add(field, message)
}

// Validator validates request structs.
type Validator struct {
	v *validator.Validate
}

// New returns a validator that reports JSON field names and knows the custom tags
// taxid (CPF or CNPJ) and cep (postal code format).
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	_ = v.RegisterValidation("taxid", func(fl validator.FieldLevel) bool {
		return brdoc.IsTaxID(fl.Field().String())
	})
	_ = v.RegisterValidation("cep", func(fl validator.FieldLevel) bool {
		_, ok := brdoc.NormalizeCEP(fl.Field().String())
		return ok
	})
	return &Validator{v: v}
}

// Struct validates s and converts failures into *Error.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Error{}
	for _, fe := range verrs {
		out.Add(fieldPath(fe.Namespace()), message(fe))
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_with":
		return "Este campo é obrigatório."
	case "email":
		return "Email inválido."
	case "taxid":
		return "CPF/CNPJ inválido."
	case "cep":
		return "Formato de CEP inválido."
	case "max":
		if e.Kind() == reflect.String {
			return "Certifique-se de que este campo não tenha mais de " + e.Param() + " caracteres."
		}
		return "Certifique-se de que este valor seja menor ou igual a " + e.Param() + "."
	case "min", "gte":
		return "Certifique-se de que este valor seja maior ou igual a " + e.Param() + "."
	case "lte":
		return "Certifique-se de que este valor seja menor ou igual a " + e.Param() + "."
	case "numeric":
		return "Informe apenas números."
	case "oneof":
		return "Valor inválido. Opções: " + e.Param() + "."
	case "uuid":
		return "Identificador inválido."
	case "dive":
		return "Valor inválido."
	default:
		return "Valor inválido."
	}
}

// Has reports whether a field error was already recorded for field.
func (e *Error) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Merge appends the field errors of err when it is an *Error and returns any other
// error unchanged.
func (e *Error) Merge(err error) error {
	if err == nil {
		return nil
	}
	var other *Error
	if !errors.As(err, &other) {
		return err
	}
	e.Fields = append(e.Fields, other.Fields...)
	return nil
}

// DecodeJSON unmarshals data into v. Unknown fields are ignored so read-only fields
// echoed back by clients do not fail the request. Syntax errors, trailing data and
// mistyped values come back as *Error so clients get the offending field.
func DecodeJSON(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return NewError(typeErr.Field, "Tipo de dado inválido.")
	}
	return NewError(NonFieldErrors, "JSON inválido.")
}
