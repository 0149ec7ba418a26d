package forms

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors maps a form field name to the message rendered next to it.
type Errors map[string]string

func (e Errors) Add(field, message string) {
	if _, taken := e[field]; !taken {
		e[field] = message
	}
}

func (e Errors) Has() bool {
	return len(e) > 0
}

// FromBindingError turns a gin binding error into per-field messages so the
// form can be re-rendered with the errors in place.
func FromBindingError(err error) Errors {
	errs := Errors{}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		// Type-level failures (e.g. a non-numeric rating) never reach the
		// validator, so there is no field to pin them to.
		errs.Add("rating", "Rating must be a whole number between 1 and 5.")
		return errs
	}

	for _, fieldError := range validationErrors {
		errs.Add(fieldName(fieldError.Field()), fieldErrorMessage(fieldError))
	}

	return errs
}

func fieldErrorMessage(fe validator.FieldError) string {
	field := fieldName(fe.Field())
	label := title(field)

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", label)
	case "min":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "max":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
	case "eqfield":
		return "The two password fields must match."
	default:
		return fmt.Sprintf("%s is not valid.", label)
	}
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ReplaceAll(s[1:], "_", " ")
}

func fieldName(field string) string {
	fieldNames := map[string]string{
		"Rating":          "rating",
		"Body":            "body",
		"Username":        "username",
		"Password":        "password",
		"PasswordConfirm": "password_confirm",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return strings.ToLower(field)
}
