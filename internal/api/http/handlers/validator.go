package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/opsdesk/ticket-service/pkg/util"
)

// RequestValidator wraps go-playground/validator and translates the first
// field error into the service's validation error shape.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator builds a validator reporting JSON field names.
func NewRequestValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validate: v}
}

// Validate checks the struct tags and returns a validation DomainError on
// the first failure.
func (v *RequestValidator) Validate(payload any) error {
	err := v.validate.Struct(payload)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fe := validationErrors[0]
		return apperrors.NewValidationError(validationMessage(fe), fe.Field())
	}
	return apperrors.NewValidationError(err.Error(), "")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", fe.Field())
	case "email":
		return fmt.Sprintf("%q must be a valid email", fe.Field())
	case "min":
		return fmt.Sprintf("%q must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%q must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%q failed on the %q rule", fe.Field(), fe.Tag())
	}
}
