package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ndewijer/Currency-Rate-Loader/internal/model"
)

// ErrInvalidUUID is returned for IDs that do not parse as UUIDs.
var ErrInvalidUUID = errors.New("invalid UUID format")

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// instance returns the shared validator with the project's custom tags registered.
func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("autoload_method", func(fl validator.FieldLevel) bool {
			for _, method := range model.AutoloadMethods {
				if fl.Field().String() == method {
					return true
				}
			}
			return false
		})
	})
	return validate
}

// Struct validates s against its validate tags and converts failures into
// an *Error keyed by field name.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fields := make(map[string]string, len(validationErrs))
	for _, fe := range validationErrs {
		fields[lowerFirst(fe.Field())] = message(fe)
	}
	return &Error{Fields: fields}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "alphanum":
		return "must contain only letters and digits"
	case "autoload_method":
		return fmt.Sprintf("must be one of: %s", strings.Join(model.AutoloadMethods, ", "))
	case "datetime":
		return fmt.Sprintf("must be a date in %s format", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}
