package types

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	})
	return v
}

// IsValidPhone accepts 10 to 15 digits with an optional leading plus.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(strings.TrimSpace(phone))
}

// validateStruct reports the first failing field in a readable form.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return errors.New(fe.Field() + " is required")
	case "max":
		return errors.New(fe.Field() + " must be at most " + fe.Param() + " characters")
	default:
		return errors.New(fe.Field() + " is invalid")
	}
}
