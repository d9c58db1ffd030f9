package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"bloghub/internal/apperr"
)

// validate checks request structs. Field limits live in their validate
// tags: names 100, titles 300, excerpts 1000, content 100000, comments
// 5000, categories 100, passwords 8 to 72.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateRequest checks req against its validate tags and returns the
// first failure as a validation error.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Wrap(apperr.KindInternal, "validate request", err)
	}
	return apperr.Validation(fieldMessage(fieldErrs[0]))
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Please provide %s", name)
	case "email":
		return "Please provide a valid email"
	case "min":
		if fe.Field() == "password" {
			return fmt.Sprintf("Password must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("%s is too short (min %s characters)", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s is too long (max %s characters)", name, fe.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", name)
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}
