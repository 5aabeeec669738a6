package utils

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError carries the formatted messages of a failed struct validation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	// Format validation errors
	var messages []string
	for _, err := range validationErrors {
		field := strings.ToLower(err.Field())
		tag := err.Tag()
		param := err.Param()

		switch tag {
		case "required":
			messages = append(messages, field+" is required")
		case "required_without":
			messages = append(messages, field+" is required when "+strings.ToLower(param)+" is not set")
		case "min":
			messages = append(messages, field+" must have at least "+param+" entries")
		case "max":
			messages = append(messages, field+" must be at most "+param+" characters")
		case "email":
			messages = append(messages, field+" must be a valid email")
		case "oneof":
			messages = append(messages, field+" must be one of: "+param)
		case "eqfield":
			messages = append(messages, field+" must match "+strings.ToLower(param))
		default:
			messages = append(messages, field+" is invalid")
		}
	}

	return &ValidationError{Message: strings.Join(messages, ", ")}
}
