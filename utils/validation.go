package utils

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationErrors flattens a binding failure into per-field messages.
// Non-validator errors (malformed JSON and friends) come back under "body".
func ValidationErrors(err error) map[string]string {
	fields := map[string]string{}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["body"] = "invalid request body"
		return fields
	}

	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[field] = field + " is required"
		case "email":
			fields[field] = field + " must be a valid email address"
		case "min":
			fields[field] = field + " must be at least " + fe.Param() + " characters"
		case "gte":
			fields[field] = field + " must be " + fe.Param() + " or greater"
		default:
			fields[field] = field + " is invalid"
		}
	}
	return fields
}
