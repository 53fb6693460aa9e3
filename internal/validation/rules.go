// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/keyvault/internal/errors"
)

var (
	// apiKeyRegex accepts the printable, space-free charset provider keys use.
	apiKeyRegex = regexp.MustCompile(`^[\x21-\x7E]+$`)

	// modelNameRegex accepts provider model identifiers such as "gemini-1.5-flash".
	modelNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:/-]*$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// APIKey validates that a credential is printable ASCII without whitespace.
var APIKey = validation.NewStringRuleWithError(
	func(s string) bool {
		return apiKeyRegex.MatchString(s)
	},
	validation.NewError("validation_api_key_format", "must be printable characters without whitespace"),
)

// ModelName validates a provider model identifier.
var ModelName = validation.NewStringRuleWithError(
	func(s string) bool {
		return modelNameRegex.MatchString(s)
	},
	validation.NewError("validation_model_name_format", "must be a valid model name"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
