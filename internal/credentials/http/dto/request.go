// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/keyvault/internal/validation"
)

// SaveCredentialRequest contains the parameters for saving a credential.
// The kind is taken from the URL, not the body.
type SaveCredentialRequest struct {
	APIKey string `json:"api_key"`
	Model  string `json:"model,omitempty"`
	// CheckKey asks the provider to accept the key before it is stored.
	CheckKey bool `json:"validate"`
}

// Validate checks if the save credential request is valid.
func (r *SaveCredentialRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.APIKey,
			validation.Required,
			customValidation.NotBlank,
			customValidation.APIKey,
			validation.Length(1, 512),
		),
		validation.Field(&r.Model,
			customValidation.ModelName,
			validation.Length(0, 128),
		),
	)
}
