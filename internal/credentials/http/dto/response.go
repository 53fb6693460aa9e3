package dto

import (
	"time"

	credentialsDomain "github.com/allisson/keyvault/internal/credentials/domain"
)

// StatusResponse is the non-secret view of one credential.
type StatusResponse struct {
	Kind       string     `json:"kind"`
	Configured bool       `json:"configured"`
	Model      string     `json:"model,omitempty"`
	Validated  bool       `json:"validated"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// ListStatusResponse wraps the statuses of every supported kind.
type ListStatusResponse struct {
	Data []StatusResponse `json:"data"`
}

// RevealResponse carries a plaintext API key. It is only returned by the reveal endpoint.
type RevealResponse struct {
	Kind   string `json:"kind"`
	APIKey string `json:"api_key"`
	Model  string `json:"model,omitempty"`
}

// MapStatusToResponse converts a domain status to an API response.
func MapStatusToResponse(status *credentialsDomain.Status) StatusResponse {
	return StatusResponse{
		Kind:       status.Kind.String(),
		Configured: status.Configured,
		Model:      status.Model,
		Validated:  status.Validated,
		UpdatedAt:  status.UpdatedAt,
	}
}

// MapStatusesToListResponse converts domain statuses to an API response.
func MapStatusesToListResponse(statuses []*credentialsDomain.Status) ListStatusResponse {
	data := make([]StatusResponse, 0, len(statuses))
	for _, status := range statuses {
		data = append(data, MapStatusToResponse(status))
	}
	return ListStatusResponse{Data: data}
}

// MapRevealedToResponse converts an unsealed credential to an API response.
func MapRevealedToResponse(revealed *credentialsDomain.Revealed) RevealResponse {
	return RevealResponse{
		Kind:   revealed.Kind.String(),
		APIKey: revealed.APIKey,
		Model:  revealed.Model,
	}
}
