// Package http provides HTTP handlers for the per-user credential vault.
// Plaintext API keys are only ever returned by the reveal endpoint.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	credentialsDomain "github.com/allisson/keyvault/internal/credentials/domain"
	"github.com/allisson/keyvault/internal/credentials/http/dto"
	credentialsUseCase "github.com/allisson/keyvault/internal/credentials/usecase"
	apperrors "github.com/allisson/keyvault/internal/errors"
	"github.com/allisson/keyvault/internal/httputil"
	customValidation "github.com/allisson/keyvault/internal/validation"
)

// CredentialHandler handles HTTP requests for credential operations.
type CredentialHandler struct {
	credentialUseCase credentialsUseCase.CredentialUseCase
	logger            *slog.Logger
}

// NewCredentialHandler creates a new credential handler with required dependencies.
func NewCredentialHandler(
	credentialUseCase credentialsUseCase.CredentialUseCase,
	logger *slog.Logger,
) *CredentialHandler {
	return &CredentialHandler{
		credentialUseCase: credentialUseCase,
		logger:            logger,
	}
}

// ListHandler returns the status of every supported credential kind.
// GET /v1/credentials
func (h *CredentialHandler) ListHandler(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	statuses, err := h.credentialUseCase.Status(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapStatusesToListResponse(statuses))
}

// SaveHandler seals and stores an API key, replacing any previous one of the same kind.
// PUT /v1/credentials/:kind
// Returns 200 OK with the credential status; the key is not echoed.
func (h *CredentialHandler) SaveHandler(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	kind, ok := h.kind(c)
	if !ok {
		return
	}

	var req dto.SaveCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, apperrors.New("invalid JSON body"), h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	status, err := h.credentialUseCase.Save(
		c.Request.Context(),
		userID,
		kind,
		req.APIKey,
		req.Model,
		req.CheckKey,
	)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapStatusToResponse(status))
}

// RevealHandler returns the plaintext API key of kind.
// GET /v1/credentials/:kind
func (h *CredentialHandler) RevealHandler(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	kind, ok := h.kind(c)
	if !ok {
		return
	}

	revealed, err := h.credentialUseCase.Reveal(c.Request.Context(), userID, kind)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, dto.MapRevealedToResponse(revealed))
}

// VerifyHandler asks the provider whether the stored key is still accepted.
// POST /v1/credentials/:kind/verify
func (h *CredentialHandler) VerifyHandler(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	kind, ok := h.kind(c)
	if !ok {
		return
	}

	status, err := h.credentialUseCase.Verify(c.Request.Context(), userID, kind)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapStatusToResponse(status))
}

// DeleteHandler removes the stored key of kind.
// DELETE /v1/credentials/:kind
// Returns 204 No Content.
func (h *CredentialHandler) DeleteHandler(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	kind, ok := h.kind(c)
	if !ok {
		return
	}

	if err := h.credentialUseCase.Delete(c.Request.Context(), userID, kind); err != nil {
		h.handleError(c, err)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

func (h *CredentialHandler) userID(c *gin.Context) (string, bool) {
	userID, ok := GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return "", false
	}
	return userID, true
}

func (h *CredentialHandler) kind(c *gin.Context) (credentialsDomain.Kind, bool) {
	kind, err := credentialsDomain.ParseKind(c.Param("kind"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return "", false
	}
	return kind, true
}

func (h *CredentialHandler) handleError(c *gin.Context, err error) {
	if apperrors.Is(err, credentialsDomain.ErrCredentialUnusable) {
		httputil.HandleDomainErrorGin(
			c,
			http.StatusNotFound,
			"credential_unusable",
			"No usable credential stored",
			h.logger,
		)
		return
	}
	if apperrors.Is(err, credentialsDomain.ErrCredentialChanged) {
		httputil.HandleDomainErrorGin(
			c,
			http.StatusConflict,
			"credential_changed",
			"Credential was replaced during verification, verify again",
			h.logger,
		)
		return
	}
	httputil.HandleErrorGin(c, err, h.logger)
}
