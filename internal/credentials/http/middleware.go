package http

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/keyvault/internal/errors"
	"github.com/allisson/keyvault/internal/httputil"
)

const maxUserIDLength = 255

// StoreSelector picks the credential store tier that serves a request.
type StoreSelector interface {
	Select(ctx context.Context) (context.Context, string, error)
}

// IdentityMiddleware reads the user identifier set by the authenticating proxy
// from header and stores it in the request context.
//
// Error handling:
//   - Missing or blank header → 401 Unauthorized
//   - Identifier longer than 255 bytes → 401 Unauthorized
func IdentityMiddleware(header string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(header))
		if userID == "" || len(userID) > maxUserIDLength {
			logger.Debug("identity missing or malformed", slog.String("header", header))
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

// StoreSelectionMiddleware chooses the credential store tier once per request.
// Every repository call made while serving the request uses the chosen tier.
func StoreSelectionMiddleware(selector StoreSelector, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, tier, err := selector.Select(c.Request.Context())
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Header("X-Credential-Store", tier)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
