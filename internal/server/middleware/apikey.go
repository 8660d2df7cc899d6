package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "github.com/skillsenselab/tina-api/pkg/errors"
)

// Message returned on authentication failure, kept in Dutch for client
// compatibility.
const invalidKeyMessage = "Kon API-sleutel niet valideren"

// APIKeyConfig configures the shared-secret authentication middleware.
type APIKeyConfig struct {
	// Header is the request header carrying the key (e.g. "access_token").
	Header string
	// Key is the expected secret value.
	Key string
	// SkipPaths are URL paths that bypass authentication.
	SkipPaths []string
}

// APIKey returns a Gin middleware that validates a shared-secret header
// against the configured key. A missing or mismatched key aborts with 403.
func APIKey(cfg APIKeyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}

		provided := c.GetHeader(cfg.Header)
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(cfg.Key)) != 1 {
			appErr := apperrors.Forbidden(invalidKeyMessage)
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
			return
		}
		c.Next()
	}
}
