package router

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CspNonceContextKey = "csp_nonce"

// NonceMiddleware makes a per-session CSP nonce available in the Gin context
// for use in headers and templates.
func NonceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		nonce, err := sessionToken(sessions.Default(c), CspNonceContextKey)
		if err != nil {
			c.AbortWithError(http.StatusInternalServerError, errors.New("failed to generate CSP nonce"))
			return
		}

		c.Set(CspNonceContextKey, nonce)
		c.Next()
	}
}

// ContentSecurityPolicy sets the CSP header on full page loads. HTMX fragments inherit the page's policy.
func ContentSecurityPolicy() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("HX-Request") != "true" {
			nonce := c.GetString(CspNonceContextKey)
			c.Header("Content-Security-Policy",
				"default-src 'self'; "+
					"script-src 'self' https://unpkg.com https://cdn.jsdelivr.net 'nonce-"+nonce+"'; "+
					"style-src 'self' 'unsafe-inline'; "+
					"connect-src 'self'; img-src 'self' data:")
		}
		c.Next()
	}
}
