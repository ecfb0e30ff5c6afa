package router

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Define keys for storing the token in the session and context.
const (
	csrfTokenSessionKey = "csrf_token"
	csrfTokenFormKey    = "_csrf"
	csrfTokenContextKey = "csrf_token"
	csrfTokenHeaderKey  = "X-CSRF-Token"
)

// GenerateSecureToken creates a cryptographically secure random token.
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// sessionToken returns the value stored under key, creating and saving a fresh token if there is none.
func sessionToken(session sessions.Session, key string) (string, error) {
	if token, ok := session.Get(key).(string); ok && token != "" {
		return token, nil
	}
	token, err := GenerateSecureToken(32)
	if err != nil {
		return "", err
	}
	session.Set(key, token)
	if err := session.Save(); err != nil {
		return "", err
	}
	return token, nil
}

// CSRFProtection guards the calculator form. The token lives in the session and must come
// back either as the _csrf form field or the X-CSRF-Token header HTMX sends.
func CSRFProtection() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		token, err := sessionToken(session, csrfTokenSessionKey)
		if err != nil {
			c.AbortWithError(http.StatusInternalServerError, errors.New("failed to generate CSRF token"))
			return
		}

		// Make the token available for the templates.
		c.Set(csrfTokenContextKey, token)

		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			submitted := c.GetHeader(csrfTokenHeaderKey)
			if submitted == "" {
				submitted = c.PostForm(csrfTokenFormKey)
			}

			if submitted == "" || submitted != token {
				if c.GetHeader("HX-Request") == "true" {
					// Reload the page so the browser picks up a fresh token.
					c.Header("HX-Redirect", "/")
					c.AbortWithStatus(http.StatusForbidden)
					return
				}
				c.AbortWithError(http.StatusForbidden, errors.New("invalid CSRF token"))
				return
			}
		}

		c.Next()
	}
}
