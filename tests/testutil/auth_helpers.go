package testutil

import (
	"net/http"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"

	"github.com/repairhub/repairhub-api/middleware"
)

// MockValidatedClaims creates the claims EnsureValidToken would store for subject
func MockValidatedClaims(subject, role string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  "https://test.auth0.com/",
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{Role: role},
	}
}

// MockAuthMiddleware stores claims in the context the way EnsureValidToken does
func MockAuthMiddleware(auth0ID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, auth0ID)
		c.Set(middleware.ClaimsKey, MockValidatedClaims(auth0ID, role))
		c.Next()
	}
}

// TestUserHeader carries the Auth0 subject HeaderAuthMiddleware authenticates as
const TestUserHeader = "X-Test-User"

// HeaderAuthMiddleware authenticates each request as the subject in TestUserHeader and
// rejects requests without one the way EnsureValidToken rejects a missing token
func HeaderAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetHeader(TestUserHeader)
		if subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_TOKEN",
					"message": "Failed to validate JWT.",
				},
			})
			return
		}
		c.Set(middleware.UserIDKey, subject)
		c.Set(middleware.ClaimsKey, MockValidatedClaims(subject, ""))
		c.Next()
	}
}

// CreateTestRouter creates a gin engine in test mode
func CreateTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}
