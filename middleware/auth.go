package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/repairhub/repairhub-api/config"
	"github.com/repairhub/repairhub-api/models"
)

// Context keys written by EnsureValidToken
const (
	UserIDKey = "user_id"
	ClaimsKey = "validated_claims"
)

const invalidTokenBody = `{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`

// CustomClaims are the application claims carried by access tokens
type CustomClaims struct {
	Role string `json:"https://repairhub.app/role"`
}

// Validate rejects a role claim naming an unknown role. Tokens without one are accepted;
// the stored user decides the effective role either way.
func (c CustomClaims) Validate(ctx context.Context) error {
	if c.Role == "" || models.Role(c.Role).Valid() {
		return nil
	}
	return fmt.Errorf("unknown role claim %q", c.Role)
}

// newTokenValidator builds an RS256 validator for tokens issued by the configured Auth0 tenant.
// Signing keys are fetched lazily from the tenant's JWKS endpoint.
func newTokenValidator(cfg *config.Config) (*validator.Validator, error) {
	if cfg.Auth0Domain == "" {
		return nil, errors.New("AUTH0_DOMAIN is required")
	}

	issuerURL, err := url.Parse("https://" + cfg.Auth0Domain + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid issuer url: %w", err)
	}
	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	return validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{cfg.Auth0Audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
}

// EnsureValidToken rejects requests without a valid bearer token and stores the token
// subject and claims for the handlers behind it
func EnsureValidToken(cfg *config.Config) gin.HandlerFunc {
	logger := config.Logger()

	tokenValidator, err := newTokenValidator(cfg)
	if err != nil {
		logger.Fatal("Failed to set up the JWT validator", zap.Error(err))
	}

	checkJWT := jwtmiddleware.New(
		tokenValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Info("Rejected request token", zap.String("path", r.URL.Path), zap.Error(err))
			writeInvalidToken(w, logger)
		}),
	).CheckJWT

	return func(c *gin.Context) {
		authenticated := false

		checkJWT(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
			if !ok {
				return
			}
			authenticated = true

			c.Request = r
			c.Set(UserIDKey, claims.RegisteredClaims.Subject)
			c.Set(ClaimsKey, claims)
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)

		// the rest of the chain must not run once the token was rejected
		if !authenticated {
			if !c.Writer.Written() {
				writeInvalidToken(c.Writer, logger)
			}
			c.Abort()
		}
	}
}

func writeInvalidToken(w http.ResponseWriter, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if _, err := w.Write([]byte(invalidTokenBody)); err != nil {
		logger.Warn("Failed to write error response", zap.Error(err))
	}
}

// Subject returns the token subject (the Auth0 user id) stored by EnsureValidToken
func Subject(c *gin.Context) (string, error) {
	value, exists := c.Get(UserIDKey)
	if !exists {
		return "", &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	subject, ok := value.(string)
	if !ok || subject == "" {
		return "", &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a non-empty string"}
	}
	return subject, nil
}

// Claims returns the validated token stored by EnsureValidToken
func Claims(c *gin.Context) (*validator.ValidatedClaims, error) {
	value, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	claims, ok := value.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}
	return claims, nil
}

// ClaimedRole returns the role claim of the token, or "" when the token carries none
func ClaimedRole(c *gin.Context) models.Role {
	claims, err := Claims(c)
	if err != nil {
		return ""
	}
	custom, ok := claims.CustomClaims.(*CustomClaims)
	if !ok {
		return ""
	}
	return models.Role(custom.Role)
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
