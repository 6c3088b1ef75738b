package testutil

import (
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/nocyshop/nocy-shop-api/middleware"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, issuer, email string, scopes []string) *validator.ValidatedClaims {
	scopeString := ""
	if len(scopes) > 0 {
		for i, scope := range scopes {
			if i > 0 {
				scopeString += " "
			}
			scopeString += scope
		}
	}

	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: scopeString,
			Email: email,
		},
	}
}

// SetMockAuthContext sets up a mock authenticated context for testing.
// It mirrors what EnsureValidToken stores after a successful validation.
func SetMockAuthContext(c *gin.Context, userID, email string, scopes []string) {
	claims := MockValidatedClaims(userID, "https://test.auth0.com/", email, scopes)
	c.Set("user_id", userID)
	c.Set("user_email", email)
	c.Set("validated_claims", claims)
}

// MockAdminMiddleware returns a middleware that simulates a validated admin
// token for the given email, for routes normally behind EnsureValidToken
// and RequireAdmin.
func MockAdminMiddleware(email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockAuthContext(c, "auth0|admin", email, nil)
		c.Next()
	}
}

// CreateTestContext creates a test Gin context
func CreateTestContext() (*gin.Context, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	c, engine := gin.CreateTestContext(nil)
	return c, engine
}
