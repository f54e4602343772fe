package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/warehouse/backend/internal/domain/identity"
	"github.com/warehouse/backend/internal/infrastructure/auth"
	"github.com/warehouse/backend/internal/interfaces/http/dto"
)

// Context keys set by the JWT middleware
const (
	IdentityKey   = "auth_identity"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTAuth validates the bearer token and stores the caller's identity on the
// request context. Requests without a valid token get a 401.
func JWTAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			abortUnauthorized(c, "Missing token")
			return
		}

		ident, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		c.Set(IdentityKey, ident)
		c.Next()
	}
}

// GetIdentity returns the authenticated caller stored by JWTAuth
func GetIdentity(c *gin.Context) (*auth.Identity, bool) {
	value, exists := c.Get(IdentityKey)
	if !exists {
		return nil, false
	}
	ident, ok := value.(*auth.Identity)
	return ident, ok
}

// RequireRole rejects callers whose role is below the minimum with a 403
func RequireRole(minimum identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := GetIdentity(c)
		if !ok {
			abortUnauthorized(c, "Authentication required")
			return
		}
		if !ident.Role.AtLeast(minimum) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse("FORBIDDEN", "Insufficient authority for this operation"))
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}
