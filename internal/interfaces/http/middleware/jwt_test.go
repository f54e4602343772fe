package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warehouse/backend/internal/domain/identity"
	"github.com/warehouse/backend/internal/infrastructure/auth"
	"github.com/warehouse/backend/internal/infrastructure/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newMiddlewareJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:     "middleware-test-secret-at-least-32-chars",
		Expiration: time.Hour,
		Issuer:     "warehouse-backend-test",
	})
}

func protectedRouter(jwtService *auth.JWTService, minimum identity.Role) *gin.Engine {
	engine := gin.New()
	group := engine.Group("/")
	group.Use(JWTAuth(jwtService))
	if minimum != "" {
		group.Use(RequireRole(minimum))
	}
	group.GET("/protected", func(c *gin.Context) {
		ident, ok := GetIdentity(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no identity"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": ident.Username})
	})
	return engine
}

func TestJWTAuth(t *testing.T) {
	jwtService := newMiddlewareJWTService()
	engine := protectedRouter(jwtService, "")

	t.Run("rejects a request without a header", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/protected", nil)

		engine.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("rejects a non-bearer header", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/protected", nil)
		request.Header.Set(AuthHeaderKey, "Basic dXNlcjpwYXNz")

		engine.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("rejects a malformed token", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/protected", nil)
		request.Header.Set(AuthHeaderKey, BearerPrefix+"not-a-token")

		engine.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("passes a valid token and exposes the identity", func(t *testing.T) {
		token, _, err := jwtService.GenerateToken(uuid.New(), "zhangsan", identity.RoleUser)
		require.NoError(t, err)

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/protected", nil)
		request.Header.Set(AuthHeaderKey, BearerPrefix+token)

		engine.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "zhangsan")
	})
}

func TestRequireRole(t *testing.T) {
	jwtService := newMiddlewareJWTService()
	engine := protectedRouter(jwtService, identity.RoleWarehouseAdmin)

	cases := []struct {
		name string
		role identity.Role
		want int
	}{
		{"plain user is refused", identity.RoleUser, http.StatusForbidden},
		{"team leader is refused", identity.RoleTeamLeader, http.StatusForbidden},
		{"warehouse admin passes", identity.RoleWarehouseAdmin, http.StatusOK},
		{"system admin passes", identity.RoleAdmin, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, _, err := jwtService.GenerateToken(uuid.New(), "caller", tc.role)
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/protected", nil)
			request.Header.Set(AuthHeaderKey, BearerPrefix+token)

			engine.ServeHTTP(recorder, request)

			assert.Equal(t, tc.want, recorder.Code)
		})
	}
}
