package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bolx/internal/domain"
	"bolx/internal/middleware"
	"bolx/internal/service"
	"bolx/mocks"
)

func newEngine(authSvc service.AuthService, roles ...domain.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{middleware.AuthMiddleware(authSvc)}
	if len(roles) > 0 {
		handlers = append(handlers, middleware.RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": middleware.GetSubject(c), "role": middleware.GetRole(c)})
	})
	r.GET("/protected", handlers...)
	return r
}

func serve(r *gin.Engine, header, value string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_Bearer(t *testing.T) {
	authSvc := new(mocks.MockAuthService)
	claims := &service.Claims{Role: domain.RoleAdmin}
	claims.Subject = "ops"
	authSvc.On("ValidateToken", "good-token").Return(claims, nil)

	w := serve(newEngine(authSvc), "Authorization", "Bearer good-token")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subject":"ops"`)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)
}

func TestAuthMiddleware_InvalidBearer(t *testing.T) {
	authSvc := new(mocks.MockAuthService)
	authSvc.On("ValidateToken", "bad").Return(nil, domain.ErrUnauthorized)

	w := serve(newEngine(authSvc), "Authorization", "Bearer bad")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_APIKey(t *testing.T) {
	authSvc := new(mocks.MockAuthService)
	claims := &service.Claims{Role: domain.RoleService}
	claims.Subject = "api-key"
	authSvc.On("ValidateAPIKey", "k-123").Return(claims, nil)

	w := serve(newEngine(authSvc), middleware.APIKeyHeader, "k-123")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"service"`)
	authSvc.AssertNotCalled(t, "ValidateToken", mock.Anything)
}

func TestAuthMiddleware_MissingCredentials(t *testing.T) {
	authSvc := new(mocks.MockAuthService)

	w := serve(newEngine(authSvc), "", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing credentials")
}

func TestRequireRole_Forbidden(t *testing.T) {
	authSvc := new(mocks.MockAuthService)
	claims := &service.Claims{Role: domain.RoleService}
	claims.Subject = "api-key"
	authSvc.On("ValidateAPIKey", "k-123").Return(claims, nil)

	w := serve(newEngine(authSvc, domain.RoleAdmin), middleware.APIKeyHeader, "k-123")

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestNoAuth_GrantsAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", middleware.NoAuth(), middleware.RequireRole(domain.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := serve(r, "", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
}
