package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bynikesh/findmyai-sub001/internal/models"
	"github.com/bynikesh/findmyai-sub001/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeValidator map[string]*models.User

func (f fakeValidator) ValidateToken(token string) (*models.User, error) {
	if u, ok := f[token]; ok {
		return u, nil
	}
	return nil, errors.New("bad token")
}

func authRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator := fakeValidator{
		"user-token":  {ID: "u1", Email: "u@example.com"},
		"admin-token": {ID: "a1", Email: "a@example.com", IsAdmin: true},
	}

	router := gin.New()
	router.GET("/me", RequireAuth(validator), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(util.ContextUserIDKey))
	})
	router.GET("/admin", RequireAuth(validator), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/public", OptionalAuth(validator), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(util.ContextUserIDKey))
	})
	return router
}

func request(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	router := authRouter()

	assert.Equal(t, http.StatusUnauthorized, request(router, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, request(router, "/me", "garbage").Code)

	w := request(router, "/me", "user-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	router := authRouter()

	assert.Equal(t, http.StatusUnauthorized, request(router, "/admin", "").Code)
	assert.Equal(t, http.StatusForbidden, request(router, "/admin", "user-token").Code)
	assert.Equal(t, http.StatusOK, request(router, "/admin", "admin-token").Code)
}

func TestOptionalAuth(t *testing.T) {
	router := authRouter()

	w := request(router, "/public", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = request(router, "/public", "garbage")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = request(router, "/public", "admin-token")
	assert.Equal(t, "a1", w.Body.String())
}
