package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/auth"
	"github.com/bynikesh/findmyai-sub001/internal/database"
	"github.com/bynikesh/findmyai-sub001/internal/models"
	"github.com/bynikesh/findmyai-sub001/internal/repository"
	"github.com/bynikesh/findmyai-sub001/internal/search"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// HandlersTestSuite runs the API against an in-memory SQLite catalog
type HandlersTestSuite struct {
	suite.Suite
	db       *gorm.DB
	repo     *repository.ToolRepository
	auth     *auth.Service
	handlers *Handlers
	router   *gin.Engine

	userToken  string
	userID     string
	otherToken string
	adminToken string
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (s *HandlersTestSuite) SetupTest() {
	db, err := database.OpenSQLite(":memory:")
	s.Require().NoError(err)
	s.Require().NoError(database.MigrateDB(db))
	s.db = db

	s.repo = repository.NewToolRepository(db)
	s.auth = auth.NewService(db, []byte("test-secret"), time.Hour)
	s.handlers = NewHandlers(s.repo, s.auth)
	s.handlers.SetSearchService(search.NewService(nil, s.repo, nil))

	s.userToken, s.userID = s.register("user@example.com")
	s.otherToken, _ = s.register("other@example.com")
	s.adminToken, _ = s.register("admin@example.com")
	_, err = s.auth.PromoteAdmin("admin@example.com")
	s.Require().NoError(err)

	s.router = s.newRouter()
}

func (s *HandlersTestSuite) newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	s.handlers.RegisterRoutes(r, s.auth)
	return r
}

func (s *HandlersTestSuite) register(email string) (token, id string) {
	resp, err := s.auth.Register(auth.RegisterRequest{Email: email, Name: "Tester", Password: "password123"})
	s.Require().NoError(err)
	return resp.Token, resp.User.ID
}

func (s *HandlersTestSuite) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlersTestSuite) decode(w *httptest.ResponseRecorder, dest interface{}) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

func (s *HandlersTestSuite) createTool(name string, verified bool, categories ...string) *models.Tool {
	tool := &models.Tool{
		Name:       name,
		WebsiteURL: "https://" + name + ".example.com",
		Pricing:    []string{models.PricingFreemium},
		Verified:   verified,
	}
	s.Require().NoError(s.repo.CreateTool(context.Background(), tool, categories, []string{"ai"}))
	return tool
}

func (s *HandlersTestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)

	var body map[string]interface{}
	s.decode(w, &body)
	s.Equal("ok", body["status"])
	s.Equal("sql", body["checks"].(map[string]interface{})["search"])
}

func (s *HandlersTestSuite) TestAuthFlow() {
	w := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "new@example.com", "name": "New", "password": "password123",
	})
	s.Equal(http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "NEW@example.com", "name": "Again", "password": "password123",
	})
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "new@example.com", "password": "wrong-password",
	})
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "new@example.com", "password": "password123",
	})
	s.Require().Equal(http.StatusOK, w.Code)
	var resp auth.AuthResponse
	s.decode(w, &resp)
	s.NotEmpty(resp.Token)

	w = s.do(http.MethodGet, "/api/v1/auth/me", resp.Token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var me models.User
	s.decode(w, &me)
	s.Equal("new@example.com", me.Email)
	s.False(me.IsAdmin)
}

func (s *HandlersTestSuite) TestAdminRoutesRequireAdmin() {
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/admin/tools", "", nil).Code)
	s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/api/v1/admin/tools", s.userToken, nil).Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/v1/admin/tools", s.adminToken, nil).Code)
}
