package auth

import (
	"testing"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/database"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db          *gorm.DB
	authService *Service
}

func (s *AuthServiceTestSuite) SetupTest() {
	db, err := database.OpenSQLite(":memory:")
	s.Require().NoError(err)
	s.Require().NoError(database.MigrateDB(db))

	s.db = db
	s.authService = NewService(db, []byte("test_jwt_secret_key"), time.Hour)
}

func (s *AuthServiceTestSuite) TearDownTest() {
	sqlDB, _ := s.db.DB()
	_ = sqlDB.Close()
}

func (s *AuthServiceTestSuite) register(email string) *AuthResponse {
	resp, err := s.authService.Register(RegisterRequest{
		Email:    email,
		Name:     "Test User",
		Password: "correct-horse-battery",
	})
	s.Require().NoError(err)
	return resp
}

func (s *AuthServiceTestSuite) TestRegisterIssuesToken() {
	resp := s.register("ada@example.com")

	s.NotEmpty(resp.Token)
	s.Equal("ada@example.com", resp.User.Email)
	s.False(resp.User.IsAdmin)
	s.WithinDuration(time.Now().Add(time.Hour), resp.ExpiresAt, 5*time.Second)
	s.NotEqual("correct-horse-battery", resp.User.PasswordHash)
}

func (s *AuthServiceTestSuite) TestRegisterRejectsDuplicateEmailCaseInsensitive() {
	s.register("ada@example.com")

	_, err := s.authService.Register(RegisterRequest{Email: "ADA@example.com", Name: "x", Password: "whatever123"})
	s.ErrorIs(err, ErrUserExists)
}

func (s *AuthServiceTestSuite) TestLogin() {
	s.register("ada@example.com")

	resp, err := s.authService.Login(LoginRequest{Email: "Ada@Example.com", Password: "correct-horse-battery"})
	s.Require().NoError(err)
	s.NotEmpty(resp.Token)
	s.NotNil(resp.User.LastActiveAt)

	_, err = s.authService.Login(LoginRequest{Email: "ada@example.com", Password: "wrong"})
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.authService.Login(LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *AuthServiceTestSuite) TestValidateToken() {
	resp := s.register("ada@example.com")

	user, err := s.authService.ValidateToken(resp.Token)
	s.Require().NoError(err)
	s.Equal(resp.User.ID, user.ID)

	_, err = s.authService.ValidateToken("not-a-token")
	s.ErrorIs(err, ErrInvalidToken)

	other := NewService(s.db, []byte("another_secret"), time.Hour)
	_, err = other.ValidateToken(resp.Token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *AuthServiceTestSuite) TestValidateTokenRejectsExpired() {
	resp := s.register("ada@example.com")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": resp.User.ID,
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})
	token, err := expired.SignedString([]byte("test_jwt_secret_key"))
	s.Require().NoError(err)

	_, err = s.authService.ValidateToken(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *AuthServiceTestSuite) TestPromoteAdmin() {
	s.register("ada@example.com")

	user, err := s.authService.PromoteAdmin("ADA@example.com")
	s.Require().NoError(err)
	s.True(user.IsAdmin)

	found, err := s.authService.FindUserByEmail("ada@example.com")
	s.Require().NoError(err)
	s.True(found.IsAdmin)

	_, err = s.authService.PromoteAdmin("ghost@example.com")
	s.ErrorIs(err, ErrUserNotFound)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
