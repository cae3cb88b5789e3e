package auth

import "github.com/bynikesh/findmyai-sub001/internal/models"

// TokenValidator is what the HTTP middleware needs from the auth service
type TokenValidator interface {
	ValidateToken(tokenString string) (*models.User, error)
}

var _ TokenValidator = (*Service)(nil)
