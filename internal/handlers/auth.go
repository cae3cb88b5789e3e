package handlers

import (
	"errors"
	"net/http"

	"github.com/bynikesh/findmyai-sub001/internal/auth"
	"github.com/bynikesh/findmyai-sub001/internal/logger"
	"github.com/bynikesh/findmyai-sub001/internal/util"
	"github.com/gin-gonic/gin"
)

// Register creates an account and returns a token
// POST /api/v1/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	resp, err := h.auth.Register(req)
	if errors.Is(err, auth.ErrUserExists) {
		util.RespondConflict(c, "an account with this email already exists")
		return
	}
	if err != nil {
		logger.ErrorWithFields("Registration failed", err)
		util.RespondInternalError(c, "registration failed")
		return
	}

	logger.Log.Info("User registered", logger.WithUserID(resp.User.ID))
	c.JSON(http.StatusCreated, resp)
}

// Login exchanges email and password for a token
// POST /api/v1/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	resp, err := h.auth.Login(req)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		util.RespondUnauthorized(c, "invalid email or password")
		return
	}
	if err != nil {
		logger.ErrorWithFields("Login failed", err)
		util.RespondInternalError(c, "login failed")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me returns the authenticated user
// GET /api/v1/auth/me
func (h *Handlers) Me(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}
