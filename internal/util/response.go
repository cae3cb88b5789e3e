package util

import (
	"net/http"

	"github.com/bynikesh/findmyai-sub001/internal/errors"
	"github.com/bynikesh/findmyai-sub001/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// RespondWithAPIError sends a structured API error response
func RespondWithAPIError(c *gin.Context, apiErr *errors.APIError) {
	fields := []zap.Field{
		zap.String("code", string(apiErr.Code)),
		zap.String("message", apiErr.Message),
		zap.String("path", c.FullPath()),
	}
	if apiErr.Status >= http.StatusInternalServerError {
		logger.Log.Error("API error", append(fields, zap.String("details", apiErr.Details))...)
		// internals stay in the log
		apiErr = &errors.APIError{Code: apiErr.Code, Message: apiErr.Message, Status: apiErr.Status}
	} else if apiErr.Status >= http.StatusBadRequest {
		logger.Log.Warn("API error", append(fields, zap.String("field", apiErr.Field))...)
	}

	c.JSON(apiErr.Status, ErrorResponse{
		Code:    string(apiErr.Code),
		Message: apiErr.Message,
		Field:   apiErr.Field,
		Details: apiErr.Details,
	})
}

func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "user not authenticated"
	}
	RespondWithAPIError(c, errors.Unauthorized(message))
}

func RespondForbidden(c *gin.Context, message string) {
	if message == "" {
		message = "forbidden"
	}
	RespondWithAPIError(c, errors.Forbidden(message))
}

func RespondNotFound(c *gin.Context, resource string) {
	RespondWithAPIError(c, errors.NotFound(resource))
}

func RespondBadRequest(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.BadRequest(message))
}

func RespondInternalError(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.InternalError(message))
}

func RespondConflict(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.Conflict(message))
}

func RespondValidationError(c *gin.Context, field, message string) {
	RespondWithAPIError(c, errors.ValidationError(field, message))
}

// HandleDBError responds for a non-nil GORM error and reports whether it did
func HandleDBError(c *gin.Context, err error, resourceName string) bool {
	if err == nil {
		return false
	}
	RespondWithAPIError(c, errors.FromDB(err, resourceName))
	return true
}
