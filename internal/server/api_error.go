package server

import (
	"errors"
	"net/http"

	"github.com/Tyrowin/relaychat/internal/channel"
	"github.com/gin-gonic/gin"
)

// ErrorCode names the class of a failed HTTP request.
type ErrorCode string

const (
	CodeValidation       ErrorCode = "ValidationError"
	CodeNotFound         ErrorCode = "NotFoundError"
	CodeMalformedRequest ErrorCode = "MalformedRequest"
	CodeInternal         ErrorCode = "InternalError"
)

// ApiError represents a standardized error response for the API.
type ApiError struct {
	// Code is the HTTP status code.
	Code int `json:"code"`

	// Error is the error class.
	Error ErrorCode `json:"error"`

	// Details is a human-readable explanation.
	Details interface{} `json:"details,omitempty"`
}

func abortWithError(c *gin.Context, status int, code ErrorCode, details interface{}) {
	c.AbortWithStatusJSON(status, ApiError{
		Code:    status,
		Error:   code,
		Details: details,
	})
}

// abortWithDomainError maps registry errors onto HTTP responses.
func abortWithDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, channel.ErrNotFound):
		abortWithError(c, http.StatusNotFound, CodeNotFound, err.Error())
	case channel.IsValidation(err):
		abortWithError(c, http.StatusBadRequest, CodeValidation, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, CodeInternal, err.Error())
	}
}
