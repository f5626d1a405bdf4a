package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/Veraticus/tally/internal/common"
	"github.com/gin-gonic/gin"
)

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrStoreUnavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err and aborts the handler chain.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	body := errorResponse{Message: http.StatusText(status)}

	var verr *common.ValidationError
	switch {
	case errors.As(err, &verr):
		body.Message = "The given data was invalid."
		body.Errors = make(map[string][]string, len(verr.Fields))
		for field, msg := range verr.Fields {
			body.Errors[field] = []string{msg}
		}
	case errors.Is(err, common.ErrInvalidCredentials):
		body.Message = "Invalid credentials."
	case errors.Is(err, common.ErrNotFound):
		body.Message = "Resource not found."
	case errors.Is(err, common.ErrUnauthorized):
		body.Message = "Unauthenticated."
	}

	if status >= http.StatusInternalServerError {
		common.LogError(c.Request.Context(), err, "request failed", common.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		})
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}
