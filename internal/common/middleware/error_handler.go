package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/common/errors"
	"marketplace-backend/internal/common/logger"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Message string           `json:"message"`
	Code    errors.ErrorCode `json:"code,omitempty"`
}

// Recovery converts panics into a logged 500 response.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Interface("panic", recovered).
			Msg("panic recovered")

		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
			Code:    errors.ErrCodeInternal,
		})
	})
}

// RespondError writes the HTTP representation of an application error.
func RespondError(c *gin.Context, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.Wrap(err, errors.ErrCodeInternal, "Internal server error")
	}

	logAppError(c, appErr)

	c.JSON(httpStatus(appErr.Code), ErrorResponse{
		Message: appErr.Message,
		Code:    appErr.Code,
	})
}

func httpStatus(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeValidation:
		return http.StatusBadRequest
	case errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrCodeForbidden:
		return http.StatusForbidden
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeConflict:
		return http.StatusConflict
	case errors.ErrCodeAssetUpstream:
		return http.StatusBadGateway
	case errors.ErrCodeCache:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func logAppError(c *gin.Context, appErr *errors.AppError) {
	event := logger.Info()
	if appErr.IsInternal() {
		event = logger.Error()
	} else if appErr.IsAuth() {
		event = logger.Warn()
	}

	event.
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("error_code", string(appErr.Code)).
		Err(appErr).
		Msg("request failed")
}
