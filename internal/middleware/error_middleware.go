package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atomclub/attendance/internal/app/models/dto"
	"github.com/atomclub/attendance/internal/pkg/apperrors"
	"github.com/atomclub/attendance/internal/pkg/logger"
)

// HandleAPIError maps application errors onto the error response contract.
// Controllers call it with any error that escaped the service layer.
func HandleAPIError(c *gin.Context, err error) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed").
			WithViolations(verr.Violations)
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrInvalidTransition):
		c.JSON(http.StatusConflict, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidTransition, messageOf(err, "Invalid status transition"))))
	case errors.Is(err, apperrors.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeForbidden, messageOf(err, "Permission denied"))))
	case errors.Is(err, apperrors.ErrRequestNotFound),
		errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrFacultyNotFound),
		errors.Is(err, apperrors.ErrResourceNotFound):
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, messageOf(err, "Resource not found"))))
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials")))
	case errors.Is(err, apperrors.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")))
	case errors.Is(err, apperrors.ErrTokenRevoked),
		errors.Is(err, apperrors.ErrTokenInvalid):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")))
	case errors.Is(err, apperrors.ErrTokenNotFound):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeTokenNotFound, "Token not found")))
	case errors.Is(err, apperrors.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, messageOf(err, "Validation failed"))))
	default:
		logger.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Msg("Unhandled error")
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
	}
}

// messageOf prefers the wrapped application message over the generic
// fallback, so clients see "cannot approve a request in status DECLINED"
// rather than just "Invalid status transition".
func messageOf(err error, fallback string) string {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	return fallback
}
