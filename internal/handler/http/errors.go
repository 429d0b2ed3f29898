package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"classroom-backend/internal/service"
)

// HandleServiceError 将服务层业务错误映射为 HTTP 状态码。
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAuthenticationFailed):
		ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrRegistrationFailed),
		errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, service.ErrAlreadyRequested):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrClassroomNotFound),
		errors.Is(err, service.ErrInvalidRoomCode),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrMaterialNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotMember):
		ErrorResponse(c, http.StatusForbidden, err.Error())
	default:
		logrus.WithError(err).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
