package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/services-marketplace/internal/logger"
	"github.com/Leganyst/services-marketplace/internal/service"
)

// Response: общий конверт ответов API.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// statusFor сопоставляет доменную ошибку HTTP-статусу.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidRate),
		errors.Is(err, service.ErrInvalidAction),
		errors.Is(err, service.ErrInvalidResolution),
		errors.Is(err, service.ErrInvalidParties),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidRole):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrContractNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrProviderNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrNotProvider):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrRepeatedAction),
		errors.Is(err, service.ErrNotResolvable),
		errors.Is(err, service.ErrDuplicateEngagement),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrConcurrentUpdate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail пишет ответ с ошибкой; внутренние ошибки наружу не отдаются.
func fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
		ErrorResponse(c, code, "internal error")
		return
	}
	ErrorResponse(c, code, err.Error())
}
