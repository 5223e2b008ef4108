package handlers

import (
	"net/http"

	"github.com/iwtcode/spiroBench/pkg/errors"

	"github.com/gin-gonic/gin"
)

// ErrorResponse возвращает стандартизированный ответ с ошибкой
func (h *Handler) ErrorResponse(c *gin.Context, err error, statusCode int, message string, showError bool) {
	errorMessage := message
	if showError && err != nil {
		errorMessage = message + ": " + err.Error()
	}

	h.logger.Error(message, "error", err, "statusCode", statusCode)
	c.AbortWithStatusJSON(statusCode, gin.H{
		"status": "error",
		"error": gin.H{
			"code":    statusCode,
			"message": errorMessage,
		},
	})
}

// BadRequest возвращает ошибку 400
func (h *Handler) BadRequest(c *gin.Context, err error, message string) {
	if message == "" {
		message = errors.BadRequest
	}
	h.ErrorResponse(c, err, http.StatusBadRequest, message, true)
}

// InternalError возвращает ошибку 500
func (h *Handler) InternalError(c *gin.Context, err error) {
	h.ErrorResponse(c, err, http.StatusInternalServerError, errors.InternalServerError, false)
}

// NotFound возвращает ошибку 404
func (h *Handler) NotFound(c *gin.Context, err error) {
	h.ErrorResponse(c, err, http.StatusNotFound, errors.NotFound, true)
}

// Conflict возвращает ошибку 409
func (h *Handler) Conflict(c *gin.Context, err error) {
	h.ErrorResponse(c, err, errors.ConflictErrorCode, errors.Conflict, true)
}

// Unavailable возвращает ошибку 503, когда ПЛК недоступен
func (h *Handler) Unavailable(c *gin.Context, err error) {
	h.ErrorResponse(c, err, http.StatusServiceUnavailable, errors.ServiceUnavailable, true)
}

// HandleError выбирает ответ по виду ошибки
func (h *Handler) HandleError(c *gin.Context, err error) {
	switch errors.Kind(err) {
	case errors.ErrInputValidation:
		h.BadRequest(c, err, "")
	case errors.ErrNotFound:
		h.NotFound(c, err)
	case errors.ErrAlreadyExists, errors.ErrBusy, errors.ErrEmergency, errors.ErrNoData, errors.ErrSafetyViolation:
		h.Conflict(c, err)
	case errors.ErrConnection, errors.ErrProtocol:
		h.Unavailable(c, err)
	default:
		h.InternalError(c, err)
	}
}

// OK возвращает успешный ответ с сообщением
func (h *Handler) OK(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": message})
}
