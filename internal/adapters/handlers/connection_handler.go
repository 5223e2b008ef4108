package handlers

import (
	"fmt"
	"net/http"

	"github.com/iwtcode/spiroBench/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// Connect подключается к ПЛК стенда.
// @Summary Подключиться к ПЛК
// @Description Открывает соединение Modbus TCP. Пустые host и port берутся из конфигурации.
// @Tags PLC
// @Accept json
// @Produce json
// @Param input body models.ConnectionRequest false "Адрес ПЛК"
// @Success 200 {object} models.ConnectionInfo
// @Failure 503 {object} models.ErrorResponse "ПЛК недоступен"
// @Router /plc/connect [post]
func (h *Handler) Connect(c *gin.Context) {
	var req models.ConnectionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err, "Invalid request payload")
			return
		}
	}

	h.logger.Info("Attempting to connect to PLC", "host", req.Host, "port", req.Port)

	info, err := h.usecase.Connect(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.logger.Info("Successfully connected to PLC", "endpoint", info.Endpoint)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "connection_info": info})
}

// Disconnect закрывает соединение с ПЛК. Сеанс с ПЛК прерывается.
// @Summary Отключиться от ПЛК
// @Tags PLC
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Router /plc/disconnect [post]
func (h *Handler) Disconnect(c *gin.Context) {
	if err := h.usecase.Disconnect(); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, "PLC disconnected")
}

// WriteRegister записывает регистр ПЛК (сервисный доступ).
// @Summary Записать регистр
// @Tags PLC
// @Accept json
// @Produce json
// @Param input body models.WriteRequest true "Регистр в нумерации 4xxxx и значение"
// @Success 200 {object} models.MessageResponse
// @Failure 409 {object} models.ErrorResponse "Активна аварийная остановка"
// @Router /plc/write [post]
func (h *Handler) WriteRegister(c *gin.Context) {
	var req models.WriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request payload")
		return
	}

	if err := h.usecase.WriteRegister(req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, fmt.Sprintf("register %d = %d", req.Register, req.Value))
}
