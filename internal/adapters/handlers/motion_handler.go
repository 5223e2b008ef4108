package handlers

import (
	"net/http"

	"github.com/iwtcode/spiroBench/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// StartMotion запускает сеанс движения.
// @Summary Запустить движение
// @Description В режиме simulation воспроизводит сохраненную кривую, в режиме manual - волну.
// @Tags Motion
// @Accept json
// @Produce json
// @Param input body models.MotionRequest true "Параметры движения"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse "Неверные параметры или кривая превышает объем стенда"
// @Failure 409 {object} models.ErrorResponse "Движение уже идет или активна аварийная остановка"
// @Router /motion/start [post]
func (h *Handler) StartMotion(c *gin.Context) {
	var req models.MotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request payload")
		return
	}

	h.logger.Info("Attempting to start motion", "mode", req.Mode, "curve", req.Curve, "wave", req.Wave)

	telemetry, err := h.usecase.StartMotion(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.logger.Info("Motion started", "sessionID", telemetry.SessionID, "connectivity", telemetry.Connectivity)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "telemetry": telemetry})
}

// StopMotion просит остановить движение и вернуться в ноль.
// @Summary Остановить движение
// @Tags Motion
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse "Нет активного движения"
// @Router /motion/stop [post]
func (h *Handler) StopMotion(c *gin.Context) {
	if err := h.usecase.StopMotion(); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, "stop requested")
}

// EmergencyStop немедленно останавливает стенд.
// @Summary Аварийная остановка
// @Tags Motion
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Router /motion/emergency [post]
func (h *Handler) EmergencyStop(c *gin.Context) {
	if err := h.usecase.EmergencyStop(); err != nil {
		// блокировка уже установлена, ошибка относится только к записи в ПЛК
		h.Unavailable(c, err)
		return
	}
	h.OK(c, "emergency stop engaged")
}

// Rearm снимает аварийную блокировку.
// @Summary Повторный взвод
// @Tags Motion
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Router /motion/rearm [post]
func (h *Handler) Rearm(c *gin.Context) {
	if err := h.usecase.Rearm(); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, "system rearmed")
}

// StartCalibration запускает калибровку.
// @Summary Начать калибровку
// @Tags Motion
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Router /motion/calibrate/start [post]
func (h *Handler) StartCalibration(c *gin.Context) {
	if err := h.usecase.StartCalibration(); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, "calibration started")
}

// EndCalibration завершает калибровку.
// @Summary Завершить калибровку
// @Tags Motion
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Router /motion/calibrate/stop [post]
func (h *Handler) EndCalibration(c *gin.Context) {
	if err := h.usecase.EndCalibration(); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, "calibration finished")
}

// Status возвращает состояние стенда.
// @Summary Состояние стенда
// @Tags Motion
// @Produce json
// @Success 200 {object} models.BenchStatus
// @Router /motion/status [get]
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "bench": h.usecase.Status()})
}

// Fault сообщает активную неисправность: срабатывание защиты дает 409,
// потеря связи с ПЛК 503.
// @Summary Активная неисправность
// @Tags Motion
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /motion/fault [get]
func (h *Handler) Fault(c *gin.Context) {
	if err := h.usecase.Fault(); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, "no active fault")
}

// SaveTrace сохраняет кривую, снятую в последнем сеансе.
// @Summary Сохранить снятую кривую
// @Tags Curves
// @Accept json
// @Produce json
// @Param input body models.SaveTraceRequest true "Имя кривой"
// @Success 200 {object} models.MessageResponse
// @Failure 409 {object} models.ErrorResponse "Имя занято, нет данных или идет движение"
// @Router /traces/save [post]
func (h *Handler) SaveTrace(c *gin.Context) {
	var req models.SaveTraceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Missing or invalid name")
		return
	}
	if err := h.usecase.SaveTrace(req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, "trace saved as "+req.Name)
}

// Live подписывает клиента на события стенда по websocket.
func (h *Handler) Live(c *gin.Context) {
	h.live.ServeWS(c.Writer, c.Request)
}
