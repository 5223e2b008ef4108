package handlers

import (
	"net/http"

	"github.com/iwtcode/spiroBench/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// ListCurves возвращает имена сохраненных кривых.
// @Summary Список кривых
// @Tags Curves
// @Produce json
// @Success 200 {object} models.CurveListResponse
// @Router /curves [get]
func (h *Handler) ListCurves(c *gin.Context) {
	names, err := h.usecase.ListCurves()
	if err != nil {
		h.InternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CurveListResponse{Status: "ok", Count: len(names), Names: names})
}

// GetCurve возвращает кривую с данными пациента.
// @Summary Получить кривую
// @Tags Curves
// @Produce json
// @Param name path string true "Имя кривой"
// @Success 200 {object} models.CurveResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /curves/{name} [get]
func (h *Handler) GetCurve(c *gin.Context) {
	resp, err := h.usecase.GetCurve(c.Param("name"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ImportCurve сохраняет готовую кривую.
// @Summary Загрузить кривую
// @Tags Curves
// @Accept json
// @Produce json
// @Param input body models.CurveImportRequest true "Кривая и данные пациента"
// @Success 200 {object} models.MessageResponse
// @Failure 409 {object} models.ErrorResponse "Имя занято"
// @Router /curves [post]
func (h *Handler) ImportCurve(c *gin.Context) {
	var req models.CurveImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request payload")
		return
	}
	if err := h.usecase.ImportCurve(req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, "curve "+req.Name+" imported")
}

// DeleteCurve удаляет кривую.
// @Summary Удалить кривую
// @Tags Curves
// @Param name path string true "Имя кривой"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /curves/{name} [delete]
func (h *Handler) DeleteCurve(c *gin.Context) {
	name := c.Param("name")
	if err := h.usecase.DeleteCurve(name); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, "curve "+name+" deleted")
}

// Synthesize строит кривую по уравнениям NHANES III.
// @Summary Синтезировать кривую
// @Tags Curves
// @Accept json
// @Produce json
// @Param input body models.SynthesizeRequest true "Данные пациента"
// @Success 200 {object} models.SynthesizeResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /curves/synthesize [post]
func (h *Handler) Synthesize(c *gin.Context) {
	var req models.SynthesizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request payload")
		return
	}
	resp, err := h.usecase.Synthesize(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
