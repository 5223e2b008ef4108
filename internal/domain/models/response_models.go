package models

import (
	"github.com/iwtcode/spiroBench/curvesim"
	"github.com/iwtcode/spiroBench/models"
)

// ErrorResponse представляет стандартный ответ с ошибкой.
type ErrorResponse struct {
	Status string `json:"status" example:"error"`
	Error  struct {
		Code    int    `json:"code" example:"409"`
		Message string `json:"message" example:"motion already in progress"`
	} `json:"error"`
}

// MessageResponse представляет стандартный успешный ответ с сообщением.
type MessageResponse struct {
	Status  string `json:"status" example:"ok"`
	Message string `json:"message" example:"Motion started"`
}

// CurveListResponse представляет ответ со списком имен кривых.
type CurveListResponse struct {
	Status string   `json:"status" example:"ok"`
	Count  int      `json:"count" example:"2"`
	Names  []string `json:"names"`
}

// CurveResponse представляет ответ с одной кривой.
type CurveResponse struct {
	Status   string                 `json:"status" example:"ok"`
	Curve    models.FlowVolumeCurve `json:"curve"`
	Metadata models.CurveMetadata   `json:"metadata"`
}

// SynthesizeResponse представляет результат синтеза кривой.
type SynthesizeResponse struct {
	Status string          `json:"status" example:"ok"`
	Saved  bool            `json:"saved"`
	Result curvesim.Result `json:"result"`
}
