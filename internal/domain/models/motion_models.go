package models

import "github.com/iwtcode/spiroBench/models"

// MotionRequest определяет параметры запуска движения.
// Amplitude и Speed могут отсутствовать: тогда берутся резервные значения.
type MotionRequest struct {
	Mode      models.RunMode  `json:"mode" binding:"required,oneof=manual simulation"`
	Curve     string          `json:"curve"`
	Wave      models.WaveKind `json:"wave"`
	Equation  string          `json:"equation"`
	Amplitude *float64        `json:"amplitude"` // мм
	Speed     *float64        `json:"speed"`     // % или Гц по типу волны
}

// SaveTraceRequest - имя для сохранения снятой кривой.
type SaveTraceRequest struct {
	Name string `json:"name" binding:"required"`
}

// SynthesizeRequest - данные пациента для синтеза кривой.
type SynthesizeRequest struct {
	Name       string  `json:"name"`
	DocumentID string  `json:"document_id"`
	Age        float64 `json:"age" binding:"required,gt=0"`
	HeightCm   float64 `json:"height_cm" binding:"required,gt=0"`
	WeightKg   float64 `json:"weight_kg"`
	Sex        string  `json:"sex" binding:"required"`
	Smoker     bool    `json:"smoker"`
	Pathology  string  `json:"pathology"`
	Save       bool    `json:"save"`
}

// CurveImportRequest - загрузка готовой кривой.
type CurveImportRequest struct {
	Name     string               `json:"name" binding:"required"`
	Points   []models.Point       `json:"points" binding:"required,min=2"`
	Metadata models.CurveMetadata `json:"metadata"`
}

// BenchStatus - сводное состояние стенда.
type BenchStatus struct {
	Telemetry   models.Telemetry `json:"telemetry"`
	Connection  ConnectionInfo   `json:"connection"`
	StatusText  string           `json:"status_text"`
	SuggestName string           `json:"suggested_name,omitempty"`
	SafetyTrip  bool             `json:"safety_trip"`
	Controls    map[string]bool  `json:"controls"`
	Log         []string         `json:"log"`
}
