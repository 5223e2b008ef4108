package entities

import (
	"time"

	"github.com/iwtcode/spiroBench/models"
)

const (
	SourceCaptured    = "captured"
	SourceSynthesized = "synthesized"
	SourceImported    = "imported"
)

// FlowCurve - сохраненная кривая поток-объем вместе с данными пациента.
type FlowCurve struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;unique" json:"name"`
	Points      []models.Point `gorm:"serializer:json;not null" json:"points"`
	PatientName string         `json:"patient_name"`
	Age         float64        `json:"age"`
	WeightKg    float64        `json:"weight_kg"`
	HeightCm    float64        `json:"height_cm"`
	Sex         string         `json:"sex"`
	DocumentID  string         `json:"document_id"`
	Smoker      bool           `json:"smoker"`
	Pathology   string         `json:"pathology"`
	Source      string         `gorm:"not null" json:"source"` // captured / synthesized / imported
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NewFlowCurve собирает запись из кривой и метаданных.
func NewFlowCurve(curve models.FlowVolumeCurve, meta models.CurveMetadata, source string) *FlowCurve {
	return &FlowCurve{
		Name:        curve.Name,
		Points:      curve.Points,
		PatientName: meta.PatientName,
		Age:         meta.Age,
		WeightKg:    meta.WeightKg,
		HeightCm:    meta.HeightCm,
		Sex:         meta.Sex,
		DocumentID:  meta.DocumentID,
		Smoker:      meta.Smoker,
		Pathology:   meta.Pathology,
		Source:      source,
	}
}

// Curve возвращает кривую записи.
func (f *FlowCurve) Curve() models.FlowVolumeCurve {
	return models.FlowVolumeCurve{Name: f.Name, Points: f.Points}
}

// Metadata возвращает данные пациента записи.
func (f *FlowCurve) Metadata() models.CurveMetadata {
	return models.CurveMetadata{
		PatientName: f.PatientName,
		Age:         f.Age,
		WeightKg:    f.WeightKg,
		HeightCm:    f.HeightCm,
		Sex:         f.Sex,
		DocumentID:  f.DocumentID,
		Smoker:      f.Smoker,
		Pathology:   f.Pathology,
	}
}
