// Package units содержит геометрию стенда и производные коэффициенты
// перевода между ходом поршня, объемом и углом вала.
package units

import "math"

const (
	PinionDiameterMM   = 30.0
	TotalTravelMM      = 345.0
	CylinderDiameterMM = 100.0
	CylinderCount      = 2
	SafetyOffsetDeg    = 0.0

	// MMPerDegreeNominal - округленное значение, которое использует ПЛК.
	MMPerDegreeNominal = 0.2618
)

// Geometry описывает механику стенда.
type Geometry struct {
	PinionDiameterMM   float64 `yaml:"pinion_diameter_mm"`
	TotalTravelMM      float64 `yaml:"total_travel_mm"`
	CylinderDiameterMM float64 `yaml:"cylinder_diameter_mm"`
	CylinderCount      int     `yaml:"cylinder_count"`
	SafetyOffsetDeg    float64 `yaml:"safety_offset_deg"`
}

// DefaultGeometry возвращает геометрию серийного стенда.
func DefaultGeometry() Geometry {
	return Geometry{
		PinionDiameterMM:   PinionDiameterMM,
		TotalTravelMM:      TotalTravelMM,
		CylinderDiameterMM: CylinderDiameterMM,
		CylinderCount:      CylinderCount,
		SafetyOffsetDeg:    SafetyOffsetDeg,
	}
}

// MMToLiters - литры на миллиметр хода. Суммарная площадь поршней в м²
// численно равна объему в литрах на 1 мм.
func (g Geometry) MMToLiters() float64 {
	r := g.CylinderDiameterMM / 1000.0 / 2
	return math.Pi * r * r * float64(g.CylinderCount)
}

// MaxVolumeLiters - объем, соответствующий полному ходу.
func (g Geometry) MaxVolumeLiters() float64 {
	return g.TotalTravelMM * g.MMToLiters()
}

// MMPerDegree - линейное перемещение рейки на градус поворота шестерни.
func (g Geometry) MMPerDegree() float64 {
	return math.Pi * g.PinionDiameterMM / 360.0
}

// TotalDegrees - угол поворота вала на полном ходу.
func (g Geometry) TotalDegrees() float64 {
	perimeter := math.Pi * g.PinionDiameterMM
	if perimeter == 0 {
		return 0
	}
	return g.TotalTravelMM / perimeter * 360.0
}

// LitersToDegrees - градусы вала на литр.
func (g Geometry) LitersToDegrees() float64 {
	div := g.MaxVolumeLiters()
	if div == 0 {
		div = 1
	}
	return g.TotalDegrees() / div
}

// RawToMM переводит значение регистра (десятые доли градуса) в мм.
func RawToMM(raw int) float64 {
	return float64(raw) / 10.0 * MMPerDegreeNominal
}

// MMToDegrees переводит мм в градусы по номинальному коэффициенту ПЛК.
func MMToDegrees(mm float64) float64 {
	return mm / MMPerDegreeNominal
}

// DegreesToMM - обратное преобразование.
func DegreesToMM(deg float64) float64 {
	return deg * MMPerDegreeNominal
}
