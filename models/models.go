package models

import "time"

// Point - одна точка кривой поток-объем.
type Point struct {
	Volume float64 `json:"volume"` // л
	Flow   float64 `json:"flow"`   // л/с
}

// FlowVolumeCurve - упорядоченная по времени кривая поток-объем.
type FlowVolumeCurve struct {
	Name   string  `json:"name,omitempty"`
	Points []Point `json:"points"`
}

// Volumes возвращает объемы точек кривой.
func (c FlowVolumeCurve) Volumes() []float64 {
	out := make([]float64, len(c.Points))
	for i, p := range c.Points {
		out[i] = p.Volume
	}
	return out
}

// Flows возвращает потоки точек кривой.
func (c FlowVolumeCurve) Flows() []float64 {
	out := make([]float64, len(c.Points))
	for i, p := range c.Points {
		out[i] = p.Flow
	}
	return out
}

// MotionProfile - последовательность угловых позиций привода
// в десятых долях градуса с фиксированным шагом.
type MotionProfile struct {
	Samples   []int         `json:"samples"`   // вместе с хвостовым заполнением
	Length    int           `json:"length"`    // число реальных отсчетов без заполнения
	Duration  float64       `json:"duration"`  // секунды
	Interval  time.Duration `json:"interval"`  // шаг дискретизации
	Truncated bool          `json:"truncated"` // обрезан по емкости буфера ПЛК
}

// IsEmpty сообщает о тривиальном профиле "без движения".
func (p MotionProfile) IsEmpty() bool {
	return p.Duration <= 0
}

// Degrees возвращает реальные отсчеты профиля в градусах.
func (p MotionProfile) Degrees() []float64 {
	n := p.Length
	if n > len(p.Samples) {
		n = len(p.Samples)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = float64(p.Samples[i]) / 10.0
	}
	return out
}

// WaveKind - форма ручной волны.
type WaveKind string

const (
	Sinusoid          WaveKind = "sinusoid"
	HalfRectifiedSine WaveKind = "half_rectified"
	FullRectifiedSine WaveKind = "full_rectified"
	CustomEquation    WaveKind = "custom"
)

// Valid сообщает, известна ли форма волны.
func (k WaveKind) Valid() bool {
	switch k {
	case Sinusoid, HalfRectifiedSine, FullRectifiedSine, CustomEquation:
		return true
	}
	return false
}

// WaveformSpec описывает ручную волну.
type WaveformSpec struct {
	Kind         WaveKind `json:"kind"`
	AmplitudeMM  float64  `json:"amplitude_mm"`
	SpeedPercent float64  `json:"speed_percent"`
	Equation     string   `json:"equation,omitempty"`
}

// RunMode - режим движения.
type RunMode string

const (
	ModeManual     RunMode = "manual"
	ModeSimulation RunMode = "simulation"
)

// Connectivity - источник движения: ПЛК или локальная модель.
type Connectivity string

const (
	Online  Connectivity = "online"
	Offline Connectivity = "offline"
)

// ControllerStatus - расшифрованный блок статусных регистров ПЛК.
type ControllerStatus struct {
	PositionRaw  int     `json:"position_raw"`
	PositionMM   float64 `json:"position_mm"`
	UpperLimit   bool    `json:"upper_limit"`
	LowerLimit   bool    `json:"lower_limit"`
	Moving       bool    `json:"moving"`
	ErrorCode    uint16  `json:"error_code"`
	ErrorText    string  `json:"error_text"`
	CommandedRaw int     `json:"commanded_raw"`
	CommandedMM  float64 `json:"commanded_mm"`
	Running      bool    `json:"running"`
}

// LimitActive сообщает, сработал ли хотя бы один концевик.
func (s ControllerStatus) LimitActive() bool {
	return s.UpperLimit || s.LowerLimit
}

// Telemetry - снимок состояния сеанса движения для внешних потребителей.
type Telemetry struct {
	SessionID      string       `json:"session_id"`
	Timestamp      time.Time    `json:"timestamp"`
	State          string       `json:"state"`
	Mode           RunMode      `json:"mode"`
	Connectivity   Connectivity `json:"connectivity"`
	Connected      bool         `json:"connected"`
	Elapsed        float64      `json:"elapsed"`
	PositionMM     float64      `json:"position_mm"`
	CommandedMM    float64      `json:"commanded_mm"`
	VelocityMMs    float64      `json:"velocity_mm_s"`
	AccelMMs2      float64      `json:"accel_mm_s2"`
	FlowActual     float64      `json:"flow_actual"`
	FlowCommanded  float64      `json:"flow_commanded"`
	FollowingError float64      `json:"following_error"`
	UpperLimit     bool         `json:"upper_limit"`
	LowerLimit     bool         `json:"lower_limit"`
	Emergency      bool         `json:"emergency"`
	Calibrating    bool         `json:"calibrating"`
	Fault          string       `json:"fault,omitempty"`
}

// CurveMetadata - сведения о пациенте, сохраняемые вместе с кривой.
type CurveMetadata struct {
	PatientName string  `json:"patient_name"`
	Age         float64 `json:"age"`
	WeightKg    float64 `json:"weight_kg"`
	Sex         string  `json:"sex"`
	DocumentID  string  `json:"document_id"`
	Smoker      bool    `json:"smoker"`
	Pathology   string  `json:"pathology"`
	HeightCm    float64 `json:"height_cm"`
}

// ManualMetadata - метаданные для кривых, снятых в ручном режиме.
func ManualMetadata() CurveMetadata {
	return CurveMetadata{
		PatientName: "Manual",
		Sex:         "_",
		DocumentID:  "00000000X",
		Pathology:   "Manual",
	}
}
