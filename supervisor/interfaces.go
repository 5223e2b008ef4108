package supervisor

import (
	"time"

	"github.com/iwtcode/spiroBench/models"
)

// Panel - запросы к органам управления оператора.
type Panel interface {
	Mode() models.RunMode
	SelectedCurve() string
	WaveKind() models.WaveKind
	Equation() string
	// Amplitude и Speed возвращают ошибку, если поле не заполнено или не число.
	Amplitude() (float64, error)
	Speed() (float64, error)
}

// Graph - график, в который supervisor добавляет точки.
type Graph int

const (
	GraphMotion Graph = iota
	GraphFlowVolume
	GraphVolumeTime
)

func (g Graph) String() string {
	switch g {
	case GraphFlowVolume:
		return "flow_volume"
	case GraphVolumeTime:
		return "volume_time"
	default:
		return "motion"
	}
}

// XY - точка графика.
type XY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Control - элемент управления, который supervisor включает и выключает.
type Control int

const (
	ControlStart Control = iota
	ControlStop
	ControlSave
	ControlCalibrate
)

func (c Control) String() string {
	switch c {
	case ControlStop:
		return "stop"
	case ControlSave:
		return "save"
	case ControlCalibrate:
		return "calibrate"
	default:
		return "start"
	}
}

// Sink принимает все, что supervisor показывает оператору.
type Sink interface {
	AppendLog(line string)
	SetStatus(text string)
	ResetGraphs()
	AppendGraph(graph Graph, pairs ...XY)
	SetControl(control Control, enabled bool)
	SetConnection(connected bool)
	SetSensors(upper, lower, connected bool)
	SuggestSaveName(name string)
	Publish(t models.Telemetry)
}

// Presenter объединяет запросы и вывод.
type Presenter interface {
	Panel
	Sink
}

// CurveStore - хранилище кривых поток-объем.
type CurveStore interface {
	// Lookup возвращает errors.ErrNotFound, если кривой нет.
	Lookup(name string) (models.FlowVolumeCurve, models.CurveMetadata, error)
	// Save возвращает errors.ErrAlreadyExists при совпадении имени.
	Save(name string, curve models.FlowVolumeCurve, meta models.CurveMetadata) error
	Names() ([]string, error)
}

// Writer - запись регистров ПЛК.
type Writer interface {
	WriteSingle(register uint16, value int) error
	WriteBlock(start uint16, values []int) error
}

// Transport - соединение с ПЛК. Реализуется plc.Adapter.
type Transport interface {
	Writer
	Connect(host, port string) error
	Disconnect()
	Connected() bool
	ReadBlock(start, count uint16) ([]uint16, error)
}

// Clock - источник времени для тиков.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Metrics - счетчики событий supervisor.
type Metrics interface {
	MotionStarted(mode models.RunMode, connectivity models.Connectivity)
	MotionFinished(outcome string)
	SafetyTrip(reason string)
	ProtocolError(op string)
	GlitchRejected()
	EmergencyStop()
	ObserveFollowingError(mm float64)
}

type nopMetrics struct{}

func (nopMetrics) MotionStarted(models.RunMode, models.Connectivity) {}
func (nopMetrics) MotionFinished(string)                             {}
func (nopMetrics) SafetyTrip(string)                                 {}
func (nopMetrics) ProtocolError(string)                              {}
func (nopMetrics) GlitchRejected()                                   {}
func (nopMetrics) EmergencyStop()                                    {}
func (nopMetrics) ObserveFollowingError(float64)                     {}
