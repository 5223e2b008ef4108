package interfaces

import (
	"github.com/iwtcode/spiroBench/internal/domain/models"
	benchmodels "github.com/iwtcode/spiroBench/models"
)

// Usecases - это агрегирующий интерфейс для всех use cases
type Usecases interface {
	Connect(req models.ConnectionRequest) (*models.ConnectionInfo, error)
	Disconnect() error
	WriteRegister(req models.WriteRequest) error

	StartMotion(req models.MotionRequest) (benchmodels.Telemetry, error)
	StopMotion() error
	EmergencyStop() error
	Rearm() error
	StartCalibration() error
	EndCalibration() error
	Status() models.BenchStatus
	Fault() error
	SaveTrace(req models.SaveTraceRequest) error

	ListCurves() ([]string, error)
	GetCurve(name string) (*models.CurveResponse, error)
	ImportCurve(req models.CurveImportRequest) error
	DeleteCurve(name string) error
	Synthesize(req models.SynthesizeRequest) (*models.SynthesizeResponse, error)
}
