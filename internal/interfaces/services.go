package interfaces

import (
	"net/http"

	"github.com/iwtcode/spiroBench/internal/domain/models"
	benchmodels "github.com/iwtcode/spiroBench/models"
)

// BenchService - это агрегирующий интерфейс управления стендом.
type BenchService interface {
	ConnectionManager
	MotionManager
}

// ConnectionManager определяет контракт подключения к ПЛК.
type ConnectionManager interface {
	Connect(req models.ConnectionRequest) (*models.ConnectionInfo, error)
	Disconnect() error
	Connection() models.ConnectionInfo
	WriteRegister(req models.WriteRequest) error
}

// MotionManager определяет контракт управления сеансом движения.
type MotionManager interface {
	StartMotion(req models.MotionRequest) (benchmodels.Telemetry, error)
	StopMotion() error
	EmergencyStop() error
	Rearm() error
	StartCalibration() error
	EndCalibration() error
	SaveTrace(name string) error
	Status() models.BenchStatus
	Fault() error
}

// LiveFeed обслуживает websocket-подписку на события стенда.
type LiveFeed interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
}
