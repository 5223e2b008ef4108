package usecases

import (
	"github.com/iwtcode/spiroBench/internal/domain/models"
	"github.com/iwtcode/spiroBench/internal/interfaces"
	benchmodels "github.com/iwtcode/spiroBench/models"
)

type Usecase struct {
	benchSvc interfaces.BenchService
	repo     interfaces.FlowCurveRepository
}

func NewUsecase(benchSvc interfaces.BenchService, repo interfaces.FlowCurveRepository) interfaces.Usecases {
	return &Usecase{
		benchSvc: benchSvc,
		repo:     repo,
	}
}

func (u *Usecase) Connect(req models.ConnectionRequest) (*models.ConnectionInfo, error) {
	return u.benchSvc.Connect(req)
}

func (u *Usecase) Disconnect() error {
	return u.benchSvc.Disconnect()
}

func (u *Usecase) WriteRegister(req models.WriteRequest) error {
	return u.benchSvc.WriteRegister(req)
}

func (u *Usecase) StartMotion(req models.MotionRequest) (benchmodels.Telemetry, error) {
	return u.benchSvc.StartMotion(req)
}

func (u *Usecase) StopMotion() error {
	return u.benchSvc.StopMotion()
}

func (u *Usecase) EmergencyStop() error {
	return u.benchSvc.EmergencyStop()
}

func (u *Usecase) Rearm() error {
	return u.benchSvc.Rearm()
}

func (u *Usecase) StartCalibration() error {
	return u.benchSvc.StartCalibration()
}

func (u *Usecase) EndCalibration() error {
	return u.benchSvc.EndCalibration()
}

func (u *Usecase) Status() models.BenchStatus {
	return u.benchSvc.Status()
}

func (u *Usecase) Fault() error {
	return u.benchSvc.Fault()
}

func (u *Usecase) SaveTrace(req models.SaveTraceRequest) error {
	return u.benchSvc.SaveTrace(req.Name)
}
