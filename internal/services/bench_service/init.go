package bench_service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/iwtcode/spiroBench/internal/config"
	dmodels "github.com/iwtcode/spiroBench/internal/domain/models"
	"github.com/iwtcode/spiroBench/internal/interfaces"
	"github.com/iwtcode/spiroBench/internal/metrics"
	"github.com/iwtcode/spiroBench/internal/middleware/logging"
	"github.com/iwtcode/spiroBench/models"
	"github.com/iwtcode/spiroBench/plc"
	apperr "github.com/iwtcode/spiroBench/pkg/errors"
	"github.com/iwtcode/spiroBench/profile"
	"github.com/iwtcode/spiroBench/supervisor"
)

const commandTimeout = 10 * time.Second

// transport - соединение с ПЛК, которым владеет сервис.
type transport interface {
	supervisor.Transport
	Endpoint() string
	Close()
}

// Service управляет стендом: владеет соединением с ПЛК, supervisor и циклом тиков.
type Service struct {
	cfg       *config.AppConfig
	transport transport
	presenter *presenter
	runner    *Runner
	hub       *Hub
	logger    *logging.Logger

	mu          sync.RWMutex
	connectedAt time.Time
}

// NewBenchService собирает сервис стенда поверх Modbus-адаптера.
func NewBenchService(cfg *config.AppConfig, repo interfaces.FlowCurveRepository, producer interfaces.KafkaService, m *metrics.Metrics, hub *Hub, logger *logging.Logger) *Service {
	adapter := plc.NewAdapter(cfg.PLC.Timeout, logger.WithPrefix("PLC").Entry(), plc.WithSlaveID(cfg.PLC.SlaveID))
	return newService(cfg, adapter, repo, producer, m, hub, logger)
}

func newService(cfg *config.AppConfig, t transport, repo interfaces.FlowCurveRepository, producer interfaces.KafkaService, m supervisor.Metrics, hub *Hub, logger *logging.Logger) *Service {
	logger = logger.WithPrefix("BENCH")
	var b Broadcaster
	if hub != nil {
		b = hub
	}
	p := newPresenter(b, producer)

	opts := []supervisor.Option{
		supervisor.WithLogger(logger.Entry()),
		supervisor.WithThresholds(cfg.Bench.Thresholds),
		supervisor.WithCompiler(profile.NewCompiler(cfg.Bench.Geometry)),
	}
	if m != nil {
		opts = append(opts, supervisor.WithMetrics(m))
	}
	sup := supervisor.New(t, p, newCurveStore(repo), opts...)

	return &Service{
		cfg:       cfg,
		transport: t,
		presenter: p,
		runner:    NewRunner(sup, cfg.Runner.MotionInterval, cfg.Runner.PollInterval, logger),
		hub:       hub,
		logger:    logger,
	}
}

// Start запускает цикл стенда и, если настроено, подключается к ПЛК.
func (s *Service) Start() {
	s.runner.Start()
	if !s.cfg.PLC.AutoConnect {
		return
	}
	if _, err := s.Connect(dmodels.ConnectionRequest{}); err != nil {
		s.logger.Warn("Auto-connect to PLC failed", "endpoint", net.JoinHostPort(s.cfg.PLC.Host, s.cfg.PLC.Port), "error", err)
	}
}

// Stop останавливает цикл и закрывает соединение с ПЛК.
func (s *Service) Stop() {
	s.runner.Stop()
	s.transport.Close()
	if s.hub != nil {
		s.hub.Close()
	}
}

// Hub возвращает websocket-рассыльщик.
func (s *Service) Hub() *Hub {
	return s.hub
}

func (s *Service) do(fn func(*supervisor.Supervisor) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return s.runner.Do(ctx, fn)
}

// --- ConnectionManager ---

func (s *Service) Connect(req dmodels.ConnectionRequest) (*dmodels.ConnectionInfo, error) {
	host := strings.TrimSpace(req.Host)
	if host == "" {
		host = s.cfg.PLC.Host
	}
	port := strings.TrimSpace(req.Port)
	if port == "" {
		port = s.cfg.PLC.Port
	}

	err := s.do(func(sup *supervisor.Supervisor) error {
		return sup.Connect(host, port)
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.connectedAt = time.Now()
	s.mu.Unlock()
	s.logger.Info("PLC connected", "endpoint", s.transport.Endpoint())

	info := s.Connection()
	return &info, nil
}

func (s *Service) Disconnect() error {
	if !s.transport.Connected() {
		return apperr.ErrNotConnected
	}
	err := s.do(func(sup *supervisor.Supervisor) error {
		sup.Disconnect()
		return nil
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.connectedAt = time.Time{}
	s.mu.Unlock()
	return nil
}

func (s *Service) Connection() dmodels.ConnectionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info := dmodels.ConnectionInfo{
		Endpoint:  s.transport.Endpoint(),
		Connected: s.transport.Connected(),
	}
	if info.Connected {
		info.ConnectedAt = s.connectedAt
	}
	return info
}

func (s *Service) WriteRegister(req dmodels.WriteRequest) error {
	return s.do(func(sup *supervisor.Supervisor) error {
		return sup.WriteRegister(req.Register, req.Value)
	})
}

// --- MotionManager ---

func (s *Service) StartMotion(req dmodels.MotionRequest) (models.Telemetry, error) {
	switch req.Mode {
	case models.ModeSimulation:
		if strings.TrimSpace(req.Curve) == "" {
			return models.Telemetry{}, apperr.Validation("start", "curve name is required in simulation mode")
		}
	case models.ModeManual:
		if req.Wave != "" && !req.Wave.Valid() {
			return models.Telemetry{}, apperr.Validation("start", fmt.Sprintf("unknown wave kind %q", req.Wave))
		}
	default:
		return models.Telemetry{}, apperr.Validation("start", fmt.Sprintf("unknown mode %q", req.Mode))
	}

	var snap models.Telemetry
	err := s.do(func(sup *supervisor.Supervisor) error {
		s.presenter.setRequest(req)
		if err := sup.RequestStart(); err != nil {
			return err
		}
		snap = sup.Snapshot()
		return nil
	})
	return snap, err
}

func (s *Service) StopMotion() error {
	return s.do(func(sup *supervisor.Supervisor) error {
		if _, ok := sup.Session(); !ok {
			return apperr.New(apperr.ErrNotFound, "stop", "no active motion", nil)
		}
		sup.RequestStop()
		return nil
	})
}

func (s *Service) EmergencyStop() error {
	return s.do(func(sup *supervisor.Supervisor) error {
		return sup.EmergencyStop()
	})
}

func (s *Service) Rearm() error {
	return s.do(func(sup *supervisor.Supervisor) error {
		return sup.Rearm()
	})
}

func (s *Service) StartCalibration() error {
	return s.do(func(sup *supervisor.Supervisor) error {
		return sup.StartCalibration()
	})
}

func (s *Service) EndCalibration() error {
	return s.do(func(sup *supervisor.Supervisor) error {
		return sup.EndCalibration()
	})
}

func (s *Service) SaveTrace(name string) error {
	return s.do(func(sup *supervisor.Supervisor) error {
		return sup.SaveCapturedTrace(name)
	})
}

// Status собирает состояние стенда без обращения к циклу.
func (s *Service) Status() dmodels.BenchStatus {
	st := s.presenter.view()
	st.Telemetry = s.runner.Snapshot()
	st.Connection = s.Connection()
	st.SafetyTrip = errors.Is(s.runner.Fault(), apperr.ErrSafetyViolation)
	return st
}

// Fault возвращает активную неисправность сеанса или nil.
func (s *Service) Fault() error {
	return s.runner.Fault()
}

// Graph возвращает накопленные точки графика.
func (s *Service) Graph(g supervisor.Graph) []supervisor.XY {
	return s.presenter.graph(g)
}
