package bench_service

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/iwtcode/spiroBench/internal/config"
	"github.com/iwtcode/spiroBench/internal/domain"
	"github.com/iwtcode/spiroBench/internal/domain/entities"
	dmodels "github.com/iwtcode/spiroBench/internal/domain/models"
	"github.com/iwtcode/spiroBench/internal/middleware/logging"
	"github.com/iwtcode/spiroBench/models"
	"github.com/iwtcode/spiroBench/plc"
	"github.com/iwtcode/spiroBench/plc/model"
	apperr "github.com/iwtcode/spiroBench/pkg/errors"
	"github.com/iwtcode/spiroBench/supervisor"
	"github.com/stretchr/testify/require"
)

// registerBank - потокобезопасный ПЛК в памяти, адресация по линии.
// Блок статуса читается из status: на стенде его выставляет контроллер,
// а не записи по командным регистрам.
type registerBank struct {
	mu     sync.Mutex
	regs   map[uint16]uint16
	status map[uint16]uint16
	writes []wireWrite
}

type wireWrite struct {
	addr, value uint16
}

func newRegisterBank() *registerBank {
	return &registerBank{regs: map[uint16]uint16{}, status: map[uint16]uint16{}}
}

func (b *registerBank) ReadHoldingRegisters(address, quantity uint16) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, 2*quantity)
	for i := uint16(0); i < quantity; i++ {
		v := b.regs[address+i]
		if address+i < plc.StatusStart+plc.StatusCount {
			v = b.status[address+i]
		}
		out[2*i], out[2*i+1] = byte(v>>8), byte(v)
	}
	return out, nil
}

func (b *registerBank) WriteSingleRegister(address, value uint16) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.regs[address] = value
	b.writes = append(b.writes, wireWrite{address, value})
	return nil, nil
}

func (b *registerBank) WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := uint16(0); i < quantity; i++ {
		b.regs[address+i] = uint16(value[2*i])<<8 | uint16(value[2*i+1])
	}
	return nil, nil
}

func (b *registerBank) Close() error { return nil }

func (b *registerBank) setStatus(address, value uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status[address] = value
}

func (b *registerBank) singles() []wireWrite {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]wireWrite, len(b.writes))
	copy(out, b.writes)
	return out
}

type memRepo struct {
	mu     sync.Mutex
	curves map[string]*entities.FlowCurve
}

func newMemRepo() *memRepo {
	return &memRepo{curves: map[string]*entities.FlowCurve{}}
}

func (r *memRepo) Create(ctx context.Context, c *entities.FlowCurve) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.curves[c.Name]; ok {
		return apperr.ErrAlreadyExists
	}
	r.curves[c.Name] = c
	return nil
}

func (r *memRepo) GetByName(ctx context.Context, name string) (*entities.FlowCurve, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.curves[name]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return c, nil
}

func (r *memRepo) Names(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.curves))
	for n := range r.curves {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (r *memRepo) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.curves, name)
	return nil
}

type busRecorder struct {
	mu     sync.Mutex
	events []domain.BenchEvent
}

func (b *busRecorder) Produce(ctx context.Context, key, value []byte) error { return nil }
func (b *busRecorder) Close() error                                         { return nil }

func (b *busRecorder) Publish(e domain.BenchEvent) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
	return true
}

func (b *busRecorder) count(kind string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.Type == kind {
			n++
		}
	}
	return n
}

type harness struct {
	svc  *Service
	bank *registerBank
	repo *memRepo
	bus  *busRecorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := &config.AppConfig{
		PLC:    config.PLCConfig{Host: "127.0.0.1", Port: "502", Timeout: time.Second},
		Runner: config.RunnerConfig{MotionInterval: time.Millisecond, PollInterval: 2 * time.Millisecond},
		Bench:  config.DefaultBench(),
	}
	logger := logging.NewWithWriter(&logging.Config{Enabled: false}, "TEST", io.Discard)
	bank := newRegisterBank()
	adapter := plc.NewAdapter(time.Second, logger.Entry(), plc.WithDialer(
		func(string, byte, time.Duration) (model.RegisterClient, io.Closer, error) { return bank, bank, nil },
	))

	h := &harness{bank: bank, repo: newMemRepo(), bus: &busRecorder{}}
	h.svc = newService(cfg, adapter, h.repo, h.bus, nil, NewHub(logger), logger)
	h.svc.Start()
	t.Cleanup(h.svc.Stop)
	return h
}

func float(v float64) *float64 { return &v }

func TestOfflineManualCycleAndSave(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.StartMotion(dmodels.MotionRequest{
		Mode:      models.ModeManual,
		Wave:      models.Sinusoid,
		Amplitude: float(10),
		Speed:     float(50),
	})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return h.svc.Status().Telemetry.PositionMM > 0
	}, 2*time.Second, time.Millisecond)

	_, err = h.svc.StartMotion(dmodels.MotionRequest{Mode: models.ModeManual})
	require.ErrorIs(t, err, apperr.ErrBusy)

	require.NoError(t, h.svc.StopMotion())
	require.Eventually(t, func() bool {
		st := h.svc.Status()
		return st.Telemetry.State == "idle" && st.SuggestName == "Prueba_Manual_1"
	}, 2*time.Second, time.Millisecond)

	st := h.svc.Status()
	require.True(t, st.Controls["save"])
	require.NotEmpty(t, st.Log)
	require.NotEmpty(t, h.svc.Graph(supervisor.GraphFlowVolume))
	require.Positive(t, h.bus.count(domain.EventTelemetry))

	require.NoError(t, h.svc.SaveTrace("Prueba_Manual_1"))
	saved, err := h.repo.GetByName(context.Background(), "Prueba_Manual_1")
	require.NoError(t, err)
	require.Equal(t, entities.SourceCaptured, saved.Source)
	require.Equal(t, "Manual", saved.Pathology)
	require.NotEmpty(t, saved.Points)

	err = h.svc.SaveTrace("Prueba_Manual_1")
	require.ErrorIs(t, err, apperr.ErrAlreadyExists)
}

func TestConnectWriteAndEmergency(t *testing.T) {
	h := newHarness(t)

	info, err := h.svc.Connect(dmodels.ConnectionRequest{})
	require.NoError(t, err)
	require.True(t, info.Connected)
	require.Equal(t, "127.0.0.1:502", info.Endpoint)

	require.NoError(t, h.svc.WriteRegister(dmodels.WriteRequest{Register: plc.RegCalibration, Value: 1}))
	require.Contains(t, h.bank.singles(), wireWrite{addr: 15, value: 1})

	require.NoError(t, h.svc.EmergencyStop())
	require.Contains(t, h.bank.singles(), wireWrite{addr: 10, value: 2})
	require.True(t, h.svc.Status().Telemetry.Emergency)

	_, err = h.svc.StartMotion(dmodels.MotionRequest{Mode: models.ModeManual})
	require.ErrorIs(t, err, apperr.ErrEmergency)

	require.NoError(t, h.svc.Rearm())
	singles := h.bank.singles()
	require.Equal(t, []wireWrite{{10, 0}, {1, 1}}, singles[len(singles)-2:])

	require.NoError(t, h.svc.Disconnect())
	require.False(t, h.svc.Connection().Connected)
	require.ErrorIs(t, h.svc.Disconnect(), apperr.ErrNotConnected)
}

func TestStartMotionValidation(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.StartMotion(dmodels.MotionRequest{Mode: models.ModeSimulation})
	require.ErrorIs(t, err, apperr.ErrInputValidation)

	_, err = h.svc.StartMotion(dmodels.MotionRequest{Mode: models.ModeManual, Wave: "square"})
	require.ErrorIs(t, err, apperr.ErrInputValidation)

	_, err = h.svc.StartMotion(dmodels.MotionRequest{Mode: models.ModeSimulation, Curve: "missing"})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	require.ErrorIs(t, h.svc.StopMotion(), apperr.ErrNotFound)
}

func TestRunnerRejectsCommandsAfterStop(t *testing.T) {
	h := newHarness(t)
	h.svc.Stop()

	err := h.svc.runner.Do(context.Background(), func(*supervisor.Supervisor) error { return nil })
	require.ErrorIs(t, err, apperr.ErrConnection)
}

func TestRunnerNeverStartedFailsFast(t *testing.T) {
	h := newHarness(t)
	logger := logging.NewWithWriter(&logging.Config{Enabled: false}, "TEST", io.Discard)
	idle := NewRunner(h.svc.runner.sup, 0, 0, logger)

	started := time.Now()
	err := idle.Do(context.Background(), func(*supervisor.Supervisor) error { return nil })
	require.ErrorIs(t, err, apperr.ErrConnection)
	require.Less(t, time.Since(started), time.Second, "без запущенного цикла ответ должен быть немедленным")
}

func TestLimitSwitchReportedAsSafetyFault(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.svc.Fault())
	require.False(t, h.svc.Status().SafetyTrip)

	_, err := h.svc.Connect(dmodels.ConnectionRequest{})
	require.NoError(t, err)
	h.bank.setStatus(1, 1)

	require.Eventually(t, func() bool {
		return h.svc.Status().SafetyTrip
	}, 2*time.Second, time.Millisecond)

	fault := h.svc.Fault()
	require.ErrorIs(t, fault, apperr.ErrSafetyViolation)
	require.Equal(t, apperr.ErrSafetyViolation, apperr.Kind(fault))
	require.Contains(t, h.svc.Status().Telemetry.Fault, "limit switch")
}
