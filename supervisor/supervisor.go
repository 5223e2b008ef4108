// Package supervisor управляет сеансом движения стенда: старт и загрузка
// профиля, контроль безопасности по опросу ПЛК, возврат в ноль,
// аварийная остановка и повторный взвод.
//
// Supervisor не потокобезопасен. Все методы вызываются из одного
// планировщика (см. internal/services/bench_service).
package supervisor

import (
	"fmt"
	"strings"

	"github.com/iwtcode/spiroBench/models"
	"github.com/iwtcode/spiroBench/plc"
	apperr "github.com/iwtcode/spiroBench/pkg/errors"
	"github.com/iwtcode/spiroBench/profile"
	"github.com/iwtcode/spiroBench/units"
	"github.com/sirupsen/logrus"
)

// Supervisor - автомат состояний сеанса движения.
type Supervisor struct {
	transport Transport
	presenter Presenter
	store     CurveStore
	compiler  *profile.Compiler
	clock     Clock
	metrics   Metrics
	logger    logrus.FieldLogger
	th        Thresholds

	mmToLiters float64

	state       State
	session     *SupervisorContext
	last        sessionInfo
	track       tracker
	glitch      glitchFilter
	emergency   bool
	calibrating bool
	fault       error
	trace       []models.Point
}

// Option настраивает Supervisor.
type Option func(*Supervisor)

func WithClock(c Clock) Option {
	return func(s *Supervisor) { s.clock = c }
}

func WithMetrics(m Metrics) Option {
	return func(s *Supervisor) { s.metrics = m }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Supervisor) { s.logger = l }
}

func WithThresholds(t Thresholds) Option {
	return func(s *Supervisor) { s.th = t }
}

// WithCompiler задает компилятор профилей, а вместе с ним геометрию стенда.
func WithCompiler(c *profile.Compiler) Option {
	return func(s *Supervisor) { s.compiler = c }
}

// New создает supervisor в состоянии Idle.
func New(transport Transport, presenter Presenter, store CurveStore, opts ...Option) *Supervisor {
	s := &Supervisor{
		transport: transport,
		presenter: presenter,
		store:     store,
		clock:     systemClock{},
		metrics:   nopMetrics{},
		logger:    logrus.StandardLogger(),
		th:        DefaultThresholds(),
		state:     Idle,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.compiler == nil {
		s.compiler = profile.NewCompiler(units.DefaultGeometry())
	}
	s.th = s.th.withDefaults()
	s.logger = s.logger.WithField("component", "supervisor")
	s.mmToLiters = s.compiler.Geometry.MMToLiters()
	s.glitch = glitchFilter{threshold: s.th.GlitchJumpMM, confirm: s.th.GlitchConfirmTicks}
	return s
}

// State возвращает текущее состояние автомата.
func (s *Supervisor) State() State {
	return s.state
}

// Session возвращает копию контекста текущего сеанса.
func (s *Supervisor) Session() (SupervisorContext, bool) {
	if s.session == nil {
		return SupervisorContext{}, false
	}
	return *s.session, true
}

// Emergency сообщает, что активна аварийная остановка.
func (s *Supervisor) Emergency() bool { return s.emergency }

func (s *Supervisor) Calibrating() bool { return s.calibrating }

// Fault возвращает последнюю аварию сеанса или nil. Срабатывания защиты
// имеют вид apperr.ErrSafetyViolation. Сбрасывается при подключении и старте.
func (s *Supervisor) Fault() error { return s.fault }

func (s *Supervisor) faultText() string {
	if s.fault == nil {
		return ""
	}
	return s.fault.Error()
}

// locked возвращает ошибку, пока активна аварийная остановка.
func (s *Supervisor) locked(op string) error {
	if !s.emergency {
		return nil
	}
	return apperr.New(apperr.ErrEmergency, op, "rearm required", nil)
}

// Trace возвращает копию кривой, снятой в последнем сеансе.
func (s *Supervisor) Trace() []models.Point {
	out := make([]models.Point, len(s.trace))
	copy(out, s.trace)
	return out
}

// Snapshot собирает телеметрию для внешних потребителей.
func (s *Supervisor) Snapshot() models.Telemetry {
	connected := s.transport.Connected()
	t := models.Telemetry{
		Timestamp:     s.clock.Now(),
		State:         s.state.String(),
		Connected:     connected,
		Connectivity:  models.Offline,
		Elapsed:       s.track.elapsed,
		PositionMM:    s.track.position,
		CommandedMM:   s.track.commanded,
		VelocityMMs:   s.track.velocity,
		AccelMMs2:     s.track.accel,
		FlowActual:    s.track.flowActual,
		FlowCommanded: s.track.flowCommanded,
		UpperLimit:    s.track.upper,
		LowerLimit:    s.track.lower,
		Emergency:     s.emergency,
		Calibrating:   s.calibrating,
		Fault:         s.faultText(),
	}
	if connected {
		t.Connectivity = models.Online
	}
	if sess := s.session; sess != nil {
		t.SessionID = sess.SessionID
		t.Mode = sess.Mode
		t.Connectivity = sess.Connectivity
		t.FollowingError = sess.FollowingError
	}
	return t
}

func (s *Supervisor) publish() {
	s.presenter.Publish(s.Snapshot())
}

// say пишет сообщение и в журнал оператора, и в лог.
func (s *Supervisor) say(msg string) {
	s.logger.Info(msg)
	s.presenter.AppendLog(msg)
}

func (s *Supervisor) warn(err error, msg string) {
	s.logger.WithError(err).Warn(msg)
	s.presenter.AppendLog(fmt.Sprintf("%s: %v", msg, err))
}

// alarm регистрирует нарушение безопасности.
func (s *Supervisor) alarm(reason, msg string) {
	s.logger.WithFields(logrus.Fields{"alarm": true, "reason": reason}).Error(msg)
	s.presenter.AppendLog(msg)
	s.metrics.SafetyTrip(reason)
}

// Connect подключается к ПЛК и сбрасывает историю положения.
func (s *Supervisor) Connect(host, port string) error {
	if err := s.locked("connect"); err != nil {
		return err
	}
	if err := s.transport.Connect(host, port); err != nil {
		s.presenter.SetConnection(false)
		s.warn(err, "PLC connection failed")
		return err
	}
	s.track.resetOnConnect(s.clock.Now())
	s.glitch.reset()
	s.fault = nil
	s.presenter.ResetGraphs()
	s.presenter.SetConnection(true)
	s.say(fmt.Sprintf("PLC: connected to %s:%s", host, port))
	return nil
}

// Disconnect закрывает соединение. Сеанс с ПЛК при этом прерывается.
func (s *Supervisor) Disconnect() {
	if sess := s.session; sess != nil && sess.Connectivity == models.Online {
		s.endSession(OutcomeDisconnect)
	}
	s.disconnect()
}

func (s *Supervisor) disconnect() {
	s.transport.Disconnect()
	s.calibrating = false
	s.presenter.SetConnection(false)
	s.presenter.SetSensors(false, false, false)
	s.say("PLC: disconnected")
}

// RequestStart запускает сеанс движения. Профиль строится и загружается
// синхронно; при ошибке движение не начинается.
func (s *Supervisor) RequestStart() error {
	if err := s.locked("start"); err != nil {
		return err
	}
	if s.session != nil {
		return apperr.ErrBusy
	}

	s.state = Starting
	sess, err := s.prepare()
	if err != nil {
		s.state = Idle
		s.glitch.reset()
		s.presenter.SetStatus(err.Error())
		s.presenter.SetControl(ControlStart, true)
		s.presenter.SetControl(ControlStop, false)
		s.logger.WithError(err).Warn("motion start rejected")
		s.presenter.AppendLog(fmt.Sprintf("ERROR: %v", err))
		return err
	}

	sess.StartedAt = s.clock.Now()
	s.session = sess
	s.state = Running
	s.fault = nil
	s.presenter.SetControl(ControlStart, false)
	s.presenter.SetControl(ControlStop, true)
	s.metrics.MotionStarted(sess.Mode, sess.Connectivity)

	source := "PLC"
	if sess.Connectivity == models.Offline {
		source = "offline"
	}
	what := "manual"
	if sess.Mode == models.ModeSimulation {
		what = "simulation " + sess.CurveName
	}
	s.logger.WithFields(logrus.Fields{"session": sess.SessionID, "mode": sess.Mode, "connectivity": sess.Connectivity}).Debug("session started")
	s.say(fmt.Sprintf("MOTION: started (%s), %s", source, what))
	s.presenter.SetStatus(fmt.Sprintf("running (%s): %s", source, what))
	return nil
}

// RequestStop просит остановить движение. Запрос обрабатывает MotionTick.
func (s *Supervisor) RequestStop() {
	if s.session == nil || s.emergency {
		return
	}
	s.session.StopRequested = true
}

// endSession уничтожает контекст сеанса и сбрасывает счетчики нарушений.
func (s *Supervisor) endSession(outcome string) {
	sess := s.session
	if sess == nil {
		return
	}
	s.last = sessionInfo{mode: sess.Mode, curveName: sess.CurveName}
	s.session = nil
	s.glitch.reset()
	if !s.emergency {
		s.state = Idle
	}
	s.metrics.MotionFinished(outcome)
	s.presenter.SetControl(ControlStart, true)
	s.presenter.SetControl(ControlStop, false)
	s.logger.WithFields(logrus.Fields{"session": sess.SessionID, "outcome": outcome}).Info("session ended")
}

// completeReturn завершает сеанс после возврата в ноль и предлагает имя для сохранения.
func (s *Supervisor) completeReturn(status string) {
	sess := s.session
	if sess == nil {
		return
	}
	base := ManualBaseName
	if sess.Mode == models.ModeSimulation {
		base = sess.CurveName
	}
	s.endSession(OutcomeReturned)
	s.presenter.SetStatus(status)
	s.say("CYCLE: complete, motor at home position")

	names, err := s.store.Names()
	if err != nil {
		s.logger.WithError(err).Warn("curve names lookup failed")
		names = nil
	}
	s.presenter.SuggestSaveName(UniqueName(base, names))
	s.presenter.SetControl(ControlSave, true)
}

// StartCalibration запускает калибровку. Пока она идет, концевики не считаются аварией.
func (s *Supervisor) StartCalibration() error {
	if err := s.locked("calibrate"); err != nil {
		return err
	}
	if !s.transport.Connected() {
		s.presenter.SetStatus("PLC not connected, cannot calibrate")
		return fmt.Errorf("calibrate: %w", apperr.ErrNotConnected)
	}
	if s.session != nil {
		return apperr.ErrBusy
	}
	s.say("CALIBRATION: starting sequence")
	s.calibrating = true
	if err := s.transport.WriteSingle(plc.RegCalibration, 1); err != nil {
		s.calibrating = false
		s.metrics.ProtocolError("calibrate")
		s.warn(err, "calibration failed")
		return err
	}
	s.say("CALIBRATION: command sent, waiting for sensor")
	return nil
}

// EndCalibration снимает флаг калибровки и сбрасывает регистр калибровки.
func (s *Supervisor) EndCalibration() error {
	if err := s.locked("calibrate"); err != nil {
		return err
	}
	if !s.calibrating {
		return nil
	}
	s.calibrating = false
	if !s.transport.Connected() {
		return nil
	}
	if err := s.transport.WriteSingle(plc.RegCalibration, 0); err != nil {
		s.metrics.ProtocolError("calibrate")
		s.warn(err, "calibration reset failed")
		return err
	}
	s.say("CALIBRATION: finished")
	return nil
}

// WriteRegister записывает произвольный регистр (сервисный доступ).
func (s *Supervisor) WriteRegister(register uint16, value int) error {
	if err := s.locked("write"); err != nil {
		return err
	}
	if err := s.transport.WriteSingle(register, value); err != nil {
		s.metrics.ProtocolError("write")
		s.warn(err, "PLC write failed")
		return err
	}
	s.say(fmt.Sprintf("PLC WRITE: %d = %d", register, value))
	return nil
}

// SaveCapturedTrace сохраняет кривую, снятую в последнем сеансе.
func (s *Supervisor) SaveCapturedTrace(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperr.Validation("save trace", "name is empty")
	}
	if s.session != nil {
		return apperr.ErrBusy
	}
	names, err := s.store.Names()
	if err != nil {
		return fmt.Errorf("save trace: %w", err)
	}
	for _, existing := range names {
		if existing == name {
			return apperr.New(apperr.ErrAlreadyExists, "save trace", fmt.Sprintf("curve %q already exists", name), nil)
		}
	}
	if len(s.trace) == 0 {
		return apperr.New(apperr.ErrNoData, "save trace", "no captured data to save", nil)
	}

	meta := models.ManualMetadata()
	if s.last.mode == models.ModeSimulation && s.last.curveName != "" {
		if _, source, err := s.store.Lookup(s.last.curveName); err == nil {
			meta = source
		} else {
			s.logger.WithError(err).Warn("source curve metadata unavailable, using manual metadata")
		}
	}

	curve := models.FlowVolumeCurve{Name: name, Points: s.Trace()}
	if err := s.store.Save(name, curve, meta); err != nil {
		s.warn(err, "trace save failed")
		return err
	}
	s.presenter.SetControl(ControlSave, false)
	s.say(fmt.Sprintf("DB: trace saved as %s", name))
	return nil
}
