package supervisor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/iwtcode/spiroBench/models"
	"github.com/iwtcode/spiroBench/plc"
	apperr "github.com/iwtcode/spiroBench/pkg/errors"
	"github.com/iwtcode/spiroBench/waveform"
	"github.com/sirupsen/logrus"
)

// prepare выполняет фазу Starting: сбрасывает буферы телеметрии,
// строит профиль или генератор и при наличии связи загружает профиль в ПЛК.
func (s *Supervisor) prepare() (*SupervisorContext, error) {
	mode := s.presenter.Mode()
	if mode != models.ModeSimulation {
		mode = models.ModeManual
	}
	connectivity := models.Offline
	if s.transport.Connected() {
		connectivity = models.Online
	}

	sess := &SupervisorContext{
		SessionID:    uuid.NewString(),
		Mode:         mode,
		Connectivity: connectivity,
		SpeedPercent: s.speed(),
	}

	// 1. Сброс буферов
	s.presenter.ResetGraphs()
	s.presenter.SetControl(ControlSave, false)
	s.trace = nil
	s.calibrating = false
	s.track.beginSession(s.mmToLiters)

	// 2. Профиль или волна
	if mode == models.ModeSimulation {
		return sess, s.prepareSimulation(sess)
	}
	return sess, s.prepareManual(sess)
}

func (s *Supervisor) prepareSimulation(sess *SupervisorContext) error {
	name := strings.TrimSpace(s.presenter.SelectedCurve())
	if name == "" {
		return apperr.Validation("start", "no curve selected")
	}
	curve, _, err := s.store.Lookup(name)
	if err != nil {
		return fmt.Errorf("curve %q: %w", name, err)
	}
	s.say(fmt.Sprintf("DB: processing '%s'", name))

	p, err := s.compiler.Compile(curve)
	if err != nil {
		var capErr *apperr.CapacityError
		if errors.As(err, &capErr) {
			return apperr.New(apperr.ErrInputValidation, "start",
				fmt.Sprintf("curve (%.2f L) exceeds maximum (%.2f L)", capErr.MaxVolume, capErr.Capacity), err)
		}
		return err
	}
	if p.IsEmpty() {
		return apperr.Validation("start", fmt.Sprintf("curve %q is invalid or has no motion", name))
	}
	sess.CurveName = name
	sess.Profile = p
	s.say(fmt.Sprintf("INFO: curve OK, T=%.2fs (%d pts)", p.Duration, p.Length))

	if sess.Connectivity == models.Online {
		return s.upload(p, plc.LoopSimulation)
	}
	sess.Generator = waveform.NewRecorded(p)
	return nil
}

func (s *Supervisor) prepareManual(sess *SupervisorContext) error {
	spec, err := s.waveformSpec(sess.Connectivity)
	if err != nil {
		return err
	}
	if sess.Connectivity == models.Online {
		s.say(fmt.Sprintf("MANUAL: computing %s", spec.Kind))
		p, err := s.compiler.CompileWaveform(spec, s.logger)
		if err != nil {
			return err
		}
		sess.Profile = p
		return s.upload(p, plc.LoopManual)
	}
	sess.Generator, err = waveform.NewParametric(spec, s.logger)
	return err
}

func (s *Supervisor) upload(p models.MotionProfile, loop int) error {
	if err := ValidateProfile(p); err != nil {
		return err
	}
	s.say("PLC: sending profile")
	if err := UploadProfile(s.transport, p, loop, s.logger); err != nil {
		s.metrics.ProtocolError("upload")
		return err
	}
	if p.Truncated {
		s.logger.WithField("points", p.Length).Warn("profile truncated to buffer capacity")
	}
	s.say("PLC: synchronized, motion starting")
	return nil
}

// waveformSpec читает параметры ручной волны. Если амплитуда или скорость
// не заданы, берутся резервные значения: с ПЛК полный ход, без ПЛК ноль.
func (s *Supervisor) waveformSpec(connectivity models.Connectivity) (models.WaveformSpec, error) {
	kind := s.presenter.WaveKind()
	if !kind.Valid() {
		return models.WaveformSpec{}, apperr.Validation("start", fmt.Sprintf("unknown wave kind %q", kind))
	}

	amplitude, errA := s.presenter.Amplitude()
	speed, errS := s.presenter.Speed()
	if errA != nil || errS != nil {
		amplitude = s.th.OfflineAmplitudeMM
		if connectivity == models.Online {
			amplitude = s.th.FallbackAmplitudeMM
		}
		speed = s.th.DefaultSpeedPercent
		s.logger.WithFields(logrus.Fields{"amplitude": amplitude, "speed": speed}).Warn("wave parameters unreadable, using fallback")
	}
	if speed <= 0 {
		speed = 1
	}
	return models.WaveformSpec{
		Kind:         kind,
		AmplitudeMM:  amplitude,
		SpeedPercent: speed,
		Equation:     s.presenter.Equation(),
	}, nil
}

// speed возвращает скорость оператора для допуска рассогласования.
func (s *Supervisor) speed() float64 {
	v, err := s.presenter.Speed()
	if err != nil {
		return s.th.DefaultSpeedPercent
	}
	return v
}
