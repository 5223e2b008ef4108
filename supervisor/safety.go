package supervisor

import (
	"errors"
	"fmt"

	"github.com/iwtcode/spiroBench/plc"
)

// EmergencyStop немедленно останавливает все: сбрасывает сеанс и буферы,
// отправляет в ПЛК команду аварийной остановки и блокирует переходы до Rearm.
func (s *Supervisor) EmergencyStop() error {
	s.logger.WithField("alarm", true).Error("EMERGENCY STOP: total halt")
	s.presenter.AppendLog("!!! EMERGENCY STOP PRESSED: TOTAL HALT !!!")

	s.emergency = true
	s.calibrating = false
	if s.session != nil {
		s.endSession(OutcomeEmergency)
	}
	s.state = EmergencyStop
	s.trace = nil
	s.track.clearMotion()
	s.glitch.reset()
	s.metrics.EmergencyStop()

	s.presenter.ResetGraphs()
	for _, c := range []Control{ControlStart, ControlStop, ControlSave, ControlCalibrate} {
		s.presenter.SetControl(c, false)
	}
	s.presenter.SetStatus("EMERGENCY: system locked, rearm required")

	if !s.transport.Connected() {
		return nil
	}
	if err := s.transport.WriteSingle(plc.RegCommand, plc.CmdEmergency); err != nil {
		s.metrics.ProtocolError("emergency")
		s.warn(err, "emergency command failed")
		return fmt.Errorf("emergency stop: %w", err)
	}
	s.say("PLC: emergency command sent")
	return nil
}

// Rearm снимает блокировку аварийной остановки и восстанавливает базовые регистры.
func (s *Supervisor) Rearm() error {
	if !s.emergency {
		return nil
	}
	s.emergency = false
	s.state = Idle
	s.calibrating = false
	s.fault = nil
	s.say("SYSTEM: rearmed, restoring controls")

	connected := s.transport.Connected()
	s.presenter.SetConnection(connected)
	s.presenter.SetSensors(s.track.upper, s.track.lower, connected)
	s.presenter.SetControl(ControlStart, true)
	s.presenter.SetControl(ControlCalibrate, true)
	s.publish()

	if !connected {
		return nil
	}
	var errs []error
	if err := s.transport.WriteSingle(plc.RegCommand, plc.CmdHome); err != nil {
		errs = append(errs, err)
	}
	if err := s.transport.WriteSingle(plc.RegEnable, 1); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		s.metrics.ProtocolError("rearm")
		s.warn(err, "PLC reset after rearm failed")
		return err
	}
	s.say("PLC: control registers reset")
	return nil
}
