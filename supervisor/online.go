package supervisor

import (
	"fmt"
	"math"
	"time"

	"github.com/iwtcode/spiroBench/models"
	"github.com/iwtcode/spiroBench/plc"
	apperr "github.com/iwtcode/spiroBench/pkg/errors"
	"github.com/sirupsen/logrus"
)

// PollTick - шаг опроса ПЛК (по умолчанию каждые 40 мс).
// Читает блок статуса, проверяет условия безопасности и обновляет телеметрию.
func (s *Supervisor) PollTick() {
	if !s.transport.Connected() {
		s.presenter.SetSensors(false, false, false)
		return
	}

	regs, err := s.transport.ReadBlock(plc.StatusStart, plc.StatusCount)
	var status models.ControllerStatus
	if err == nil {
		status, err = plc.DecodeStatus(regs)
	}
	if err != nil {
		s.pollFailed(err)
		return
	}

	now := s.clock.Now()
	s.track.upper, s.track.lower = status.UpperLimit, status.LowerLimit
	s.track.runFlag = status.Running

	// 1. Концевики
	if status.LimitActive() && !s.calibrating {
		s.limitFault(status)
		return
	}

	// 2. Фильтр скачков положения
	position, rejected := s.glitch.accept(s.track.prevPosition, status.PositionMM)
	if rejected {
		s.metrics.GlitchRejected()
		s.logger.WithFields(logrus.Fields{"reading": status.PositionMM, "kept": position}).Debug("position glitch rejected")
	}
	commanded := status.CommandedMM

	// 3. Цикл завершен контроллером
	if sess := s.onlineSession(); sess != nil && !sess.Returning && !status.Running {
		sess.FinishedNaturally = true
		sess.StopRequested = true
		s.say("PLC: cycle finished by controller")
	}

	// 4. Возврат в ноль
	if sess := s.onlineSession(); sess != nil && sess.Returning {
		if position < s.th.HomeToleranceMM {
			s.completeReturn("motor stopped at HOME position")
		} else if !status.Running {
			if err := s.transport.WriteSingle(plc.RegCommand, plc.CmdResume); err != nil {
				s.metrics.ProtocolError("resume")
				s.logger.WithError(err).Warn("resume-return command failed")
			} else {
				s.presenter.SetStatus("sending return order (50)")
			}
		}
	}

	// 5. Рассогласование
	if sess := s.onlineSession(); sess != nil && !sess.Returning {
		s.checkFollowing(sess, now, position, commanded)
	}

	// 6. Скорость, ускорение, поток
	s.track.update(now, position, commanded, s.mmToLiters, s.th.MotionThresholdMMs)

	s.presenter.SetSensors(status.UpperLimit, status.LowerLimit, true)
	if sess := s.onlineSession(); sess != nil {
		s.plotOnline(sess)
	}
	s.publish()
}

func (s *Supervisor) onlineSession() *SupervisorContext {
	if s.session == nil || s.session.Connectivity != models.Online {
		return nil
	}
	return s.session
}

// pollFailed обрабатывает ошибку чтения статуса: текущее движение прерывается.
func (s *Supervisor) pollFailed(err error) {
	s.metrics.ProtocolError("poll")
	s.logger.WithError(err).Warn("status poll failed")
	s.presenter.SetSensors(false, false, false)
	if s.onlineSession() != nil {
		s.fault = err
		s.endSession(OutcomeAborted)
		s.presenter.SetStatus("motion aborted: PLC communication error")
		s.presenter.AppendLog(fmt.Sprintf("ERROR: motion aborted: %v", err))
	}
}

// limitFault - безусловная авария по концевику: остановка и отключение.
func (s *Supervisor) limitFault(status models.ControllerStatus) {
	s.alarm(OutcomeLimit, "DANGER: limit switch active, emergency stop")
	if s.session != nil {
		s.endSession(OutcomeLimit)
	}
	s.fault = apperr.Safety("limit switch", "limit switch active")
	s.presenter.SetSensors(status.UpperLimit, status.LowerLimit, true)
	s.presenter.SetStatus("limit switch active, PLC disconnected")
	s.disconnect()
	s.publish()
}

// checkFollowing проверяет рассогласование задания и положения после
// периода выравнивания. Срабатывает, когда счетчик превысил порог.
func (s *Supervisor) checkFollowing(sess *SupervisorContext, now time.Time, actual, commanded float64) {
	if now.Sub(sess.StartedAt) <= s.th.GracePeriod {
		sess.followCount = 0
		return
	}

	limit := s.th.FollowingBaseMM + sess.SpeedPercent*s.th.FollowingSpeedFactor
	deviation := math.Abs(commanded - actual)
	sess.FollowingError = deviation
	s.metrics.ObserveFollowingError(deviation)

	if deviation > limit {
		sess.followCount++
	} else {
		sess.followCount = 0
	}
	if sess.followCount <= s.th.FollowingTripTicks {
		return
	}

	sess.followCount = 0
	s.alarm(OutcomeTripped, fmt.Sprintf("ALARM: excessive deviation (%.1f mm > %.1f mm), stopping", deviation, limit))
	s.fault = apperr.Safety("following", fmt.Sprintf("following error %.1f mm exceeds %.1f mm", deviation, limit))
	sess.StopRequested = true
	s.beginReturnOnline(sess, "following error, returning home")
}

// beginReturnOnline отправляет команду возврата в ноль один раз за сеанс.
func (s *Supervisor) beginReturnOnline(sess *SupervisorContext, status string) {
	if sess.Returning {
		return
	}
	sess.Returning = true
	s.state = ReturningHome
	if err := s.transport.WriteSingle(plc.RegCommand, plc.CmdHome); err != nil {
		s.metrics.ProtocolError("home")
		s.warn(err, "home command failed")
	}
	s.presenter.SetStatus(status)
	s.say("PLC: returning to 0")
}

// stopOnline обрабатывает запрос остановки сеанса с ПЛК.
func (s *Supervisor) stopOnline(sess *SupervisorContext) {
	if sess.Mode == models.ModeSimulation && sess.FinishedNaturally {
		s.endSession(OutcomeFinished)
		s.presenter.SetStatus("simulation finished, motor holding")
		s.say("PLC: simulation finished")
		return
	}
	s.beginReturnOnline(sess, "interrupted, returning home")
}

func (s *Supervisor) plotOnline(sess *SupervisorContext) {
	t := s.track.elapsed
	sess.graphTicks++
	if sess.graphTicks%s.th.MotionGraphDecimation == 0 {
		s.presenter.AppendGraph(GraphMotion, XY{X: t, Y: s.track.commanded}, XY{X: t, Y: s.track.position})
	}
	if sess.Returning {
		return
	}
	volCommanded := s.track.commanded * s.mmToLiters
	volActual := s.track.position * s.mmToLiters
	s.trace = append(s.trace, models.Point{Volume: volActual, Flow: s.track.flowActual})
	s.presenter.AppendGraph(GraphFlowVolume,
		XY{X: volCommanded, Y: s.track.flowCommanded},
		XY{X: volActual, Y: s.track.flowActual})
	s.presenter.AppendGraph(GraphVolumeTime, XY{X: t, Y: volCommanded}, XY{X: t, Y: volActual})
}
