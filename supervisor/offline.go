package supervisor

import (
	"github.com/iwtcode/spiroBench/models"
	"github.com/iwtcode/spiroBench/units"
	"github.com/iwtcode/spiroBench/waveform"
)

// MotionTick - шаг движения (по умолчанию каждые 20 мс).
// Без ПЛК ведет локальный генератор, с ПЛК только обрабатывает запрос остановки.
func (s *Supervisor) MotionTick() {
	if s.emergency || s.session == nil {
		return
	}
	sess := s.session

	if sess.Connectivity == models.Online {
		if sess.StopRequested {
			s.stopOnline(sess)
		}
		return
	}

	if sess.StopRequested {
		s.stopOffline(sess)
		return
	}

	gen := sess.Generator
	if gen.Kind() == waveform.Recorded && gen.Finished() {
		sess.FinishedNaturally = true
		sess.StopRequested = true
		return
	}
	_, deg := gen.Next(sess.Elapsed)
	s.advanceOffline(sess, deg*units.MMPerDegreeNominal, true)
}

// stopOffline переводит локальный генератор в возврат в ноль и ведет его до конца.
// Завершенная до конца симуляция остается на месте.
func (s *Supervisor) stopOffline(sess *SupervisorContext) {
	if sess.FinishedNaturally && sess.Mode == models.ModeSimulation {
		s.endSession(OutcomeFinished)
		s.presenter.SetStatus("OFFLINE: cycle complete (hold)")
		s.say("OFFLINE: cycle complete")
		return
	}

	gen := sess.Generator
	if !gen.Returning() {
		gen.BeginReturn()
		sess.Returning = true
		s.state = ReturningHome
		s.presenter.SetStatus("OFFLINE: returning to 0")
		s.say("MOTION: interrupted, returning to 0")
	}

	_, deg := gen.Next(sess.Elapsed)
	s.advanceOffline(sess, deg*units.MMPerDegreeNominal, false)

	if gen.ReturnComplete() {
		s.completeReturn("OFFLINE: return complete")
	}
}

// advanceOffline выводит синтетическое положение и поток за один шаг.
func (s *Supervisor) advanceOffline(sess *SupervisorContext, mm float64, capture bool) {
	step := s.th.MotionStep.Seconds()
	t := sess.Elapsed

	vol := mm * s.mmToLiters
	flow := (vol - s.track.prevVolActual) / step
	s.track.prevVolActual = vol
	s.track.position, s.track.commanded = mm, mm
	s.track.flowActual, s.track.flowCommanded = flow, flow
	s.track.elapsed = t

	sess.graphTicks++
	if sess.graphTicks%s.th.MotionGraphDecimation == 0 {
		s.presenter.AppendGraph(GraphMotion, XY{X: t, Y: mm}, XY{X: t, Y: mm})
	}
	if capture {
		s.trace = append(s.trace, models.Point{Volume: vol, Flow: flow})
		s.presenter.AppendGraph(GraphFlowVolume, XY{X: vol, Y: flow}, XY{X: vol, Y: flow})
		s.presenter.AppendGraph(GraphVolumeTime, XY{X: t, Y: vol}, XY{X: t, Y: vol})
	}

	sess.Elapsed += step
	s.publish()
}
