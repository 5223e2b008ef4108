package supervisor

import (
	"math"
	"time"
)

const (
	// minGlitchPositionMM - ниже этого положения скачки не фильтруются.
	minGlitchPositionMM = 1.0

	maxPollGapSeconds = 0.5
	nominalPollGap    = 0.04
	minFlowGapSeconds = 0.001
)

// glitchFilter отбрасывает неправдоподобные скачки положения.
// Скачок принимается, если повторился дольше confirm тиков подряд.
type glitchFilter struct {
	threshold float64
	confirm   int
	count     int
}

// accept возвращает принятое положение и признак отброшенного отсчета.
func (f *glitchFilter) accept(prev, reading float64) (float64, bool) {
	if math.Abs(reading-prev) > f.threshold && prev > minGlitchPositionMM {
		f.count++
		if f.count > f.confirm {
			f.count = 0
			return reading, false
		}
		return prev, true
	}
	f.count = 0
	return reading, false
}

func (f *glitchFilter) reset() {
	f.count = 0
}

// pollGap возвращает шаг времени между опросами. Длинные паузы
// (отладка, переподключение) заменяются номинальным шагом.
func pollGap(now, prev time.Time) float64 {
	dt := now.Sub(prev).Seconds()
	if dt > maxPollGapSeconds {
		dt = nominalPollGap
	}
	return dt
}

// smoothingAlpha выбирает коэффициент экспоненциального фильтра потока.
// attack - время с момента первого движения привода, residual - модуль
// расхождения сырого и отфильтрованного потока.
func smoothingAlpha(attack float64, moving bool, residual float64) float64 {
	switch {
	case attack > 0 && attack < 0.25:
		return 0.95
	case attack >= 0.5 && attack < 1:
		return math.Min(0.2+residual*0.15, 0.5)
	case !moving:
		return 1.0
	default:
		return math.Min(0.08+residual*0.1, 0.25)
	}
}

// smooth применяет экспоненциальный фильтр.
func smooth(prev, raw, alpha float64) float64 {
	return prev*(1-alpha) + raw*alpha
}

// update пересчитывает скорость, ускорение и поток по новому отсчету.
func (t *tracker) update(now time.Time, position, commanded, mmToLiters, motionThreshold float64) {
	if t.plotStart.IsZero() {
		t.plotStart = now
	}
	t.elapsed = now.Sub(t.plotStart).Seconds()

	dt := pollGap(now, t.prevRead)
	var velocity, accel, flowActual, flowCommanded float64
	if dt > 0 && !t.prevRead.IsZero() {
		velocity = (position - t.prevPosition) / dt
		accel = (velocity - t.prevVelocity) / dt

		volActual := position * mmToLiters
		volCommanded := commanded * mmToLiters
		if dt > minFlowGapSeconds {
			flowActual = (volActual - t.prevVolActual) / dt
			flowCommanded = (volCommanded - t.prevVolCommanded) / dt
		}
		t.prevVolActual = volActual
		t.prevVolCommanded = volCommanded
	}

	t.prevRead = now
	t.prevPosition = position
	t.prevVelocity = velocity
	t.position = position
	t.commanded = commanded
	t.velocity = velocity
	t.accel = accel

	var attack float64
	if t.firstMotion.IsZero() {
		if math.Abs(velocity) > motionThreshold {
			t.firstMotion = now
			attack = 0.001
		}
	} else {
		attack = now.Sub(t.firstMotion).Seconds()
	}

	alpha := smoothingAlpha(attack, !t.firstMotion.IsZero(), math.Abs(flowActual-t.flowActual))
	t.flowActual = smooth(t.flowActual, flowActual, alpha)
	t.flowCommanded = smooth(t.flowCommanded, flowCommanded, alpha)
}
