package waveform

import (
	"math"
	"testing"
	"time"

	"github.com/iwtcode/spiroBench/models"
	apperr "github.com/iwtcode/spiroBench/pkg/errors"
	"github.com/iwtcode/spiroBench/units"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l, _ := test.NewNullLogger()
	return l
}

func newWave(t *testing.T, spec models.WaveformSpec, logger logrus.FieldLogger) *Generator {
	t.Helper()
	g, err := NewParametric(spec, logger)
	require.NoError(t, err)
	return g
}

func TestUnknownWaveKindIsRejected(t *testing.T) {
	g, err := NewParametric(models.WaveformSpec{Kind: "square", AmplitudeMM: 50, SpeedPercent: 50}, quietLogger())
	require.Nil(t, g)
	require.ErrorIs(t, err, apperr.ErrInputValidation)
	require.Contains(t, err.Error(), "square")

	_, err = NewParametric(models.WaveformSpec{AmplitudeMM: 50}, quietLogger())
	require.ErrorIs(t, err, apperr.ErrInputValidation, "пустой вид волны")
}

func TestSinusoidStartsAtZeroAndPeaksAtAmplitude(t *testing.T) {
	g := newWave(t, models.WaveformSpec{Kind: models.Sinusoid, AmplitudeMM: 100, SpeedPercent: 50}, quietLogger())

	_, p0 := g.Next(0)
	require.InDelta(t, 0.0, p0, 1e-9)

	// полупериод волны 1 с плюс задержка фазы
	_, peak := g.Next(1.0 + PhaseDelay)
	require.InDelta(t, units.MMToDegrees(100), peak, 1e-6)
}

func TestHalfRectifiedIsZeroOnFallingHalf(t *testing.T) {
	g := newWave(t, models.WaveformSpec{Kind: models.HalfRectifiedSine, AmplitudeMM: 50, SpeedPercent: 50}, quietLogger())

	_, rising := g.Next(0.25 + PhaseDelay)
	require.Greater(t, rising, 0.0)

	_, falling := g.Next(1.5 + PhaseDelay)
	require.Equal(t, 0.0, falling)
}

func TestFullRectifiedNeverNegative(t *testing.T) {
	g := newWave(t, models.WaveformSpec{Kind: models.FullRectifiedSine, AmplitudeMM: 80, SpeedPercent: 30}, quietLogger())
	for i := 0; i < 500; i++ {
		_, p := g.Next(float64(i) * 0.02)
		require.GreaterOrEqual(t, p, 0.0)
	}
}

func TestCustomEquationNeverNegative(t *testing.T) {
	g := newWave(t, models.WaveformSpec{
		Kind:         models.CustomEquation,
		AmplitudeMM:  40,
		SpeedPercent: 20,
		Equation:     "A*sin(2*pi*V*t) - 10",
	}, quietLogger())

	for i := 0; i < 500; i++ {
		_, p := g.Next(float64(i) * 0.02)
		require.GreaterOrEqual(t, p, 0.0, "позиция не может быть отрицательной")
	}
}

func TestCustomEquationUsesRawTime(t *testing.T) {
	g := newWave(t, models.WaveformSpec{Kind: models.CustomEquation, AmplitudeMM: 10, Equation: "t*10"}, quietLogger())
	_, p := g.Next(0.02)
	require.InDelta(t, units.MMToDegrees(0.2), p, 1e-9)
}

func TestCustomEquationFailureHoldsSafePosition(t *testing.T) {
	logger, hook := test.NewNullLogger()
	g := newWave(t, models.WaveformSpec{Kind: models.CustomEquation, Equation: "sqrt(t - 1)"}, logger)

	_, p := g.Next(0.5)
	require.Equal(t, 0.0, p)
	_, p = g.Next(0.52)
	require.Equal(t, 0.0, p)
	require.Len(t, hook.AllEntries(), 1, "одинаковая ошибка пишется один раз")

	// Выражение само восстанавливается, когда становится вычислимым.
	_, p = g.Next(5)
	require.InDelta(t, units.MMToDegrees(2), p, 1e-9)
}

func TestCustomEquationSyntaxErrorDoesNotPanic(t *testing.T) {
	g := newWave(t, models.WaveformSpec{Kind: models.CustomEquation, Equation: "__import__('os')"}, quietLogger())
	_, p := g.Next(1)
	require.Equal(t, 0.0, p)
}

func TestReturnToOriginIsMonotonicAndTerminates(t *testing.T) {
	g := newWave(t, models.WaveformSpec{Kind: models.Sinusoid, AmplitudeMM: 200, SpeedPercent: 50}, quietLogger())
	_, start := g.Next(1.05)
	require.Greater(t, start, 0.0)

	g.BeginReturn()
	require.True(t, g.Returning())

	prev := start
	ticks := 0
	for !g.ReturnComplete() {
		_, p := g.Next(2)
		require.LessOrEqual(t, p, prev)
		prev = p
		ticks++
		require.Less(t, ticks, int(math.Ceil(start/ReturnStepDeg))+2, "возврат должен завершиться")
	}
	require.Equal(t, 0.0, prev)
	require.True(t, g.Returning(), "режим возврата необратим")
}

func TestRecordedFreezesOnLastSample(t *testing.T) {
	p := models.MotionProfile{
		Samples:  []int{0, 100, 200, 300, 300, 300},
		Length:   4,
		Duration: 0.08,
		Interval: 20 * time.Millisecond,
	}
	g := NewRecorded(p)
	require.Equal(t, Recorded, g.Kind())

	_, pos := g.Next(0.021)
	require.InDelta(t, 10.0, pos, 1e-9)
	require.False(t, g.Finished())

	_, pos = g.Next(0.5)
	require.InDelta(t, 30.0, pos, 1e-9)
	require.True(t, g.Finished())
}
