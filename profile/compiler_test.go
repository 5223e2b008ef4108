package profile

import (
	"errors"
	"testing"

	"github.com/iwtcode/spiroBench/models"
	apperr "github.com/iwtcode/spiroBench/pkg/errors"
	"github.com/iwtcode/spiroBench/units"
	"github.com/stretchr/testify/require"
)

func curve(points ...[2]float64) models.FlowVolumeCurve {
	c := models.FlowVolumeCurve{}
	for _, p := range points {
		c.Points = append(c.Points, models.Point{Volume: p[0], Flow: p[1]})
	}
	return c
}

// rampCurve - плавный выдох от 0 до maxVol с постоянным потоком.
func rampCurve(maxVol, flow float64, n int) models.FlowVolumeCurve {
	c := models.FlowVolumeCurve{}
	for i := 0; i < n; i++ {
		c.Points = append(c.Points, models.Point{Volume: maxVol * float64(i) / float64(n-1), Flow: flow})
	}
	return c
}

func TestCompileSmallCurve(t *testing.T) {
	c := NewCompiler(units.DefaultGeometry())
	c.Capacity = 5

	p, err := c.Compile(curve([2]float64{0, 0}, [2]float64{1, 2}, [2]float64{3, 2}, [2]float64{3, 0}))
	require.NoError(t, err)
	require.False(t, p.IsEmpty(), "профиль не должен быть пустым")
	require.NotEmpty(t, p.Samples)
	require.InDelta(t, 0.04, p.Duration, 1e-9)

	for i := 1; i < p.Length; i++ {
		require.GreaterOrEqual(t, p.Samples[i], p.Samples[i-1], "позиции не убывают при росте объема")
	}
}

func TestCompileRejectsOverCapacity(t *testing.T) {
	c := NewCompiler(units.DefaultGeometry())
	c.Capacity = 5

	p, err := c.Compile(curve([2]float64{0, 0}, [2]float64{10, 2}))
	require.Error(t, err)
	require.True(t, errors.Is(err, apperr.ErrInputValidation), "ожидалась ошибка валидации")

	var capErr *apperr.CapacityError
	require.ErrorAs(t, err, &capErr)
	require.Equal(t, 10.0, capErr.MaxVolume)
	require.Empty(t, p.Samples)
}

func TestCompileProfileInvariants(t *testing.T) {
	c := NewCompiler(units.DefaultGeometry())

	p, err := c.Compile(rampCurve(4.0, 3.0, 400))
	require.NoError(t, err)
	require.LessOrEqual(t, len(p.Samples), BufferCapacity)
	for _, s := range p.Samples {
		require.GreaterOrEqual(t, s, 0)
	}

	n := len(p.Samples)
	require.Equal(t, p.Samples[n-1], p.Samples[n-2], "последние два отсчета совпадают")
	require.Equal(t, p.Samples[p.Length-1], p.Samples[p.Length-2], "коррекция края")
	require.Equal(t, p.Length+PaddingSamples, n)
}

func TestCompileIsDeterministic(t *testing.T) {
	c := NewCompiler(units.DefaultGeometry())
	in := rampCurve(3.0, 2.5, 150)

	a, err := c.Compile(in)
	require.NoError(t, err)
	b, err := c.Compile(in)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestCompileTooShortCurveMeansNoMotion(t *testing.T) {
	c := NewCompiler(units.DefaultGeometry())

	for _, in := range []models.FlowVolumeCurve{
		{},
		curve([2]float64{1, 1}),
		curve([2]float64{1, 1}, [2]float64{1, 1}),
	} {
		p, err := c.Compile(in)
		require.NoError(t, err)
		require.True(t, p.IsEmpty())
		require.Equal(t, []int{0, 0}, p.Samples)
	}
}

func TestCompileTruncatesToBufferCapacity(t *testing.T) {
	c := NewCompiler(units.DefaultGeometry())

	// 5000 шагов по 0.02 с -> 100 с движения
	in := models.FlowVolumeCurve{}
	for i := 0; i <= 5000; i++ {
		in.Points = append(in.Points, models.Point{Volume: float64(i) * 0.001, Flow: 0.05})
	}
	p, err := c.Compile(in)
	require.NoError(t, err)
	require.True(t, p.Truncated)
	require.Len(t, p.Samples, BufferCapacity)
	require.Equal(t, BufferCapacity, p.Length)
}

func TestStepDurationClamps(t *testing.T) {
	require.Equal(t, 0.0, stepDuration(-1, 2), "отрицательный dt")
	require.Equal(t, nominalStep, stepDuration(1, 1), "dt > 0.5 заменяется номинальным")
	require.InDelta(t, 0.2, stepDuration(0.01, 0.0), 1e-12, "малый поток ограничен 0.05")
}

func TestInterpHandlesRepeatedTimes(t *testing.T) {
	xp := []float64{0, 0.02, 0.04, 0.04}
	fp := []float64{0, 10, 20, 30}
	require.InDelta(t, 5.0, interp(0.01, xp, fp), 1e-9)
	require.InDelta(t, 30.0, interp(0.04, xp, fp), 1e-9)
	require.InDelta(t, 0.0, interp(-1, xp, fp), 1e-9)
}

func TestCompileWaveformClosesCycle(t *testing.T) {
	c := NewCompiler(units.DefaultGeometry())

	p, err := c.CompileWaveform(models.WaveformSpec{Kind: models.Sinusoid, AmplitudeMM: 100, SpeedPercent: 50}, nil)
	require.NoError(t, err)
	require.InDelta(t, 2.0, p.Duration, 1e-9)
	require.Equal(t, 101, p.Length, "100 отсчетов + замыкающий")
	require.Equal(t, p.Samples[0], p.Samples[p.Length-1])
	require.Len(t, p.Samples, p.Length+PaddingSamples)
}

func TestCompileWaveformRejectsUnknownKind(t *testing.T) {
	c := NewCompiler(units.DefaultGeometry())

	p, err := c.CompileWaveform(models.WaveformSpec{Kind: "triangle", AmplitudeMM: 100, SpeedPercent: 50}, nil)
	require.ErrorIs(t, err, apperr.ErrInputValidation)
	require.True(t, p.IsEmpty())
}

func TestWavePeriodBounds(t *testing.T) {
	require.Equal(t, 60.0, WavePeriod(1))
	require.Equal(t, 0.5, WavePeriod(1000))
	require.Equal(t, 60.0, WavePeriod(0))
	require.Equal(t, 10.0, WavePeriod(10))
}
