// Package profile превращает кривые поток-объем и ручные волны
// в профили положения привода для буфера ПЛК.
package profile

import (
	"math"
	"sort"
	"time"

	"github.com/iwtcode/spiroBench/models"
	apperr "github.com/iwtcode/spiroBench/pkg/errors"
	"github.com/iwtcode/spiroBench/units"
	"gonum.org/v1/gonum/floats"
)

const (
	DefaultInterval = 20 * time.Millisecond

	// BufferCapacity - размер таблицы профиля в ПЛК.
	BufferCapacity = 4000
	// PaddingSamples - число повторов последнего отсчета в хвосте профиля.
	PaddingSamples = 50

	minFlowMagnitude = 0.05 // л/с
	maxStepSeconds   = 0.5
	nominalStep      = 0.02
)

// Compiler строит профили движения. Нулевые поля заменяются значениями по умолчанию.
type Compiler struct {
	Geometry units.Geometry
	Interval time.Duration
	// Capacity - допустимый объем кривой в литрах. 0 означает полный ход стенда.
	Capacity float64
}

// NewCompiler создает компилятор для заданной геометрии.
func NewCompiler(g units.Geometry) *Compiler {
	return &Compiler{Geometry: g, Interval: DefaultInterval}
}

func (c *Compiler) interval() time.Duration {
	if c.Interval <= 0 {
		return DefaultInterval
	}
	return c.Interval
}

func (c *Compiler) capacity() float64 {
	if c.Capacity > 0 {
		return c.Capacity
	}
	return c.Geometry.MaxVolumeLiters()
}

// Compile переводит кривую в профиль. При превышении емкости возвращает
// *errors.CapacityError с максимальным объемом кривой и пустой профиль.
func (c *Compiler) Compile(curve models.FlowVolumeCurve) (models.MotionProfile, error) {
	interval := c.interval()
	if len(curve.Points) < 2 {
		return noMotion(interval), nil
	}

	volumes := curve.Volumes()
	flows := curve.Flows()

	// 1. Проверка емкости
	maxVol := floats.Max(volumes)
	if maxVol > c.capacity() {
		return models.MotionProfile{}, &apperr.CapacityError{MaxVolume: maxVol, Capacity: c.capacity()}
	}

	// 2. Восстановление времени по объему и среднему потоку
	steps := make([]float64, len(volumes))
	for i := 1; i < len(volumes); i++ {
		steps[i] = stepDuration(volumes[i]-volumes[i-1], (flows[i]+flows[i-1])/2.0)
	}
	times := make([]float64, len(steps))
	floats.CumSum(times, steps)

	total := times[len(times)-1]
	if total <= 0 {
		return noMotion(interval), nil
	}

	// 3. Объем -> угол вала
	degrees := make([]float64, len(volumes))
	copy(degrees, volumes)
	floats.Scale(c.Geometry.LitersToDegrees(), degrees)

	// 4. Передискретизация с фиксированным шагом на [0, total)
	stepSec := interval.Seconds()
	grid := arange(total, stepSec)
	samples := make([]int, len(grid))
	for i, t := range grid {
		samples[i] = toTenths(interp(t, times, degrees) + c.Geometry.SafetyOffsetDeg)
	}

	// 5. Последний отсчет заменяется предпоследним
	if len(samples) > 2 {
		samples[len(samples)-1] = samples[len(samples)-2]
	}

	return pad(samples, total, interval), nil
}

// stepDuration возвращает dt = dV / средний поток с ограничениями.
func stepDuration(dv, avgFlow float64) float64 {
	if math.Abs(avgFlow) < minFlowMagnitude {
		avgFlow = minFlowMagnitude
	}
	dt := dv / avgFlow
	if dt < 0 {
		dt = 0
	}
	if dt > maxStepSeconds {
		dt = nominalStep
	}
	return dt
}

// arange повторяет numpy.arange(0, stop, step).
func arange(stop, step float64) []float64 {
	if step <= 0 || stop <= 0 {
		return nil
	}
	n := int(math.Ceil(stop / step))
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * step
	}
	return out
}

// interp - кусочно-линейная интерполяция по неубывающей сетке xp.
// Повторяющиеся значения xp допустимы.
func interp(x float64, xp, fp []float64) float64 {
	last := len(xp) - 1
	if x <= xp[0] {
		return fp[0]
	}
	if x >= xp[last] {
		return fp[last]
	}
	j := sort.Search(len(xp), func(i int) bool { return xp[i] > x }) - 1
	x0, x1 := xp[j], xp[j+1]
	return fp[j] + (fp[j+1]-fp[j])*(x-x0)/(x1-x0)
}

// toTenths переводит градусы в десятые доли с отсечением отрицательных.
func toTenths(deg float64) int {
	v := int(deg * 10)
	if v < 0 {
		return 0
	}
	return v
}

// pad добавляет хвостовое заполнение и обрезает профиль по емкости буфера.
func pad(samples []int, duration float64, interval time.Duration) models.MotionProfile {
	length := len(samples)
	truncated := length > BufferCapacity

	out := make([]int, 0, length+PaddingSamples)
	out = append(out, samples...)
	if length > 0 {
		last := samples[length-1]
		for i := 0; i < PaddingSamples; i++ {
			out = append(out, last)
		}
	}
	if len(out) > BufferCapacity {
		out = out[:BufferCapacity]
	}
	if length > BufferCapacity {
		length = BufferCapacity
	}

	return models.MotionProfile{
		Samples:   out,
		Length:    length,
		Duration:  duration,
		Interval:  interval,
		Truncated: truncated,
	}
}

func noMotion(interval time.Duration) models.MotionProfile {
	return models.MotionProfile{Samples: []int{0, 0}, Length: 2, Interval: interval}
}
