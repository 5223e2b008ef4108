package profile

import (
	"github.com/iwtcode/spiroBench/models"
	"github.com/iwtcode/spiroBench/waveform"
	"github.com/sirupsen/logrus"
)

const (
	minPeriodSeconds = 0.5
	maxPeriodSeconds = 60.0
)

// WavePeriod возвращает длительность одного цикла ручной волны.
func WavePeriod(speedPercent float64) float64 {
	if speedPercent <= 0 {
		speedPercent = 1
	}
	period := 100.0 / speedPercent
	if period > maxPeriodSeconds {
		period = maxPeriodSeconds
	}
	if period < minPeriodSeconds {
		period = minPeriodSeconds
	}
	return period
}

// CompileWaveform строит профиль одного цикла ручной волны.
// В конец добавляется первый отсчет, чтобы цикл замыкался.
func (c *Compiler) CompileWaveform(spec models.WaveformSpec, logger logrus.FieldLogger) (models.MotionProfile, error) {
	if spec.SpeedPercent <= 0 {
		spec.SpeedPercent = 1
	}
	interval := c.interval()
	period := WavePeriod(spec.SpeedPercent)

	gen, err := waveform.NewParametric(spec, logger)
	if err != nil {
		return models.MotionProfile{}, err
	}
	grid := arange(period, interval.Seconds())
	samples := make([]int, 0, len(grid)+1)
	for _, t := range grid {
		_, deg := gen.Next(t)
		samples = append(samples, toTenths(deg))
	}
	if len(samples) > 0 {
		samples = append(samples, samples[0])
	}

	return pad(samples, period, interval), nil
}
