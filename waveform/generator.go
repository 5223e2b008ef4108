// Package waveform содержит генераторы положения привода во времени:
// параметрические волны и воспроизведение записанного профиля.
package waveform

import (
	"fmt"
	"math"

	"github.com/iwtcode/spiroBench/models"
	apperr "github.com/iwtcode/spiroBench/pkg/errors"
	"github.com/iwtcode/spiroBench/units"
	"github.com/sirupsen/logrus"
)

const (
	// PhaseDelay вычитается из времени, чтобы волна начиналась без скачка.
	PhaseDelay = 0.05
	// ReturnStepDeg - шаг возврата в ноль за один вызов Next.
	ReturnStepDeg = 2.0
)

// Kind - вариант генератора.
type Kind int

const (
	Parametric Kind = iota
	Recorded
)

func (k Kind) String() string {
	if k == Recorded {
		return "recorded"
	}
	return "parametric"
}

// Generator - генератор положения. Вариант задается полем kind,
// возврат в ноль общий для обоих вариантов и необратим.
type Generator struct {
	kind   Kind
	logger logrus.FieldLogger

	// параметрический
	wave        models.WaveKind
	amplitudeMM float64
	amplitude   float64 // градусы
	speed       float64 // доля
	omega       float64
	expr        *Expr
	exprErr     error
	lastErr     string

	// записанный
	points   []float64 // градусы
	interval float64
	maxIndex int
	finished bool

	offset     float64
	position   float64
	returning  bool
	returnDone bool
}

// NewParametric создает генератор по описанию волны. Неизвестный вид
// волны - ошибка валидации. Ошибка компиляции выражения не возвращается:
// генератор будет выдавать безопасную позицию и писать ошибку в лог.
func NewParametric(spec models.WaveformSpec, logger logrus.FieldLogger) (*Generator, error) {
	if !spec.Kind.Valid() {
		return nil, apperr.Validation("waveform", fmt.Sprintf("unknown wave kind %q", spec.Kind))
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	v := spec.SpeedPercent * 0.01
	g := &Generator{
		kind:        Parametric,
		logger:      logger,
		wave:        spec.Kind,
		amplitudeMM: spec.AmplitudeMM,
		amplitude:   units.MMToDegrees(spec.AmplitudeMM),
		speed:       v,
		omega:       v * 2 * math.Pi,
		offset:      units.MMToDegrees(0),
	}
	if spec.Kind == models.CustomEquation {
		g.expr, g.exprErr = Compile(spec.Equation)
	}
	return g, nil
}

// NewRecorded создает генератор, воспроизводящий реальные отсчеты профиля.
func NewRecorded(p models.MotionProfile) *Generator {
	interval := p.Interval.Seconds()
	if interval <= 0 {
		interval = 0.02
	}
	points := p.Degrees()
	return &Generator{
		kind:     Recorded,
		logger:   logrus.StandardLogger(),
		points:   points,
		interval: interval,
		maxIndex: len(points) - 1,
	}
}

// Kind возвращает вариант генератора.
func (g *Generator) Kind() Kind {
	return g.kind
}

// Next возвращает положение в градусах для прошедшего времени t.
func (g *Generator) Next(t float64) (float64, float64) {
	if g.returning {
		g.position -= ReturnStepDeg
		if g.position <= g.offset {
			g.position = g.offset
			g.returnDone = true
		}
		return t, g.position
	}

	if g.kind == Recorded {
		g.position = g.recorded(t)
	} else {
		g.position = g.parametric(t)
	}
	return t, g.position
}

func (g *Generator) recorded(t float64) float64 {
	if len(g.points) == 0 {
		g.finished = true
		return g.offset
	}
	idx := int(t / g.interval)
	if idx >= g.maxIndex {
		g.finished = true
		return g.points[len(g.points)-1]
	}
	if idx < 0 {
		idx = 0
	}
	return g.points[idx]
}

func (g *Generator) parametric(t float64) float64 {
	phase := t - PhaseDelay
	if phase < 0 {
		phase = 0
	}

	switch g.wave {
	case models.Sinusoid:
		return g.amplitude/2*(1-math.Cos(g.omega*phase)) + g.offset
	case models.HalfRectifiedSine:
		cycle := math.Mod(phase*g.omega, 2*math.Pi)
		if cycle < 0 {
			cycle += 2 * math.Pi
		}
		if cycle < math.Pi {
			return g.amplitude*math.Sin(cycle) + g.offset
		}
		return g.offset
	case models.FullRectifiedSine:
		return g.amplitude*math.Abs(math.Sin(g.omega*phase)) + g.offset
	case models.CustomEquation:
		return g.custom(t)
	default:
		return g.offset
	}
}

// custom вычисляет пользовательское выражение от исходного времени t.
func (g *Generator) custom(t float64) float64 {
	err := g.exprErr
	var mm float64
	if err == nil && g.expr != nil {
		mm, err = g.expr.Eval(Env{T: t, A: g.amplitudeMM, V: g.speed})
	} else if g.expr == nil && err == nil {
		err = evalErr("no equation")
	}
	if err != nil {
		if msg := err.Error(); msg != g.lastErr {
			g.logger.WithError(err).WithField("t", t).Warn("equation evaluation failed, holding safe position")
			g.lastErr = msg
		}
		return g.offset
	}
	g.lastErr = ""
	if mm < 0 {
		mm = 0
	}
	return units.MMToDegrees(mm) + g.offset
}

// BeginReturn переключает генератор в режим возврата в ноль.
func (g *Generator) BeginReturn() {
	g.returning = true
}

// Returning сообщает, активен ли режим возврата.
func (g *Generator) Returning() bool {
	return g.returning
}

// ReturnComplete сообщает, достигнут ли ноль в режиме возврата.
func (g *Generator) ReturnComplete() bool {
	return g.returnDone
}

// Finished сообщает, что записанный профиль воспроизведен до конца.
func (g *Generator) Finished() bool {
	return g.finished
}

// Position возвращает последнюю выданную позицию в градусах.
func (g *Generator) Position() float64 {
	return g.position
}
