package supervisor

import (
	"time"

	"github.com/iwtcode/spiroBench/models"
	"github.com/iwtcode/spiroBench/waveform"
)

// SupervisorContext - живое состояние одного сеанса движения.
// Создается при старте и уничтожается по завершении или аварийной остановке.
type SupervisorContext struct {
	SessionID    string
	Mode         models.RunMode
	Connectivity models.Connectivity
	CurveName    string
	SpeedPercent float64
	StartedAt    time.Time

	// Elapsed - накопленное время локального генератора, с.
	Elapsed   float64
	Generator *waveform.Generator
	Profile   models.MotionProfile

	StopRequested     bool
	FinishedNaturally bool
	Returning         bool

	FollowingError float64
	followCount    int
	graphTicks     int
}

// sessionInfo сохраняется после завершения сеанса для записи снятой кривой.
type sessionInfo struct {
	mode      models.RunMode
	curveName string
}

// tracker ведет положение привода и оценки скорости и потока между опросами.
// Живет дольше сеанса: положение отслеживается и в покое.
type tracker struct {
	position  float64 // принятое положение, мм
	commanded float64 // заданное ПЛК положение, мм

	prevPosition     float64
	prevVelocity     float64
	prevVolActual    float64
	prevVolCommanded float64
	prevRead         time.Time
	plotStart        time.Time
	firstMotion      time.Time

	velocity      float64
	accel         float64
	flowActual    float64 // отфильтрованный
	flowCommanded float64 // отфильтрованный
	upper, lower  bool
	runFlag       bool
	elapsed       float64
}

// resetOnConnect сбрасывает историю при новом подключении.
func (t *tracker) resetOnConnect(now time.Time) {
	t.prevPosition = 0
	t.prevVelocity = 0
	t.prevRead = time.Time{}
	t.plotStart = now
}

// beginSession фиксирует исходное положение и обнуляет фильтры.
func (t *tracker) beginSession(mmToLiters float64) {
	t.prevPosition = t.position
	t.prevVolActual = t.position * mmToLiters
	t.prevVolCommanded = t.commanded * mmToLiters
	t.flowActual = 0
	t.flowCommanded = 0
	t.plotStart = time.Time{}
	t.firstMotion = time.Time{}
	t.elapsed = 0
}

// clearMotion обнуляет оценки движения при аварийной остановке.
func (t *tracker) clearMotion() {
	t.velocity = 0
	t.accel = 0
	t.flowActual = 0
	t.flowCommanded = 0
	t.firstMotion = time.Time{}
}
