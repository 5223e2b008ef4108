package bench_service

import (
	"context"
	"sync"
	"time"

	"github.com/iwtcode/spiroBench/internal/middleware/logging"
	"github.com/iwtcode/spiroBench/models"
	apperr "github.com/iwtcode/spiroBench/pkg/errors"
	"github.com/iwtcode/spiroBench/supervisor"
)

var errRunnerStopped = apperr.New(apperr.ErrConnection, "runner", "bench loop is not running", nil)

// command - действие над supervisor, выполняемое в горутине цикла.
type command struct {
	fn    func(*supervisor.Supervisor) error
	reply chan error
}

// Runner владеет supervisor: тики движения и опроса и внешние команды
// выполняются последовательно в одной горутине.
type Runner struct {
	sup    *supervisor.Supervisor
	motion time.Duration
	poll   time.Duration
	logger *logging.Logger

	cmds chan command
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once

	mu       sync.RWMutex
	running  bool
	snapshot models.Telemetry
	fault    error
}

func NewRunner(sup *supervisor.Supervisor, motion, poll time.Duration, logger *logging.Logger) *Runner {
	if motion <= 0 {
		motion = 20 * time.Millisecond
	}
	if poll <= 0 {
		poll = 40 * time.Millisecond
	}
	return &Runner{
		sup:    sup,
		motion: motion,
		poll:   poll,
		logger: logger.WithPrefix("RUNNER"),
		cmds:   make(chan command),
		done:   make(chan struct{}),
	}
}

// Start запускает цикл. Повторный вызов ничего не делает.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.running = true
	r.snapshot = r.sup.Snapshot()
	r.fault = r.sup.Fault()

	r.wg.Add(1)
	go r.loop()
}

// Stop останавливает цикл и дожидается его завершения.
func (r *Runner) Stop() {
	r.once.Do(func() { close(r.done) })
	r.wg.Wait()
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}

func (r *Runner) loop() {
	defer r.wg.Done()
	motionTicker := time.NewTicker(r.motion)
	pollTicker := time.NewTicker(r.poll)
	defer func() {
		motionTicker.Stop()
		pollTicker.Stop()
		r.logger.Info("Bench loop stopped")
	}()
	r.logger.Info("Bench loop started", "motion", r.motion, "poll", r.poll)

	for {
		select {
		case <-r.done:
			return
		case c := <-r.cmds:
			c.reply <- c.fn(r.sup)
		case <-motionTicker.C:
			r.sup.MotionTick()
		case <-pollTicker.C:
			r.sup.PollTick()
		}
		r.refresh()
	}
}

func (r *Runner) refresh() {
	snap, fault := r.sup.Snapshot(), r.sup.Fault()
	r.mu.Lock()
	r.snapshot = snap
	r.fault = fault
	r.mu.Unlock()
}

// Do выполняет fn в горутине цикла и возвращает ее результат.
func (r *Runner) Do(ctx context.Context, fn func(*supervisor.Supervisor) error) error {
	r.mu.RLock()
	running := r.running
	r.mu.RUnlock()
	if !running {
		return errRunnerStopped
	}

	c := command{fn: fn, reply: make(chan error, 1)}
	select {
	case r.cmds <- c:
	case <-r.done:
		return errRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-c.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot возвращает телеметрию после последнего шага цикла.
func (r *Runner) Snapshot() models.Telemetry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// Fault возвращает активную неисправность после последнего шага цикла.
func (r *Runner) Fault() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fault
}
