package bench_service

import (
	"sync"
	"time"

	"github.com/iwtcode/spiroBench/internal/domain"
	dmodels "github.com/iwtcode/spiroBench/internal/domain/models"
	"github.com/iwtcode/spiroBench/internal/interfaces"
	"github.com/iwtcode/spiroBench/models"
	apperr "github.com/iwtcode/spiroBench/pkg/errors"
	"github.com/iwtcode/spiroBench/supervisor"
)

const (
	logHistory   = 200
	graphHistory = 2000
)

// Broadcaster - получатель событий для живого отображения.
type Broadcaster interface {
	Broadcast(v interface{})
}

// graphMessage - порция точек графика для websocket-клиентов.
type graphMessage struct {
	Type   string          `json:"type"`
	Graph  string          `json:"graph"`
	Points []supervisor.XY `json:"points"`
	Reset  bool            `json:"reset,omitempty"`
}

// presenter связывает supervisor с внешним миром: параметры берутся из
// последнего запроса на старт, вывод расходится в websocket, Kafka и журнал.
type presenter struct {
	clock func() time.Time
	hub   Broadcaster
	bus   interfaces.KafkaService

	mu        sync.RWMutex
	request   dmodels.MotionRequest
	log       []string
	status    string
	controls  map[supervisor.Control]bool
	connected bool
	upper     bool
	lower     bool
	suggested string
	graphs    map[supervisor.Graph][]supervisor.XY
	last      models.Telemetry
}

func newPresenter(hub Broadcaster, bus interfaces.KafkaService) *presenter {
	return &presenter{
		clock: time.Now,
		hub:   hub,
		bus:   bus,
		controls: map[supervisor.Control]bool{
			supervisor.ControlStart:     true,
			supervisor.ControlStop:      false,
			supervisor.ControlSave:      false,
			supervisor.ControlCalibrate: true,
		},
		graphs: make(map[supervisor.Graph][]supervisor.XY),
	}
}

// setRequest запоминает параметры панели для следующего RequestStart.
func (p *presenter) setRequest(req dmodels.MotionRequest) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.request = req
}

// --- supervisor.Panel ---

func (p *presenter) Mode() models.RunMode {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.request.Mode
}

func (p *presenter) SelectedCurve() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.request.Curve
}

func (p *presenter) WaveKind() models.WaveKind {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.request.Wave == "" {
		return models.Sinusoid
	}
	return p.request.Wave
}

func (p *presenter) Equation() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.request.Equation
}

func (p *presenter) Amplitude() (float64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.request.Amplitude == nil {
		return 0, apperr.Validation("amplitude", "not set")
	}
	return *p.request.Amplitude, nil
}

func (p *presenter) Speed() (float64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.request.Speed == nil {
		return 0, apperr.Validation("speed", "not set")
	}
	return *p.request.Speed, nil
}

// --- supervisor.Sink ---

func (p *presenter) AppendLog(line string) {
	stamped := p.clock().Format("15:04:05") + " " + line
	p.mu.Lock()
	p.log = append(p.log, stamped)
	if len(p.log) > logHistory {
		p.log = p.log[len(p.log)-logHistory:]
	}
	p.mu.Unlock()
	p.emit(domain.BenchEvent{Type: domain.EventLog, Message: line})
}

func (p *presenter) SetStatus(text string) {
	p.mu.Lock()
	p.status = text
	p.mu.Unlock()
	p.emit(domain.BenchEvent{Type: domain.EventStatus, Message: text})
}

func (p *presenter) ResetGraphs() {
	p.mu.Lock()
	p.graphs = make(map[supervisor.Graph][]supervisor.XY)
	p.mu.Unlock()
	p.broadcast(graphMessage{Type: "graph", Reset: true})
}

func (p *presenter) AppendGraph(graph supervisor.Graph, pairs ...supervisor.XY) {
	if len(pairs) == 0 {
		return
	}
	p.mu.Lock()
	points := append(p.graphs[graph], pairs...)
	if len(points) > graphHistory {
		points = points[len(points)-graphHistory:]
	}
	p.graphs[graph] = points
	p.mu.Unlock()
	p.broadcast(graphMessage{Type: "graph", Graph: graph.String(), Points: pairs})
}

func (p *presenter) SetControl(control supervisor.Control, enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.controls[control] = enabled
}

func (p *presenter) SetConnection(connected bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = connected
}

func (p *presenter) SetSensors(upper, lower, connected bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.upper, p.lower = upper, lower
	p.connected = connected
}

func (p *presenter) SuggestSaveName(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.suggested = name
}

func (p *presenter) Publish(t models.Telemetry) {
	p.mu.Lock()
	p.last = t
	p.mu.Unlock()
	p.emit(domain.BenchEvent{Type: domain.EventTelemetry, Timestamp: t.Timestamp, SessionID: t.SessionID, Telemetry: &t})
}

func (p *presenter) emit(event domain.BenchEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.clock()
	}
	if event.SessionID == "" {
		p.mu.RLock()
		event.SessionID = p.last.SessionID
		p.mu.RUnlock()
	}
	p.broadcast(event)
	if p.bus != nil {
		p.bus.Publish(event)
	}
}

func (p *presenter) broadcast(v interface{}) {
	if p.hub != nil {
		p.hub.Broadcast(v)
	}
}

// view собирает состояние панели для HTTP-ответа.
func (p *presenter) view() dmodels.BenchStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	controls := make(map[string]bool, len(p.controls))
	for c, enabled := range p.controls {
		controls[c.String()] = enabled
	}
	log := make([]string, len(p.log))
	copy(log, p.log)

	return dmodels.BenchStatus{
		Telemetry:   p.last,
		StatusText:  p.status,
		SuggestName: p.suggested,
		Controls:    controls,
		Log:         log,
	}
}

// graph возвращает копию накопленных точек графика.
func (p *presenter) graph(g supervisor.Graph) []supervisor.XY {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]supervisor.XY, len(p.graphs[g]))
	copy(out, p.graphs[g])
	return out
}
