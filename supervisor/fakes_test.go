package supervisor

import (
	"errors"
	"sort"
	"time"

	"github.com/iwtcode/spiroBench/models"
	apperr "github.com/iwtcode/spiroBench/pkg/errors"
	"github.com/iwtcode/spiroBench/units"
)

type op struct {
	kind  string // "single" или "block"
	reg   uint16
	value int // значение регистра или длина блока
}

type fakeTransport struct {
	connected  bool
	connectErr error
	readErr    error
	writeErr   error
	status     []uint16
	ops        []op
}

func newFakeTransport(connected bool) *fakeTransport {
	return &fakeTransport{connected: connected, status: make([]uint16, 11)}
}

func (f *fakeTransport) Connect(host, port string) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakeTransport) Disconnect()     { f.connected = false }
func (f *fakeTransport) Connected() bool { return f.connected }

func (f *fakeTransport) ReadBlock(start, count uint16) ([]uint16, error) {
	if !f.connected {
		return nil, apperr.ErrNotConnected
	}
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make([]uint16, count)
	copy(out, f.status[start:])
	return out, nil
}

func (f *fakeTransport) WriteSingle(register uint16, value int) error {
	if !f.connected {
		return apperr.ErrNotConnected
	}
	if f.writeErr != nil {
		return f.writeErr
	}
	f.ops = append(f.ops, op{kind: "single", reg: register, value: value})
	return nil
}

func (f *fakeTransport) WriteBlock(start uint16, values []int) error {
	if !f.connected {
		return apperr.ErrNotConnected
	}
	if f.writeErr != nil {
		return f.writeErr
	}
	f.ops = append(f.ops, op{kind: "block", reg: start, value: len(values)})
	return nil
}

// setPosition задает фактическое и заданное положение в мм.
func (f *fakeTransport) setPosition(actualMM, commandedMM float64) {
	f.status[0] = uint16(int16(units.MMToDegrees(actualMM) * 10))
	f.status[5] = uint16(int16(units.MMToDegrees(commandedMM) * 10))
}

func (f *fakeTransport) setRun(run bool) {
	f.status[10] = 0
	if run {
		f.status[10] = 1
	}
}

func (f *fakeTransport) singles() []op {
	var out []op
	for _, o := range f.ops {
		if o.kind == "single" {
			out = append(out, o)
		}
	}
	return out
}

func (f *fakeTransport) lastSingle() op {
	s := f.singles()
	if len(s) == 0 {
		return op{}
	}
	return s[len(s)-1]
}

type sensorsCall struct {
	upper, lower, connected bool
}

type fakePresenter struct {
	mode      models.RunMode
	curve     string
	kind      models.WaveKind
	equation  string
	amplitude float64
	speed     float64
	paramErr  error

	logs       []string
	statuses   []string
	resets     int
	graphs     map[Graph]int
	controls   map[Control]bool
	connection bool
	sensors    []sensorsCall
	suggested  string
	published  []models.Telemetry
}

func newFakePresenter() *fakePresenter {
	return &fakePresenter{
		mode:      models.ModeManual,
		kind:      models.Sinusoid,
		amplitude: 100,
		speed:     10,
		graphs:    map[Graph]int{},
		controls:  map[Control]bool{},
	}
}

func (p *fakePresenter) Mode() models.RunMode      { return p.mode }
func (p *fakePresenter) SelectedCurve() string     { return p.curve }
func (p *fakePresenter) WaveKind() models.WaveKind { return p.kind }
func (p *fakePresenter) Equation() string          { return p.equation }

func (p *fakePresenter) Amplitude() (float64, error) { return p.amplitude, p.paramErr }
func (p *fakePresenter) Speed() (float64, error)     { return p.speed, p.paramErr }

func (p *fakePresenter) AppendLog(line string)    { p.logs = append(p.logs, line) }
func (p *fakePresenter) SetStatus(text string)    { p.statuses = append(p.statuses, text) }
func (p *fakePresenter) ResetGraphs()             { p.resets++ }
func (p *fakePresenter) SuggestSaveName(n string) { p.suggested = n }
func (p *fakePresenter) SetConnection(c bool)     { p.connection = c }

func (p *fakePresenter) AppendGraph(graph Graph, pairs ...XY) {
	p.graphs[graph] += len(pairs)
}

func (p *fakePresenter) SetControl(control Control, enabled bool) {
	p.controls[control] = enabled
}

func (p *fakePresenter) SetSensors(upper, lower, connected bool) {
	p.sensors = append(p.sensors, sensorsCall{upper, lower, connected})
}

func (p *fakePresenter) Publish(t models.Telemetry) {
	p.published = append(p.published, t)
}

type storedCurve struct {
	curve models.FlowVolumeCurve
	meta  models.CurveMetadata
}

type fakeStore struct {
	curves map[string]storedCurve
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{curves: map[string]storedCurve{}}
}

func (s *fakeStore) Lookup(name string) (models.FlowVolumeCurve, models.CurveMetadata, error) {
	c, ok := s.curves[name]
	if !ok {
		return models.FlowVolumeCurve{}, models.CurveMetadata{}, apperr.ErrNotFound
	}
	return c.curve, c.meta, nil
}

func (s *fakeStore) Save(name string, curve models.FlowVolumeCurve, meta models.CurveMetadata) error {
	if _, ok := s.curves[name]; ok {
		return apperr.ErrAlreadyExists
	}
	s.curves[name] = storedCurve{curve: curve, meta: meta}
	return nil
}

func (s *fakeStore) Names() ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]string, 0, len(s.curves))
	for name := range s.curves {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 12, 7, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeMetrics struct {
	nopMetrics
	trips     []string
	outcomes  []string
	glitches  int
	protocol  int
	emergency int
}

func (m *fakeMetrics) SafetyTrip(reason string)      { m.trips = append(m.trips, reason) }
func (m *fakeMetrics) MotionFinished(outcome string) { m.outcomes = append(m.outcomes, outcome) }
func (m *fakeMetrics) GlitchRejected()               { m.glitches++ }
func (m *fakeMetrics) ProtocolError(string)          { m.protocol++ }
func (m *fakeMetrics) EmergencyStop()                { m.emergency++ }

var errBoom = errors.New("boom")

// rampCurve - кривая 0..vol л с постоянным потоком 0.5 л/с.
func rampCurve(name string, n int, vol float64) models.FlowVolumeCurve {
	points := make([]models.Point, n+1)
	for i := range points {
		points[i] = models.Point{Volume: vol * float64(i) / float64(n), Flow: 0.5}
	}
	return models.FlowVolumeCurve{Name: name, Points: points}
}
