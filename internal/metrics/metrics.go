// Package metrics публикует счетчики сеансов движения в формате Prometheus.
package metrics

import (
	"net/http"

	"github.com/iwtcode/spiroBench/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics реализует supervisor.Metrics поверх собственного реестра.
type Metrics struct {
	registry       *prometheus.Registry
	motionStarted  *prometheus.CounterVec
	motionFinished *prometheus.CounterVec
	safetyTrips    *prometheus.CounterVec
	protocolErrors *prometheus.CounterVec
	glitches       prometheus.Counter
	emergencies    prometheus.Counter
	followingError prometheus.Histogram
	activeSession  prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		motionStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bench_motion_started_total",
			Help: "Motion sessions started by mode and connectivity.",
		}, []string{"mode", "connectivity"}),
		motionFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bench_motion_finished_total",
			Help: "Motion sessions finished by outcome.",
		}, []string{"outcome"}),
		safetyTrips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bench_safety_trips_total",
			Help: "Safety violations that stopped motion.",
		}, []string{"reason"}),
		protocolErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bench_plc_errors_total",
			Help: "PLC read/write failures by operation.",
		}, []string{"op"}),
		glitches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bench_position_glitches_total",
			Help: "Position readings rejected by the glitch filter.",
		}),
		emergencies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bench_emergency_stops_total",
			Help: "Emergency stops requested by the operator.",
		}),
		followingError: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bench_following_error_mm",
			Help:    "Distribution of the following error during online motion.",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 50, 80, 120},
		}),
		activeSession: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bench_motion_active",
			Help: "1 while a motion session is active.",
		}),
	}

	m.registry.MustRegister(
		m.motionStarted,
		m.motionFinished,
		m.safetyTrips,
		m.protocolErrors,
		m.glitches,
		m.emergencies,
		m.followingError,
		m.activeSession,
	)
	return m
}

func (m *Metrics) MotionStarted(mode models.RunMode, conn models.Connectivity) {
	m.motionStarted.WithLabelValues(string(mode), string(conn)).Inc()
	m.activeSession.Set(1)
}

func (m *Metrics) MotionFinished(outcome string) {
	m.motionFinished.WithLabelValues(outcome).Inc()
	m.activeSession.Set(0)
}

func (m *Metrics) SafetyTrip(reason string)         { m.safetyTrips.WithLabelValues(reason).Inc() }
func (m *Metrics) ProtocolError(op string)          { m.protocolErrors.WithLabelValues(op).Inc() }
func (m *Metrics) GlitchRejected()                  { m.glitches.Inc() }
func (m *Metrics) EmergencyStop()                   { m.emergencies.Inc() }
func (m *Metrics) ObserveFollowingError(mm float64) { m.followingError.Observe(mm) }

// Registry возвращает реестр для тестов и дополнительных коллекторов.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler отдает метрики в текстовом формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
