package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iwtcode/spiroBench/models"
	"github.com/iwtcode/spiroBench/supervisor"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

var _ supervisor.Metrics = (*Metrics)(nil)

func TestMetricsCountSessions(t *testing.T) {
	m := NewMetrics()
	m.MotionStarted(models.ModeSimulation, models.Online)
	require.Equal(t, 1.0, testutil.ToFloat64(m.activeSession))

	m.SafetyTrip("following_error")
	m.MotionFinished(supervisor.OutcomeTripped)
	m.ProtocolError("poll")
	m.ProtocolError("poll")

	require.Equal(t, 1.0, testutil.ToFloat64(m.motionStarted.WithLabelValues("simulation", "online")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.safetyTrips.WithLabelValues("following_error")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.protocolErrors.WithLabelValues("poll")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.activeSession))
}

func TestMetricsHandlerExposesCounters(t *testing.T) {
	m := NewMetrics()
	m.EmergencyStop()
	m.ObserveFollowingError(12)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "bench_emergency_stops_total 1")
	require.Contains(t, rec.Body.String(), "bench_following_error_mm_count 1")
}
