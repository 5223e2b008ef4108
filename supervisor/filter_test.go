package supervisor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGlitchFilterConfirmsPersistentJump(t *testing.T) {
	f := glitchFilter{threshold: 40, confirm: 5}

	for i := 0; i < 5; i++ {
		pos, rejected := f.accept(50, 120)
		require.True(t, rejected, "тик %d", i+1)
		require.Equal(t, 50.0, pos)
	}
	pos, rejected := f.accept(50, 120)
	require.False(t, rejected)
	require.Equal(t, 120.0, pos)
	require.Zero(t, f.count)
}

func TestGlitchFilterResetsOnPlausibleReading(t *testing.T) {
	f := glitchFilter{threshold: 40, confirm: 5}

	f.accept(50, 120)
	f.accept(50, 120)
	pos, rejected := f.accept(50, 60)
	require.False(t, rejected)
	require.Equal(t, 60.0, pos)
	require.Zero(t, f.count)
}

func TestGlitchFilterInactiveNearHome(t *testing.T) {
	f := glitchFilter{threshold: 40, confirm: 5}
	pos, rejected := f.accept(0.5, 100)
	require.False(t, rejected)
	require.Equal(t, 100.0, pos)
}

func TestSmoothingAlpha(t *testing.T) {
	cases := []struct {
		name     string
		attack   float64
		moving   bool
		residual float64
		want     float64
	}{
		{"до начала движения", 0, false, 3, 1.0},
		{"фаза атаки", 0.001, true, 3, 0.95},
		{"конец атаки", 0.24, true, 0, 0.95},
		{"промежуток", 0.3, true, 0, 0.08},
		{"переход", 0.6, true, 1, 0.35},
		{"переход с насыщением", 0.6, true, 10, 0.5},
		{"установившийся режим", 2, true, 1, 0.18},
		{"установившийся с насыщением", 2, true, 10, 0.25},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.InDelta(t, c.want, smoothingAlpha(c.attack, c.moving, c.residual), 1e-9)
		})
	}
}

func TestPollGapClampsLongPauses(t *testing.T) {
	base := time.Unix(100, 0)
	require.InDelta(t, 0.04, pollGap(base.Add(2*time.Second), base), 1e-9)
	require.InDelta(t, 0.03, pollGap(base.Add(30*time.Millisecond), base), 1e-9)
}

func TestTrackerFirstReadingHasNoDerivatives(t *testing.T) {
	var tr tracker
	now := time.Unix(100, 0)
	tr.update(now, 10, 10, 0.0157, 5)
	require.Zero(t, tr.velocity)
	require.Zero(t, tr.flowActual)

	tr.update(now.Add(40*time.Millisecond), 12, 12, 0.0157, 5)
	require.InDelta(t, 50, tr.velocity, 1e-6)
	require.False(t, tr.firstMotion.IsZero())
}

func TestUniqueName(t *testing.T) {
	require.Equal(t, "Prueba_Manual_1", UniqueName("", nil))
	require.Equal(t, "Prueba_Manual_1", UniqueName("-", nil))
	require.Equal(t, "Prueba_Manual_1", UniqueName(" ", nil))
	require.Equal(t, "Asma_3", UniqueName("Asma", []string{"Asma_1", "Asma_2", "Otro_3"}))
}
