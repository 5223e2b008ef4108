package units

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultGeometryDerivedValues(t *testing.T) {
	g := DefaultGeometry()

	require.InDelta(t, 0.015708, g.MMToLiters(), 1e-5, "литры на мм")
	require.InDelta(t, 5.419, g.MaxVolumeLiters(), 1e-3, "максимальный объем")
	require.InDelta(t, 0.2618, g.MMPerDegree(), 1e-4, "мм на градус")
	require.InDelta(t, 243.17, g.LitersToDegrees(), 0.05, "градусы на литр")
}

func TestRawConversionRoundTrip(t *testing.T) {
	require.InDelta(t, 26.18, RawToMM(1000), 1e-9)
	require.InDelta(t, 100.0, MMToDegrees(DegreesToMM(100.0)), 1e-9)
}

func TestZeroGeometryDoesNotDivideByZero(t *testing.T) {
	var g Geometry
	require.Equal(t, 0.0, g.TotalDegrees())
	require.Equal(t, 0.0, g.LitersToDegrees())
}
