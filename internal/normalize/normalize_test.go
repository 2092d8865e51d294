package normalize

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/hawaii-osds/mpat-cli/internal/model"
)

func multiPolygon(t *testing.T, rings ...[]float64) *geom.MultiPolygon {
	t.Helper()
	mp := geom.NewMultiPolygon(geom.XY)
	for _, r := range rings {
		poly := geom.NewPolygon(geom.XY)
		require.NoError(t, poly.Push(geom.NewLinearRingFlat(geom.XY, r)))
		require.NoError(t, mp.Push(poly))
	}
	return mp
}

func TestAnalysisPoint_Centroid(t *testing.T) {
	mp := multiPolygon(t, []float64{0, 0, 10, 0, 10, 10, 0, 10, 0, 0})

	pt, err := AnalysisPoint(mp)
	require.NoError(t, err)

	assert.Equal(t, model.SourceCentroid, pt.Source)
	assert.InDelta(t, 5.0, pt.X, 1e-9)
	assert.InDelta(t, 5.0, pt.Y, 1e-9)
}

func TestAnalysisPoint_NonConvexFallsBack(t *testing.T) {
	// U-shaped parcel whose centroid falls in the notch.
	mp := multiPolygon(t, []float64{
		0, 0, 10, 0, 10, 10, 8, 10, 8, 2, 2, 2, 2, 10, 0, 10, 0, 0,
	})

	pt, err := AnalysisPoint(mp)
	require.NoError(t, err)

	assert.Equal(t, model.SourceInteriorPoint, pt.Source)
	// Whatever point was chosen must be inside the parcel.
	inside := false
	for i := 0; i < mp.NumPolygons(); i++ {
		b := mp.Polygon(i).Bounds()
		if pt.X >= b.Min(0) && pt.X <= b.Max(0) && pt.Y >= b.Min(1) && pt.Y <= b.Max(1) {
			inside = true
		}
	}
	assert.True(t, inside)
}

func TestAnalysisPoint_MultiPartFallsBack(t *testing.T) {
	// Two disjoint equal parts; the area-weighted centroid falls in the gap
	// between them, so the interior-point rule must fire.
	mp := multiPolygon(t,
		[]float64{0, 0, 10, 0, 10, 10, 0, 10, 0, 0},
		[]float64{20, 0, 30, 0, 30, 10, 20, 10, 20, 0},
	)

	pt, err := AnalysisPoint(mp)
	require.NoError(t, err)

	assert.Equal(t, model.SourceInteriorPoint, pt.Source)
	assert.True(t, (pt.X >= 0 && pt.X <= 10) || (pt.X >= 20 && pt.X <= 30),
		"interior point must land in one of the parts, got x=%f", pt.X)
}

func TestAnalysisPoint_EmptyGeometry(t *testing.T) {
	_, err := AnalysisPoint(nil)
	assert.True(t, eris.Is(err, model.ErrGeometry))

	_, err = AnalysisPoint(geom.NewMultiPolygon(geom.XY))
	assert.True(t, eris.Is(err, model.ErrGeometry))
}

func TestAnalysisPoint_ZeroArea(t *testing.T) {
	mp := multiPolygon(t, []float64{0, 0, 10, 0, 10, 0, 0, 0, 0, 0})
	_, err := AnalysisPoint(mp)
	assert.True(t, eris.Is(err, model.ErrGeometry))
}
