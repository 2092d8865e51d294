package proximity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/hawaii-osds/mpat-cli/internal/geodesy"
	"github.com/hawaii-osds/mpat-cli/internal/layer"
	"github.com/hawaii-osds/mpat-cli/internal/model"
)

// Coordinates are UTM zone 4N values in the Hawaii extent so the geodesic
// leg of the computation operates on realistic positions.
const (
	baseX = 620000.0
	baseY = 2356000.0
)

func pointLayer(name string, pts ...[2]float64) *layer.VectorLayer {
	lyr := &layer.VectorLayer{Name: name}
	for _, p := range pts {
		lyr.Features = append(lyr.Features, layer.Feature{
			Geom: geom.NewPointFlat(geom.XY, []float64{p[0], p[1]}),
		})
	}
	return lyr
}

func polygonLayer(t *testing.T, name string, ring []float64) *layer.VectorLayer {
	t.Helper()
	mp := geom.NewMultiPolygon(geom.XY)
	poly := geom.NewPolygon(geom.XY)
	require.NoError(t, poly.Push(geom.NewLinearRingFlat(geom.XY, ring)))
	require.NoError(t, mp.Push(poly))
	return &layer.VectorLayer{Name: name, Features: []layer.Feature{{Geom: mp}}}
}

func lineLayer(name string, flat []float64) *layer.VectorLayer {
	mls := geom.NewMultiLineString(geom.XY)
	ls := geom.NewLineStringFlat(geom.XY, flat)
	if err := mls.Push(ls); err != nil {
		panic(err)
	}
	return &layer.VectorLayer{Name: name, Features: []layer.Feature{{Geom: mls}}}
}

func engine() *Engine {
	return NewEngine(geodesy.NewConverter(0))
}

func TestDistanceFt_NearestWell(t *testing.T) {
	lyr := pointLayer("wells_dom",
		[2]float64{baseX + 1000, baseY},
		[2]float64{baseX + 5000, baseY},
		[2]float64{baseX, baseY + 30000},
	)
	idx := NewIndex(lyr)

	d, err := engine().DistanceFt(model.AnalysisPoint{X: baseX, Y: baseY}, idx)
	require.NoError(t, err)

	// Nearest is the 1 km well; allow UTM scale distortion.
	want := 1000 * geodesy.MetersToFeet
	assert.InDelta(t, want, d, want*0.001)
}

func TestDistanceFt_LineLayer(t *testing.T) {
	// Stream running north-south 2 km east of the point.
	lyr := lineLayer("streams", []float64{
		baseX + 2000, baseY - 10000,
		baseX + 2000, baseY + 10000,
	})
	idx := NewIndex(lyr)

	d, err := engine().DistanceFt(model.AnalysisPoint{X: baseX, Y: baseY}, idx)
	require.NoError(t, err)

	want := 2000 * geodesy.MetersToFeet
	assert.InDelta(t, want, d, want*0.001)
}

func TestDistanceFt_InsidePolygonIsZero(t *testing.T) {
	lyr := polygonLayer(t, "sma", []float64{
		baseX, baseY, baseX + 1000, baseY,
		baseX + 1000, baseY + 1000, baseX, baseY + 1000,
		baseX, baseY,
	})
	idx := NewIndex(lyr)

	d, err := engine().DistanceFt(model.AnalysisPoint{X: baseX + 500, Y: baseY + 500}, idx)
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestDistanceFt_OnPolygonBoundaryIsZero(t *testing.T) {
	lyr := polygonLayer(t, "sma", []float64{
		baseX, baseY, baseX + 1000, baseY,
		baseX + 1000, baseY + 1000, baseX, baseY + 1000,
		baseX, baseY,
	})
	idx := NewIndex(lyr)

	// Analysis point exactly on the SMA boundary: containment, distance 0.
	d, err := engine().DistanceFt(model.AnalysisPoint{X: baseX, Y: baseY + 500}, idx)
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestDistanceFt_OutsidePolygon(t *testing.T) {
	lyr := polygonLayer(t, "sma", []float64{
		baseX, baseY, baseX + 1000, baseY,
		baseX + 1000, baseY + 1000, baseX, baseY + 1000,
		baseX, baseY,
	})
	idx := NewIndex(lyr)

	d, err := engine().DistanceFt(model.AnalysisPoint{X: baseX - 500, Y: baseY + 500}, idx)
	require.NoError(t, err)

	want := 500 * geodesy.MetersToFeet
	assert.InDelta(t, want, d, want*0.002)
	assert.Positive(t, d)
}

func TestDistanceFt_DistantFeatureFound(t *testing.T) {
	// Single feature far from the query point: the expanding ring search
	// must still reach it.
	lyr := pointLayer("wells_mun",
		[2]float64{baseX + 40000, baseY + 40000},
		[2]float64{baseX + 41000, baseY + 41000},
	)
	idx := NewIndex(lyr)

	d, err := engine().DistanceFt(model.AnalysisPoint{X: baseX, Y: baseY}, idx)
	require.NoError(t, err)

	wantM := math.Hypot(40000, 40000)
	assert.InDelta(t, wantM*geodesy.MetersToFeet, d, wantM*geodesy.MetersToFeet*0.002)
}

func TestNearestPlanar_VerificationPass(t *testing.T) {
	// One feature adjacent to the query cell, a closer one a few rings out
	// in the other direction would break a naive first-hit search. Here the
	// first-ring candidate is farther than a feature two rings away.
	lyr := pointLayer("wells_dom",
		[2]float64{baseX + 100, baseY + 100},
		[2]float64{baseX + 90, baseY},
	)
	idx := NewIndex(lyr)

	nx, ny, found := idx.nearestPlanar(baseX, baseY)
	require.True(t, found)
	assert.Equal(t, baseX+90, nx)
	assert.Equal(t, baseY, ny)
}
