package sample

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/hawaii-osds/mpat-cli/internal/geodesy"
	"github.com/hawaii-osds/mpat-cli/internal/layer"
	"github.com/hawaii-osds/mpat-cli/internal/model"
)

func testGrid() *layer.Grid {
	return &layer.Grid{
		Name:     "dem",
		NCols:    2,
		NRows:    2,
		OriginX:  0,
		OriginY:  0,
		CellSize: 100,
		NoData:   -9999,
		Values: []float64{
			10, 20, // top row (y in [100, 200))
			-9999, -150, // bottom row
		},
	}
}

func TestGridSampler_ConvertsUnits(t *testing.T) {
	s := NewGridSampler("land_surface_elev_ft", testGrid(), geodesy.MetersToFeet, -100)

	v, err := s.Sample(model.AnalysisPoint{X: 50, Y: 150})
	require.NoError(t, err)
	assert.InDelta(t, 10*geodesy.MetersToFeet, v, 1e-9)
	assert.Equal(t, "land_surface_elev_ft", s.Name())
}

func TestGridSampler_OutOfBounds(t *testing.T) {
	s := NewGridSampler("dem", testGrid(), 1, -100)

	_, err := s.Sample(model.AnalysisPoint{X: -50, Y: 50})
	assert.True(t, eris.Is(err, model.ErrSampleOutOfBounds))
}

func TestGridSampler_NoDataCell(t *testing.T) {
	s := NewGridSampler("dem", testGrid(), 1, -100)

	_, err := s.Sample(model.AnalysisPoint{X: 50, Y: 50})
	assert.True(t, eris.Is(err, model.ErrSampleOutOfBounds))
}

func TestGridSampler_BelowNoDataThreshold(t *testing.T) {
	// -150 is a real stored value but sits below the -100 threshold used to
	// catch sentinel fills in mosaicked sources.
	s := NewGridSampler("dem", testGrid(), 1, -100)

	_, err := s.Sample(model.AnalysisPoint{X: 150, Y: 50})
	assert.True(t, eris.Is(err, model.ErrSampleOutOfBounds))
}

func TestGridSampler_ThresholdValueIsValid(t *testing.T) {
	// Only values strictly below the threshold are sentinel fills; a cell
	// holding exactly the threshold value is real data.
	g := testGrid()
	g.Values[3] = -100
	s := NewGridSampler("dem", g, 1, -100)

	v, err := s.Sample(model.AnalysisPoint{X: 150, Y: 50})
	require.NoError(t, err)
	assert.Equal(t, -100.0, v)
}

func soilsLayer(t *testing.T, attrs map[string]string) *layer.VectorLayer {
	t.Helper()
	mp := geom.NewMultiPolygon(geom.XY)
	poly := geom.NewPolygon(geom.XY)
	require.NoError(t, poly.Push(geom.NewLinearRingFlat(geom.XY,
		[]float64{0, 0, 100, 0, 100, 100, 0, 100, 0, 0})))
	require.NoError(t, mp.Push(poly))
	return &layer.VectorLayer{Name: "soils", Features: []layer.Feature{{Geom: mp, Attrs: attrs}}}
}

func TestPolygonAttrSampler(t *testing.T) {
	s := NewPolygonAttrSampler("soil_hydr_cond_in_hr", soilsLayer(t, map[string]string{"ksat": "2.7"}), "ksat")

	v, err := s.Sample(model.AnalysisPoint{X: 50, Y: 50})
	require.NoError(t, err)
	assert.Equal(t, 2.7, v)
}

func TestPolygonAttrSampler_OutsideCoverage(t *testing.T) {
	s := NewPolygonAttrSampler("soil_hydr_cond_in_hr", soilsLayer(t, map[string]string{"ksat": "2.7"}), "ksat")

	_, err := s.Sample(model.AnalysisPoint{X: 500, Y: 500})
	assert.True(t, eris.Is(err, model.ErrSampleOutOfBounds))
}

func TestPolygonAttrSampler_MissingAttribute(t *testing.T) {
	s := NewPolygonAttrSampler("soil_hydr_cond_in_hr", soilsLayer(t, map[string]string{}), "ksat")

	_, err := s.Sample(model.AnalysisPoint{X: 50, Y: 50})
	assert.True(t, eris.Is(err, model.ErrSampleOutOfBounds))
}

func TestPolygonAttrSampler_UnparseableAttribute(t *testing.T) {
	s := NewPolygonAttrSampler("soil_hydr_cond_in_hr", soilsLayer(t, map[string]string{"ksat": "n/a"}), "ksat")

	_, err := s.Sample(model.AnalysisPoint{X: 50, Y: 50})
	assert.True(t, eris.Is(err, model.ErrSampleOutOfBounds))
}
