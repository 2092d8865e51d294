// Package sample unifies the heterogeneous enrichment sources behind one
// capability: given an analysis point, produce a named scalar. Raster
// surfaces and attribute-carrying polygon layers both implement it, so the
// assembler treats every source uniformly.
package sample

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/hawaii-osds/mpat-cli/internal/geomops"
	"github.com/hawaii-osds/mpat-cli/internal/layer"
	"github.com/hawaii-osds/mpat-cli/internal/model"
)

// Sampler produces a named scalar at an analysis point. A point outside the
// source's coverage yields ErrSampleOutOfBounds; the caller nulls the field
// and keeps the parcel.
type Sampler interface {
	Name() string
	Sample(pt model.AnalysisPoint) (float64, error)
}

// GridSampler samples a continuous raster surface with nearest-neighbor
// lookup and applies a unit conversion factor to the cell value.
type GridSampler struct {
	name   string
	grid   *layer.Grid
	factor float64

	// Values below the threshold are treated as nodata even when the grid's
	// declared nodata marker differs (sentinel fills in mosaicked sources,
	// e.g. ocean cells). A value exactly at the threshold is real data.
	nodataThreshold float64
}

// NewGridSampler creates a raster-backed sampler. factor converts source
// units to output units (1 for unitless surfaces such as slope percent).
func NewGridSampler(name string, grid *layer.Grid, factor, nodataThreshold float64) *GridSampler {
	return &GridSampler{name: name, grid: grid, factor: factor, nodataThreshold: nodataThreshold}
}

func (s *GridSampler) Name() string { return s.name }

func (s *GridSampler) Sample(pt model.AnalysisPoint) (float64, error) {
	v, ok := s.grid.At(pt.X, pt.Y)
	if !ok {
		return 0, eris.Wrapf(model.ErrSampleOutOfBounds, "sample: %s at (%.1f, %.1f)", s.name, pt.X, pt.Y)
	}
	if v < s.nodataThreshold {
		return 0, eris.Wrapf(model.ErrSampleOutOfBounds, "sample: %s nodata at (%.1f, %.1f)", s.name, pt.X, pt.Y)
	}
	return v * s.factor, nil
}

// PolygonAttrSampler reads a numeric attribute from the polygon feature
// containing the analysis point (soil hydraulic conductivity from the soils
// layer). A point outside every polygon, or a polygon without a parseable
// attribute value, is out of coverage.
type PolygonAttrSampler struct {
	name  string
	lyr   *layer.VectorLayer
	field string
}

// NewPolygonAttrSampler creates an attribute-backed sampler over a polygonal
// layer. field is the lowercased attribute name to read.
func NewPolygonAttrSampler(name string, lyr *layer.VectorLayer, field string) *PolygonAttrSampler {
	return &PolygonAttrSampler{name: name, lyr: lyr, field: field}
}

func (s *PolygonAttrSampler) Name() string { return s.name }

func (s *PolygonAttrSampler) Sample(pt model.AnalysisPoint) (float64, error) {
	coord := geom.Coord{pt.X, pt.Y}
	for _, f := range s.lyr.Features {
		mp, ok := f.Geom.(*geom.MultiPolygon)
		if !ok {
			continue
		}
		b := mp.Bounds()
		if pt.X < b.Min(0) || pt.X > b.Max(0) || pt.Y < b.Min(1) || pt.Y > b.Max(1) {
			continue
		}
		if !geomops.PointInMultiPolygon(mp, coord) {
			continue
		}
		raw, ok := f.Attrs[s.field]
		if !ok {
			return 0, eris.Wrapf(model.ErrSampleOutOfBounds, "sample: %s missing attribute %s", s.name, s.field)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, eris.Wrapf(model.ErrSampleOutOfBounds, "sample: %s unparseable %s=%q", s.name, s.field, raw)
		}
		return v, nil
	}
	return 0, eris.Wrapf(model.ErrSampleOutOfBounds, "sample: %s no polygon at (%.1f, %.1f)", s.name, pt.X, pt.Y)
}
