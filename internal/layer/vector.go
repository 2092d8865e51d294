// Package layer loads the prepared input layers consumed by the pipeline:
// vector layers from shapefiles, continuous surfaces from single-band grids,
// and the OSDS inventory table. All inputs are assumed already reprojected to
// the working CRS by the acquisition stage.
package layer

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// Feature is one vector feature: a geometry plus its DBF attributes keyed by
// lowercased field name.
type Feature struct {
	Geom  geom.T
	Attrs map[string]string
}

// VectorLayer is a read-only named collection of features.
type VectorLayer struct {
	Name     string
	Features []Feature
}

// LoadShapefile reads a prepared shapefile into a VectorLayer. Records with
// missing or malformed geometry are skipped and counted, matching the
// tolerance of the upstream preparation step.
func LoadShapefile(path, name string) (*VectorLayer, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "layer: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.ToLower(strings.TrimRight(f.String(), "\x00"))
	}

	lyr := &VectorLayer{Name: name}
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()
		g := shapeToGeom(shape)
		if g == nil {
			skipped++
			continue
		}

		attrs := make(map[string]string, len(names))
		for i, n := range names {
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
			if val != "" {
				attrs[n] = val
			}
		}
		lyr.Features = append(lyr.Features, Feature{Geom: g, Attrs: attrs})
	}

	if skipped > 0 {
		zap.L().Debug("layer: skipped shapefile records",
			zap.String("layer", name),
			zap.Int("skipped", skipped),
		)
	}
	if len(lyr.Features) == 0 {
		return nil, eris.Errorf("layer: %s has no usable features", name)
	}

	return lyr, nil
}

// shapeToGeom converts a go-shp shape to a go-geom geometry. Points map to
// Point, polylines to MultiLineString, polygons to MultiPolygon. Unsupported
// shapes yield nil.
func shapeToGeom(shape shp.Shape) geom.T {
	switch s := shape.(type) {
	case *shp.Point:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y})
	case *shp.PolyLine:
		return polyLineToMultiLineString(s)
	case *shp.Polygon:
		return polygonToMultiPolygon(s)
	default:
		return nil
	}
}

// polyLineToMultiLineString converts a shapefile PolyLine part-by-part.
func polyLineToMultiLineString(pl *shp.PolyLine) geom.T {
	if pl == nil || pl.NumParts == 0 || len(pl.Points) == 0 {
		return nil
	}

	mls := geom.NewMultiLineString(geom.XY)
	for i := int32(0); i < pl.NumParts; i++ {
		start, end := partRange(pl.Parts, i, pl.NumParts, int32(len(pl.Points)))
		ls := geom.NewLineStringFlat(geom.XY, flatPoints(pl.Points[start:end]))
		if err := mls.Push(ls); err != nil {
			zap.L().Debug("layer: skipping malformed linestring part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}
	if mls.NumLineStrings() == 0 {
		return nil
	}
	return mls
}

// polygonToMultiPolygon converts a shapefile Polygon part-by-part. Each part
// becomes its own polygon; ring/hole reassembly is left to the preparation
// stage, which exports one exterior ring per part.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)
	for i := int32(0); i < p.NumParts; i++ {
		start, end := partRange(p.Parts, i, p.NumParts, int32(len(p.Points)))
		ring := geom.NewLinearRingFlat(geom.XY, flatPoints(p.Points[start:end]))
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("layer: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("layer: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}
	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

func partRange(parts []int32, i, numParts, numPoints int32) (int32, int32) {
	start := parts[i]
	if i+1 < numParts {
		return start, parts[i+1]
	}
	return start, numPoints
}

func flatPoints(pts []shp.Point) []float64 {
	flat := make([]float64, 0, len(pts)*2)
	for _, p := range pts {
		flat = append(flat, p.X, p.Y)
	}
	return flat
}
