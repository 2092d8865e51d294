// Package normalize resolves the single representative analysis point for
// each parcel. The centroid is used when it lands inside the parcel; for
// non-convex or fragmented parcels a guaranteed-interior point is derived
// instead, and the rule that fired is recorded on the point.
package normalize

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"github.com/hawaii-osds/mpat-cli/internal/geomops"
	"github.com/hawaii-osds/mpat-cli/internal/model"
)

// AnalysisPoint resolves the representative point for a parcel geometry.
// Unusable geometry (nil, empty, or zero area) yields ErrGeometry: such
// parcels are excluded from the output, never zero-filled.
func AnalysisPoint(mp *geom.MultiPolygon) (model.AnalysisPoint, error) {
	if mp == nil || mp.NumPolygons() == 0 {
		return model.AnalysisPoint{}, eris.Wrap(model.ErrGeometry, "normalize: empty geometry")
	}
	if mp.Area() <= 0 {
		return model.AnalysisPoint{}, eris.Wrap(model.ErrGeometry, "normalize: zero-area geometry")
	}

	centroid, err := xy.Centroid(mp)
	if err == nil && geomops.PointInMultiPolygon(mp, centroid) {
		return model.AnalysisPoint{
			X:      centroid[0],
			Y:      centroid[1],
			Source: model.SourceCentroid,
		}, nil
	}

	x, y, ok := interiorPoint(mp)
	if !ok {
		return model.AnalysisPoint{}, eris.Wrap(model.ErrGeometry, "normalize: no interior point")
	}
	return model.AnalysisPoint{X: x, Y: y, Source: model.SourceInteriorPoint}, nil
}

// interiorPoint finds a guaranteed-interior point by scanning a horizontal
// line through the vertical middle of the largest member polygon and taking
// the midpoint of the widest inside interval (the point-on-surface rule).
func interiorPoint(mp *geom.MultiPolygon) (float64, float64, bool) {
	poly := largestPolygon(mp)
	if poly == nil {
		return 0, 0, false
	}

	b := poly.Bounds()
	scanY := (b.Min(1) + b.Max(1)) / 2

	xs := ringCrossings(poly, scanY)
	if len(xs) < 2 {
		// Degenerate at the exact midline; nudge by a quarter height.
		scanY = b.Min(1) + (b.Max(1)-b.Min(1))*0.25
		xs = ringCrossings(poly, scanY)
		if len(xs) < 2 {
			return 0, 0, false
		}
	}
	sort.Float64s(xs)

	bestWidth := -1.0
	var bestX float64
	for i := 0; i+1 < len(xs); i++ {
		mid := (xs[i] + xs[i+1]) / 2
		if !geomops.PointInPolygon(poly, geom.Coord{mid, scanY}) {
			continue
		}
		if w := xs[i+1] - xs[i]; w > bestWidth {
			bestWidth = w
			bestX = mid
		}
	}
	if bestWidth < 0 {
		return 0, 0, false
	}
	return bestX, scanY, true
}

// ringCrossings collects x coordinates where any ring of the polygon crosses
// the horizontal line at scanY.
func ringCrossings(poly *geom.Polygon, scanY float64) []float64 {
	var xs []float64
	for r := 0; r < poly.NumLinearRings(); r++ {
		ring := poly.LinearRing(r).FlatCoords()
		stride := poly.Stride()
		for i := stride; i < len(ring); i += stride {
			y1, y2 := ring[i-stride+1], ring[i+1]
			if (y1 <= scanY) == (y2 <= scanY) {
				continue
			}
			x1, x2 := ring[i-stride], ring[i]
			t := (scanY - y1) / (y2 - y1)
			xs = append(xs, x1+t*(x2-x1))
		}
	}
	return xs
}

func largestPolygon(mp *geom.MultiPolygon) *geom.Polygon {
	var best *geom.Polygon
	bestArea := math.Inf(-1)
	for i := 0; i < mp.NumPolygons(); i++ {
		if a := mp.Polygon(i).Area(); a > bestArea {
			bestArea = a
			best = mp.Polygon(i)
		}
	}
	return best
}
