// Package proximity finds, for an analysis point and a reference layer, the
// distance to the nearest feature. Candidates are located in the working
// planar projection through a uniform-grid index; the reported distance is
// then measured geodesically on the ellipsoid, never from the flat projection.
package proximity

import (
	"math"

	"github.com/twpayne/go-geom"

	"github.com/hawaii-osds/mpat-cli/internal/geomops"
	"github.com/hawaii-osds/mpat-cli/internal/layer"
)

// indexCells is the grid resolution along the longer extent axis.
const indexCells = 64

// Index is a uniform-grid spatial index over a vector layer. Features are
// binned into every cell their bounding box touches. The index is built once
// per layer and shared read-only across all workers.
type Index struct {
	layer      *layer.VectorLayer
	minX, minY float64
	cellSize   float64
	cols, rows int
	cells      map[int][]int
}

// NewIndex builds the grid index for a layer.
func NewIndex(lyr *layer.VectorLayer) *Index {
	bounds := geom.NewBounds(geom.XY)
	for _, f := range lyr.Features {
		bounds.Extend(f.Geom)
	}

	spanX := bounds.Max(0) - bounds.Min(0)
	spanY := bounds.Max(1) - bounds.Min(1)
	span := math.Max(spanX, spanY)
	if span <= 0 {
		span = 1
	}

	idx := &Index{
		layer:    lyr,
		minX:     bounds.Min(0),
		minY:     bounds.Min(1),
		cellSize: span / indexCells,
		cells:    make(map[int][]int),
	}
	idx.cols = int(spanX/idx.cellSize) + 1
	idx.rows = int(spanY/idx.cellSize) + 1

	for i, f := range lyr.Features {
		b := f.Geom.Bounds()
		c0, r0 := idx.cellOf(b.Min(0), b.Min(1))
		c1, r1 := idx.cellOf(b.Max(0), b.Max(1))
		for r := r0; r <= r1; r++ {
			for c := c0; c <= c1; c++ {
				key := r*idx.cols + c
				idx.cells[key] = append(idx.cells[key], i)
			}
		}
	}
	return idx
}

// cellOf returns the clamped cell coordinates containing (x, y).
func (idx *Index) cellOf(x, y float64) (col, row int) {
	col = int((x - idx.minX) / idx.cellSize)
	row = int((y - idx.minY) / idx.cellSize)
	col = clamp(col, 0, idx.cols-1)
	row = clamp(row, 0, idx.rows-1)
	return col, row
}

// candidatesWithin collects the distinct feature indices in all cells within
// radius rings of the cell containing (x, y).
func (idx *Index) candidatesWithin(x, y float64, radius int) []int {
	c, r := idx.cellOf(x, y)
	seen := make(map[int]struct{})
	var out []int
	for row := r - radius; row <= r+radius; row++ {
		if row < 0 || row >= idx.rows {
			continue
		}
		for col := c - radius; col <= c+radius; col++ {
			if col < 0 || col >= idx.cols {
				continue
			}
			for _, fi := range idx.cells[row*idx.cols+col] {
				if _, ok := seen[fi]; ok {
					continue
				}
				seen[fi] = struct{}{}
				out = append(out, fi)
			}
		}
	}
	return out
}

// maxRadius is the ring count that covers the whole grid from any cell.
func (idx *Index) maxRadius() int {
	if idx.cols > idx.rows {
		return idx.cols
	}
	return idx.rows
}

// nearestPlanar locates the feature point nearest to (x, y) in the planar
// projection: expanding ring search for candidates, exact nearest-point
// refinement, then one verification pass wide enough to rule out a closer
// feature in an unvisited cell.
func (idx *Index) nearestPlanar(x, y float64) (nx, ny float64, found bool) {
	var candidates []int
	radius := 0
	for ; radius <= idx.maxRadius(); radius++ {
		candidates = idx.candidatesWithin(x, y, radius)
		if len(candidates) > 0 {
			break
		}
	}
	if len(candidates) == 0 {
		return 0, 0, false
	}

	nx, ny = nearestOnFeatures(idx.layer, candidates, x, y)
	best := math.Hypot(x-nx, y-ny)

	// A closer feature could sit in a cell just outside the rings searched
	// so far; widen to the ring count the best distance implies.
	verify := int(best/idx.cellSize) + 1
	if verify > radius {
		candidates = idx.candidatesWithin(x, y, verify)
		nx, ny = nearestOnFeatures(idx.layer, candidates, x, y)
	}
	return nx, ny, true
}

// containsPoint reports whether any polygonal feature whose cell bin covers
// (x, y) contains the point.
func (idx *Index) containsPoint(x, y float64) bool {
	pt := geom.Coord{x, y}
	for _, fi := range idx.candidatesWithin(x, y, 0) {
		if mp, ok := idx.layer.Features[fi].Geom.(*geom.MultiPolygon); ok {
			if geomops.PointInMultiPolygon(mp, pt) {
				return true
			}
		}
	}
	return false
}

// nearestOnFeatures returns the planar point on any candidate feature nearest
// to (x, y). Equidistant candidates within floating-point tolerance may
// resolve to any one of them; the distance, not the feature, is the contract.
func nearestOnFeatures(lyr *layer.VectorLayer, candidates []int, x, y float64) (float64, float64) {
	best := math.Inf(1)
	var bx, by float64
	for _, fi := range candidates {
		px, py := nearestOnGeom(lyr.Features[fi].Geom, x, y)
		if d := math.Hypot(x-px, y-py); d < best {
			best = d
			bx, by = px, py
		}
	}
	return bx, by
}

// nearestOnGeom returns the point on a geometry nearest to (x, y).
func nearestOnGeom(g geom.T, x, y float64) (float64, float64) {
	switch t := g.(type) {
	case *geom.Point:
		return t.X(), t.Y()
	case *geom.MultiLineString:
		best := math.Inf(1)
		var bx, by float64
		for i := 0; i < t.NumLineStrings(); i++ {
			px, py := nearestOnFlat(t.LineString(i).FlatCoords(), t.Stride(), x, y)
			if d := math.Hypot(x-px, y-py); d < best {
				best, bx, by = d, px, py
			}
		}
		return bx, by
	case *geom.MultiPolygon:
		if geomops.PointInMultiPolygon(t, geom.Coord{x, y}) {
			return x, y
		}
		best := math.Inf(1)
		var bx, by float64
		for i := 0; i < t.NumPolygons(); i++ {
			poly := t.Polygon(i)
			for r := 0; r < poly.NumLinearRings(); r++ {
				px, py := nearestOnFlat(poly.LinearRing(r).FlatCoords(), poly.Stride(), x, y)
				if d := math.Hypot(x-px, y-py); d < best {
					best, bx, by = d, px, py
				}
			}
		}
		return bx, by
	default:
		return x, y
	}
}

// nearestOnFlat returns the nearest point on a flat-coordinate polyline.
func nearestOnFlat(flat []float64, stride int, x, y float64) (float64, float64) {
	if len(flat) < stride {
		return x, y
	}
	if len(flat) == stride {
		return flat[0], flat[1]
	}
	best := math.Inf(1)
	var bx, by float64
	for i := stride; i < len(flat); i += stride {
		px, py := geomops.NearestOnSegment(x, y,
			flat[i-stride], flat[i-stride+1], flat[i], flat[i+1])
		if d := math.Hypot(x-px, y-py); d < best {
			best, bx, by = d, px, py
		}
	}
	return bx, by
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
