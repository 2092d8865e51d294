// Package geomops holds the planar geometry predicates shared by the
// normalizer, overlay, and proximity stages. All coordinates are in the
// working projected CRS.
package geomops

import (
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// PointInPolygon reports whether the point is inside the polygon, honoring
// interior rings (holes). Boundary points count as inside.
func PointInPolygon(p *geom.Polygon, pt geom.Coord) bool {
	if p == nil || p.NumLinearRings() == 0 {
		return false
	}
	if !xy.IsPointInRing(p.Layout(), pt, p.LinearRing(0).FlatCoords()) {
		if !pointOnRing(pt, p.LinearRing(0).FlatCoords(), p.Stride()) {
			return false
		}
	}
	for i := 1; i < p.NumLinearRings(); i++ {
		hole := p.LinearRing(i).FlatCoords()
		if xy.IsPointInRing(p.Layout(), pt, hole) && !pointOnRing(pt, hole, p.Stride()) {
			return false
		}
	}
	return true
}

// PointInMultiPolygon reports whether the point is inside any member polygon.
func PointInMultiPolygon(mp *geom.MultiPolygon, pt geom.Coord) bool {
	if mp == nil {
		return false
	}
	for i := 0; i < mp.NumPolygons(); i++ {
		if PointInPolygon(mp.Polygon(i), pt) {
			return true
		}
	}
	return false
}

// pointOnRing reports whether pt lies on one of the ring's segments within
// floating-point tolerance.
func pointOnRing(pt geom.Coord, ring []float64, stride int) bool {
	const tol = 1e-9
	for i := stride; i < len(ring); i += stride {
		d := DistanceToSegment(pt[0], pt[1],
			ring[i-stride], ring[i-stride+1], ring[i], ring[i+1])
		if d < tol {
			return true
		}
	}
	return false
}

// DistanceToSegment returns the planar distance from (px,py) to the segment
// (x1,y1)-(x2,y2).
func DistanceToSegment(px, py, x1, y1, x2, y2 float64) float64 {
	nx, ny := NearestOnSegment(px, py, x1, y1, x2, y2)
	return math.Hypot(px-nx, py-ny)
}

// NearestOnSegment returns the point on segment (x1,y1)-(x2,y2) nearest to
// (px,py).
func NearestOnSegment(px, py, x1, y1, x2, y2 float64) (float64, float64) {
	dx := x2 - x1
	dy := y2 - y1
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return x1, y1
	}
	t := ((px-x1)*dx + (py-y1)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return x1 + t*dx, y1 + t*dy
}

// segmentsIntersect reports whether segments ab and cd intersect, including
// collinear overlap and shared endpoints.
func segmentsIntersect(ax, ay, bx, by, cx, cy, dx, dy float64) bool {
	o1 := orientation(ax, ay, bx, by, cx, cy)
	o2 := orientation(ax, ay, bx, by, dx, dy)
	o3 := orientation(cx, cy, dx, dy, ax, ay)
	o4 := orientation(cx, cy, dx, dy, bx, by)

	if o1 != o2 && o3 != o4 {
		return true
	}
	if o1 == 0 && onSegment(ax, ay, cx, cy, bx, by) {
		return true
	}
	if o2 == 0 && onSegment(ax, ay, dx, dy, bx, by) {
		return true
	}
	if o3 == 0 && onSegment(cx, cy, ax, ay, dx, dy) {
		return true
	}
	if o4 == 0 && onSegment(cx, cy, bx, by, dx, dy) {
		return true
	}
	return false
}

// orientation returns 0 for collinear, 1 for clockwise, 2 for counter-clockwise.
func orientation(px, py, qx, qy, rx, ry float64) int {
	v := (qy-py)*(rx-qx) - (qx-px)*(ry-qy)
	switch {
	case math.Abs(v) < 1e-12:
		return 0
	case v > 0:
		return 1
	default:
		return 2
	}
}

// onSegment reports whether collinear point (qx,qy) lies on segment p-r.
func onSegment(px, py, qx, qy, rx, ry float64) bool {
	return qx <= math.Max(px, rx) && qx >= math.Min(px, rx) &&
		qy <= math.Max(py, ry) && qy >= math.Min(py, ry)
}

// PolygonsIntersect reports whether two polygons share any interior or
// boundary: a vertex of one inside the other, or any pair of edges crossing.
func PolygonsIntersect(a, b *geom.Polygon) bool {
	if a == nil || b == nil || a.NumLinearRings() == 0 || b.NumLinearRings() == 0 {
		return false
	}
	if !BoundsOverlap(a.Bounds(), b.Bounds()) {
		return false
	}

	ae := a.LinearRing(0).FlatCoords()
	be := b.LinearRing(0).FlatCoords()
	as := a.Stride()
	bs := b.Stride()

	for i := 0; i+1 < len(ae); i += as {
		if PointInPolygon(b, geom.Coord{ae[i], ae[i+1]}) {
			return true
		}
	}
	for i := 0; i+1 < len(be); i += bs {
		if PointInPolygon(a, geom.Coord{be[i], be[i+1]}) {
			return true
		}
	}

	for i := as; i < len(ae); i += as {
		for j := bs; j < len(be); j += bs {
			if segmentsIntersect(
				ae[i-as], ae[i-as+1], ae[i], ae[i+1],
				be[j-bs], be[j-bs+1], be[j], be[j+1],
			) {
				return true
			}
		}
	}
	return false
}

// MultiPolygonsIntersect reports whether any member polygons intersect.
func MultiPolygonsIntersect(a, b *geom.MultiPolygon) bool {
	if a == nil || b == nil {
		return false
	}
	if !BoundsOverlap(a.Bounds(), b.Bounds()) {
		return false
	}
	for i := 0; i < a.NumPolygons(); i++ {
		for j := 0; j < b.NumPolygons(); j++ {
			if PolygonsIntersect(a.Polygon(i), b.Polygon(j)) {
				return true
			}
		}
	}
	return false
}

// BoundsOverlap reports whether two 2D bounds overlap.
func BoundsOverlap(a, b *geom.Bounds) bool {
	return a.Min(0) <= b.Max(0) && b.Min(0) <= a.Max(0) &&
		a.Min(1) <= b.Max(1) && b.Min(1) <= a.Max(1)
}
