// Package overlay computes parcel areas and building-footprint coverage.
// Footprints relate to parcels many-to-one: a footprint counts toward every
// parcel it overlaps, and its full area is attributed there, consistent with
// the upstream inventory's spatial-join convention.
package overlay

import (
	"github.com/twpayne/go-geom"

	"github.com/hawaii-osds/mpat-cli/internal/geodesy"
	"github.com/hawaii-osds/mpat-cli/internal/geomops"
	"github.com/hawaii-osds/mpat-cli/internal/layer"
)

// Result holds the areal quantities for one parcel. Footprint fields are
// zero, not null, when nothing overlaps.
type Result struct {
	ParcelAreaSqFt    float64
	FootprintQty      int
	FootprintAreaSqFt float64
	NetParcelAreaSqFt float64
}

// Compute measures the parcel in the working planar projection and overlays
// the footprint candidates. Candidates may be the whole footprint layer; a
// bounding-box check rejects non-overlapping pairs before the intersection
// test. Net area is floored at zero: a parcel fully covered by footprints has
// no buildable area, not negative area.
func Compute(parcel *geom.MultiPolygon, candidates []layer.Feature) Result {
	res := Result{
		ParcelAreaSqFt: parcel.Area() * geodesy.SqMetersToSqFeet,
	}

	for _, f := range candidates {
		fp, ok := f.Geom.(*geom.MultiPolygon)
		if !ok {
			continue
		}
		if !geomops.MultiPolygonsIntersect(parcel, fp) {
			continue
		}
		res.FootprintQty++
		res.FootprintAreaSqFt += fp.Area() * geodesy.SqMetersToSqFeet
	}

	res.NetParcelAreaSqFt = res.ParcelAreaSqFt - res.FootprintAreaSqFt
	if res.NetParcelAreaSqFt < 0 {
		res.NetParcelAreaSqFt = 0
	}
	return res
}
