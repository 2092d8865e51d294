package mpat

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/hawaii-osds/mpat-cli/internal/model"
)

// dbfColumns maps the data-dictionary columns to DBF-safe field names. DBF
// limits field names to 10 characters, so the spatial artifact carries these
// aliases; the CSV artifact keeps the full names.
var dbfColumns = []struct {
	full  string
	alias string
}{
	{"tmk", "TMK"},
	{"island", "ISLAND"},
	{"osds_qty", "OSDS_QTY"},
	{"total_bedrooms", "BEDROOMS"},
	{"analysis_point_source", "APT_SRC"},
	{"parcel_area_sqft", "PAR_SQFT"},
	{"building_fp_qty", "BFP_QTY"},
	{"building_fp_area_sqft", "BFP_SQFT"},
	{"net_parcel_area_sqft", "NET_SQFT"},
	{"dist_to_coast_ft", "D_COAST"},
	{"dist_to_stream_ft", "D_STREAM"},
	{"dist_to_dom_well_ft", "D_DOMWELL"},
	{"dist_to_mun_well_ft", "D_MUNWELL"},
	{"dist_to_sma_ft", "D_SMA"},
	{"dist_to_flood_zone_ft", "D_FLOOD"},
	{"land_surface_elev_ft", "ELEV_FT"},
	{"wt_elev_ft", "WT_FT"},
	{"depth_to_wt_ft", "DTW_FT"},
	{"slope_pct", "SLOPE_PCT"},
	{"avg_rainfall_in", "RAIN_IN"},
	{"soil_hydr_cond_in_hr", "SOIL_K"},
	{"in_sma", "IN_SMA"},
	{"in_flood_zone", "IN_FLOOD"},
	{"coast_within_100", "COAST100"},
	{"stream_within_50", "STREAM50"},
	{"wt_suitability", "WT_SUIT"},
	{"slope_requirement", "SLOPE_REQ"},
	{"climate_suitability", "CLIM_SUIT"},
	{"sma_constraints", "SMA_CON"},
	{"lot_size_requirement", "LOT_REQ"},
}

func shpFields() []shp.Field {
	fields := make([]shp.Field, len(dbfColumns))
	for i, c := range dbfColumns {
		switch c.full {
		case "tmk", "island", "analysis_point_source",
			"wt_suitability", "slope_requirement", "climate_suitability",
			"sma_constraints", "lot_size_requirement":
			fields[i] = shp.StringField(c.alias, 32)
		case "osds_qty", "total_bedrooms", "building_fp_qty",
			"in_sma", "in_flood_zone", "coast_within_100", "stream_within_50":
			fields[i] = shp.NumberField(c.alias, 10)
		default:
			fields[i] = shp.FloatField(c.alias, 19, 4)
		}
	}
	return fields
}

// WriteShapefile writes the spatial artifact: parcel polygons carrying the
// full attribute row under DBF field aliases. A row without geometry is a
// join-integrity failure; WriteAll rejects such tables before creating any
// file, and the check here guards direct callers.
func WriteShapefile(path string, t *Table) error {
	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return eris.Wrapf(err, "mpat: create %s", path)
	}
	defer w.Close()

	if err := w.SetFields(shpFields()); err != nil {
		return eris.Wrap(err, "mpat: set dbf fields")
	}

	for _, r := range t.Rows {
		mp, ok := t.Geometry[r.TMK]
		if !ok {
			return eris.Wrapf(model.ErrJoinIntegrity, "mpat: no geometry for TMK %s", r.TMK)
		}

		n := int(w.Write(multiPolygonToShp(mp)))
		for i, v := range dbfValues(r) {
			if err := w.WriteAttribute(n, i, v); err != nil {
				return eris.Wrapf(err, "mpat: write attribute %s for TMK %s", dbfColumns[i].alias, r.TMK)
			}
		}
	}
	return nil
}

func dbfValues(r *model.Row) []interface{} {
	return []interface{}{
		r.TMK,
		r.Island,
		r.OSDSQty,
		r.TotalBedrooms,
		r.AnalysisPointSource,
		r.ParcelAreaSqFt,
		r.BuildingFpQty,
		r.BuildingFpAreaSqFt,
		r.NetParcelAreaSqFt,
		r.DistToCoastFt,
		r.DistToStreamFt,
		r.DistToDomWellFt,
		r.DistToMunWellFt,
		r.DistToSMAFt,
		r.DistToFloodZoneFt,
		formatNullable(r.LandSurfaceElevFt),
		formatNullable(r.WtElevFt),
		formatNullable(r.DepthToWtFt),
		formatNullable(r.SlopePct),
		formatNullable(r.AvgRainfallIn),
		formatNullable(r.SoilHydrCondInHr),
		r.InSMA,
		r.InFloodZone,
		r.CoastWithin100,
		r.StreamWithin50,
		r.WtSuitability,
		r.SlopeRequirement,
		r.ClimateSuitability,
		r.SMAConstraints,
		r.LotSizeRequirement,
	}
}

// multiPolygonToShp flattens a multipolygon into shapefile ring parts.
// Shapefile convention orients exterior rings clockwise and holes
// counter-clockwise.
func multiPolygonToShp(mp *geom.MultiPolygon) *shp.Polygon {
	var parts [][]shp.Point
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		for j := 0; j < poly.NumLinearRings(); j++ {
			ring := ringToPoints(poly.LinearRing(j))
			exterior := j == 0
			if exterior == isCCW(ring) {
				reversePoints(ring)
			}
			parts = append(parts, ring)
		}
	}
	pl := shp.NewPolyLine(parts)
	return (*shp.Polygon)(pl)
}

func ringToPoints(ring *geom.LinearRing) []shp.Point {
	coords := ring.FlatCoords()
	stride := ring.Stride()
	pts := make([]shp.Point, 0, len(coords)/stride)
	for i := 0; i+1 < len(coords); i += stride {
		pts = append(pts, shp.Point{X: coords[i], Y: coords[i+1]})
	}
	// Shapefile rings are explicitly closed.
	if len(pts) > 0 && pts[0] != pts[len(pts)-1] {
		pts = append(pts, pts[0])
	}
	return pts
}

func isCCW(pts []shp.Point) bool {
	var area float64
	for i := 0; i+1 < len(pts); i++ {
		area += pts[i].X*pts[i+1].Y - pts[i+1].X*pts[i].Y
	}
	return area > 0
}

func reversePoints(pts []shp.Point) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}
