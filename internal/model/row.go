package model

import "strings"

// Row is one MPAT output row: every column of the data dictionary, in output
// order. Pointer fields are nullable — a missing raster sample nulls the field
// without dropping the parcel. Field order here is the artifact column order.
type Row struct {
	TMK                 string   `csv:"tmk"`
	Island              string   `csv:"island"`
	OSDSQty             int      `csv:"osds_qty"`
	TotalBedrooms       int      `csv:"total_bedrooms"`
	AnalysisPointSource string   `csv:"analysis_point_source"`
	ParcelAreaSqFt      float64  `csv:"parcel_area_sqft"`
	BuildingFpQty       int      `csv:"building_fp_qty"`
	BuildingFpAreaSqFt  float64  `csv:"building_fp_area_sqft"`
	NetParcelAreaSqFt   float64  `csv:"net_parcel_area_sqft"`
	DistToCoastFt       float64  `csv:"dist_to_coast_ft"`
	DistToStreamFt      float64  `csv:"dist_to_stream_ft"`
	DistToDomWellFt     float64  `csv:"dist_to_dom_well_ft"`
	DistToMunWellFt     float64  `csv:"dist_to_mun_well_ft"`
	DistToSMAFt         float64  `csv:"dist_to_sma_ft"`
	DistToFloodZoneFt   float64  `csv:"dist_to_flood_zone_ft"`
	LandSurfaceElevFt   *float64 `csv:"land_surface_elev_ft"`
	WtElevFt            *float64 `csv:"wt_elev_ft"`
	DepthToWtFt         *float64 `csv:"depth_to_wt_ft"`
	SlopePct            *float64 `csv:"slope_pct"`
	AvgRainfallIn       *float64 `csv:"avg_rainfall_in"`
	SoilHydrCondInHr    *float64 `csv:"soil_hydr_cond_in_hr"`
	InSMA               int      `csv:"in_sma"`
	InFloodZone         int      `csv:"in_flood_zone"`
	CoastWithin100      int      `csv:"coast_within_100"`
	StreamWithin50      int      `csv:"stream_within_50"`
	WtSuitability       string   `csv:"wt_suitability"`
	SlopeRequirement    string   `csv:"slope_requirement"`
	ClimateSuitability  string   `csv:"climate_suitability"`
	SMAConstraints      string   `csv:"sma_constraints"`
	LotSizeRequirement  string   `csv:"lot_size_requirement"`
}

// Columns lists the data-dictionary column names in output order.
var Columns = []string{
	"tmk", "island", "osds_qty", "total_bedrooms", "analysis_point_source",
	"parcel_area_sqft", "building_fp_qty", "building_fp_area_sqft",
	"net_parcel_area_sqft", "dist_to_coast_ft", "dist_to_stream_ft",
	"dist_to_dom_well_ft", "dist_to_mun_well_ft", "dist_to_sma_ft",
	"dist_to_flood_zone_ft", "land_surface_elev_ft", "wt_elev_ft",
	"depth_to_wt_ft", "slope_pct", "avg_rainfall_in", "soil_hydr_cond_in_hr",
	"in_sma", "in_flood_zone", "coast_within_100", "stream_within_50",
	"wt_suitability", "slope_requirement", "climate_suitability",
	"sma_constraints", "lot_size_requirement",
}

// islandByZone maps the leading TMK zone digit to an island. Zone 2 covers
// Maui county (Maui, Molokai, Lanai).
var islandByZone = map[byte]string{
	'1': "oahu",
	'2': "maui",
	'3': "hawaii",
	'4': "kauai",
}

// IslandFromTMK derives the island from the TMK's leading zone digit.
// Unknown or empty zones yield "unknown".
func IslandFromTMK(tmk string) string {
	tmk = strings.TrimSpace(tmk)
	if tmk == "" {
		return "unknown"
	}
	if island, ok := islandByZone[tmk[0]]; ok {
		return island
	}
	return "unknown"
}
