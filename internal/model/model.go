// Package model defines the core entities of the MPAT derivation pipeline:
// parcels, analysis points, output rows, and the error taxonomy shared by
// every pipeline stage.
package model

import (
	"github.com/twpayne/go-geom"
)

// AnalysisPointSource records which rule produced a parcel's analysis point.
const (
	SourceCentroid      = "centroid"
	SourceInteriorPoint = "interior-point"
)

// OSDSRecord is one onsite sewage disposal system (cesspool) inventory record
// tied to a parcel by TMK.
type OSDSRecord struct {
	TMK      string `csv:"tmk"`
	Bedrooms int    `csv:"bedrooms"`
}

// Parcel is the analysis grain of the pipeline: one polygon or multipolygon
// keyed by Tax Map Key, plus its OSDS inventory records. Parcels are immutable
// once loaded.
type Parcel struct {
	TMK      string
	Geometry *geom.MultiPolygon
	OSDS     []OSDSRecord
}

// TotalBedrooms sums bedroom counts across the parcel's OSDS records.
func (p *Parcel) TotalBedrooms() int {
	var n int
	for _, r := range p.OSDS {
		n += r.Bedrooms
	}
	return n
}

// AnalysisPoint is the single representative coordinate per parcel used for
// all point sampling and distance computation. X/Y are in the working
// projected CRS.
type AnalysisPoint struct {
	X, Y   float64
	Source string
}

// ResultStatus tags a per-parcel derivation outcome.
type ResultStatus string

const (
	StatusSuccess  ResultStatus = "success"
	StatusPartial  ResultStatus = "partial"
	StatusExcluded ResultStatus = "excluded"
)

// ParcelResult is the tagged per-parcel outcome flowing from the parallel map
// phase into the assembler. Excluded results carry Err and no Row; partial
// results carry a Row with one or more nulled fields plus Warnings.
type ParcelResult struct {
	TMK      string
	Status   ResultStatus
	Row      *Row
	Warnings []string
	Err      error
}
