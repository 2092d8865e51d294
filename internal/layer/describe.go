package layer

import (
	"sort"

	"github.com/twpayne/go-geom"
)

// Info is a QA summary of a loaded vector layer.
type Info struct {
	Name     string
	Count    int
	GeomType string
	MinX     float64
	MinY     float64
	MaxX     float64
	MaxY     float64
	Fields   []string
}

// Describe summarizes a vector layer for QA inspection: feature count,
// geometry type, extent, and attribute field names.
func Describe(lyr *VectorLayer) Info {
	info := Info{Name: lyr.Name, Count: len(lyr.Features)}

	fieldSet := make(map[string]struct{})
	bounds := geom.NewBounds(geom.XY)
	for _, f := range lyr.Features {
		for k := range f.Attrs {
			fieldSet[k] = struct{}{}
		}
		bounds.Extend(f.Geom)
		if info.GeomType == "" {
			switch f.Geom.(type) {
			case *geom.Point:
				info.GeomType = "Point"
			case *geom.MultiLineString:
				info.GeomType = "MultiLineString"
			case *geom.MultiPolygon:
				info.GeomType = "MultiPolygon"
			default:
				info.GeomType = "Unknown"
			}
		}
	}

	if len(lyr.Features) > 0 {
		info.MinX, info.MinY = bounds.Min(0), bounds.Min(1)
		info.MaxX, info.MaxY = bounds.Max(0), bounds.Max(1)
	}

	for k := range fieldSet {
		info.Fields = append(info.Fields, k)
	}
	sort.Strings(info.Fields)
	return info
}
