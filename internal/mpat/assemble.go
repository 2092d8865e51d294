package mpat

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/hawaii-osds/mpat-cli/internal/model"
)

// Exclusion is one dropped parcel in the exclusion report.
type Exclusion struct {
	TMK    string `csv:"tmk"`
	Reason string `csv:"reason"`
}

// Table is the assembled MPAT: rows in ascending TMK order, parcel geometry
// keyed by TMK for the spatial artifact, and the exclusion report.
type Table struct {
	Rows     []*model.Row
	Geometry map[string]*geom.MultiPolygon
	Excluded []Exclusion
	Partial  int
}

// Assemble reduces the per-parcel results into a table. TMK uniqueness is
// verified before any artifact is written: a duplicate row key is a fatal
// join-integrity failure, never a silently merged row.
func Assemble(parcels []model.Parcel, results []model.ParcelResult) (*Table, error) {
	geoms := make(map[string]*geom.MultiPolygon, len(parcels))
	for i := range parcels {
		geoms[parcels[i].TMK] = parcels[i].Geometry
	}

	t := &Table{Geometry: geoms}
	seen := make(map[string]bool, len(results))

	for _, res := range results {
		if seen[res.TMK] {
			return nil, eris.Wrapf(model.ErrJoinIntegrity, "mpat: duplicate result for TMK %s", res.TMK)
		}
		seen[res.TMK] = true

		switch res.Status {
		case model.StatusExcluded:
			reason := "unknown"
			if res.Err != nil {
				reason = eris.Cause(res.Err).Error()
			}
			t.Excluded = append(t.Excluded, Exclusion{TMK: res.TMK, Reason: reason})
		case model.StatusPartial:
			t.Partial++
			t.Rows = append(t.Rows, res.Row)
		case model.StatusSuccess:
			t.Rows = append(t.Rows, res.Row)
		default:
			return nil, eris.Errorf("mpat: result for TMK %s has status %q", res.TMK, res.Status)
		}
	}

	sort.Slice(t.Rows, func(i, j int) bool { return t.Rows[i].TMK < t.Rows[j].TMK })
	sort.Slice(t.Excluded, func(i, j int) bool { return t.Excluded[i].TMK < t.Excluded[j].TMK })

	zap.L().Info("assembled table",
		zap.Int("rows", len(t.Rows)),
		zap.Int("partial", t.Partial),
		zap.Int("excluded", len(t.Excluded)),
	)
	return t, nil
}

// VersionTag formats an artifact version number as the zero-padded tag used
// in artifact file names (1 -> "v01").
func VersionTag(n int) string {
	return fmt.Sprintf("v%02d", n)
}
