package mpat

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/hawaii-osds/mpat-cli/internal/layer"
	"github.com/hawaii-osds/mpat-cli/internal/model"
)

// QualifyingParcels joins the OSDS inventory to the parcel layer by TMK and
// returns the parcels the table covers: those carrying at least one OSDS
// record. Parcels are returned in ascending TMK order.
//
// A TMK appearing on more than one parcel feature breaks the one-row-per-TMK
// contract and fails the join. Inventory records whose TMK matches no parcel
// are logged and dropped.
func QualifyingParcels(parcels *layer.VectorLayer, osds map[string][]model.OSDSRecord, tmkField string) ([]model.Parcel, error) {
	field := strings.ToLower(tmkField)
	seen := make(map[string]bool, len(parcels.Features))
	var out []model.Parcel

	for i, f := range parcels.Features {
		tmk := strings.TrimSpace(f.Attrs[field])
		if tmk == "" {
			zap.L().Debug("skipping parcel without TMK", zap.Int("feature", i))
			continue
		}
		if seen[tmk] {
			return nil, eris.Wrapf(model.ErrJoinIntegrity, "mpat: duplicate parcel TMK %s", tmk)
		}
		seen[tmk] = true

		records, ok := osds[tmk]
		if !ok {
			continue
		}

		mp, ok := f.Geom.(*geom.MultiPolygon)
		if !ok {
			zap.L().Debug("skipping non-polygonal parcel",
				zap.String("tmk", tmk),
			)
			continue
		}
		out = append(out, model.Parcel{TMK: tmk, Geometry: mp, OSDS: records})
	}

	var orphaned int
	for tmk := range osds {
		if !seen[tmk] {
			orphaned++
			zap.L().Debug("OSDS record matches no parcel", zap.String("tmk", tmk))
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].TMK < out[j].TMK })

	zap.L().Info("joined OSDS inventory to parcels",
		zap.Int("parcel_features", len(parcels.Features)),
		zap.Int("qualifying", len(out)),
		zap.Int("orphaned_records", orphaned),
	)
	return out, nil
}
