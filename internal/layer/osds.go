package layer

import (
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/hawaii-osds/mpat-cli/internal/model"
)

// LoadOSDS reads the OSDS/cesspool inventory table and groups records by TMK.
// Parcels with at least one record here are the qualifying parcels — the
// analysis grain of the output table.
func LoadOSDS(path string) (map[string][]model.OSDSRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "layer: read OSDS inventory %s", path)
	}

	var records []model.OSDSRecord
	if err := csvutil.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrap(err, "layer: decode OSDS inventory")
	}
	if len(records) == 0 {
		return nil, eris.New("layer: OSDS inventory is empty")
	}

	byTMK := make(map[string][]model.OSDSRecord)
	for _, r := range records {
		if r.TMK == "" {
			continue
		}
		byTMK[r.TMK] = append(byTMK[r.TMK], r)
	}
	return byTMK, nil
}
