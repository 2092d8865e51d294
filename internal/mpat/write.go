package mpat

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/hawaii-osds/mpat-cli/internal/model"
)

// Paths names the artifact files of one table version.
type Paths struct {
	CSV        string
	Shapefile  string
	XLSX       string
	Exclusions string
}

// ArtifactPaths returns the artifact file paths for a version tag under dir.
func ArtifactPaths(dir, tag string) Paths {
	return Paths{
		CSV:        filepath.Join(dir, "mpat_"+tag+".csv"),
		Shapefile:  filepath.Join(dir, "mpat_"+tag+".shp"),
		XLSX:       filepath.Join(dir, "mpat_"+tag+".xlsx"),
		Exclusions: filepath.Join(dir, "mpat_"+tag+"_exclusions.csv"),
	}
}

// WriteAll writes every artifact of one table version. The table rows are
// already in TMK order, so repeated runs over the same inputs produce
// byte-identical CSV output. The table is checked for structural integrity
// up front: a row without geometry or diverging artifact schemas abort the
// build before any file is created.
func WriteAll(dir, tag string, t *Table) (Paths, error) {
	if err := checkArtifactIntegrity(t); err != nil {
		return Paths{}, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, eris.Wrapf(err, "mpat: create artifact dir %s", dir)
	}
	paths := ArtifactPaths(dir, tag)

	if err := WriteCSV(paths.CSV, t.Rows); err != nil {
		return Paths{}, err
	}
	if err := WriteShapefile(paths.Shapefile, t); err != nil {
		return Paths{}, err
	}
	if err := WriteXLSX(paths.XLSX, t.Rows); err != nil {
		return Paths{}, err
	}
	if err := WriteExclusions(paths.Exclusions, t.Excluded); err != nil {
		return Paths{}, err
	}

	zap.L().Info("wrote artifacts",
		zap.String("dir", dir),
		zap.String("version", tag),
		zap.Int("rows", len(t.Rows)),
	)
	return paths, nil
}

// checkArtifactIntegrity verifies the table can yield a consistent artifact
// set before anything touches disk, so a structural failure never leaves a
// partial version behind. The tabular and spatial artifacts must carry the
// same columns in the same order, and every row must have its parcel
// geometry.
func checkArtifactIntegrity(t *Table) error {
	if len(dbfColumns) != len(model.Columns) {
		return eris.Wrapf(model.ErrJoinIntegrity,
			"mpat: artifact schemas diverged: %d dbf columns, %d csv columns",
			len(dbfColumns), len(model.Columns))
	}
	for i, c := range dbfColumns {
		if c.full != model.Columns[i] {
			return eris.Wrapf(model.ErrJoinIntegrity,
				"mpat: artifact schemas diverged at column %d: dbf %s, csv %s",
				i, c.full, model.Columns[i])
		}
	}
	for _, r := range t.Rows {
		if _, ok := t.Geometry[r.TMK]; !ok {
			return eris.Wrapf(model.ErrJoinIntegrity, "mpat: no geometry for TMK %s", r.TMK)
		}
	}
	return nil
}

// WriteCSV writes the table as the canonical CSV artifact. Null fields encode
// as empty strings.
func WriteCSV(path string, rows []*model.Row) error {
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "mpat: marshal csv")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "mpat: write %s", path)
	}
	return nil
}

// WriteExclusions writes the exclusion report CSV. An empty report still
// produces a file so a run's artifact set is always complete.
func WriteExclusions(path string, excluded []Exclusion) error {
	data, err := csvutil.Marshal(excluded)
	if err != nil {
		return eris.Wrap(err, "mpat: marshal exclusions")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "mpat: write %s", path)
	}
	return nil
}

// WriteXLSX writes the review copy of the table.
func WriteXLSX(path string, rows []*model.Row) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("mpat")
	if err != nil {
		return eris.Wrap(err, "mpat: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range model.Columns {
		header.AddCell().SetString(col)
	}

	for _, r := range rows {
		out := sheet.AddRow()
		out.AddCell().SetString(r.TMK)
		out.AddCell().SetString(r.Island)
		out.AddCell().SetInt(r.OSDSQty)
		out.AddCell().SetInt(r.TotalBedrooms)
		out.AddCell().SetString(r.AnalysisPointSource)
		out.AddCell().SetFloat(r.ParcelAreaSqFt)
		out.AddCell().SetInt(r.BuildingFpQty)
		out.AddCell().SetFloat(r.BuildingFpAreaSqFt)
		out.AddCell().SetFloat(r.NetParcelAreaSqFt)
		out.AddCell().SetFloat(r.DistToCoastFt)
		out.AddCell().SetFloat(r.DistToStreamFt)
		out.AddCell().SetFloat(r.DistToDomWellFt)
		out.AddCell().SetFloat(r.DistToMunWellFt)
		out.AddCell().SetFloat(r.DistToSMAFt)
		out.AddCell().SetFloat(r.DistToFloodZoneFt)
		setNullableFloat(out, r.LandSurfaceElevFt)
		setNullableFloat(out, r.WtElevFt)
		setNullableFloat(out, r.DepthToWtFt)
		setNullableFloat(out, r.SlopePct)
		setNullableFloat(out, r.AvgRainfallIn)
		setNullableFloat(out, r.SoilHydrCondInHr)
		out.AddCell().SetInt(r.InSMA)
		out.AddCell().SetInt(r.InFloodZone)
		out.AddCell().SetInt(r.CoastWithin100)
		out.AddCell().SetInt(r.StreamWithin50)
		out.AddCell().SetString(r.WtSuitability)
		out.AddCell().SetString(r.SlopeRequirement)
		out.AddCell().SetString(r.ClimateSuitability)
		out.AddCell().SetString(r.SMAConstraints)
		out.AddCell().SetString(r.LotSizeRequirement)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "mpat: write %s", path)
	}
	return nil
}

func setNullableFloat(row *xlsx.Row, v *float64) {
	cell := row.AddCell()
	if v == nil {
		cell.SetString("")
		return
	}
	cell.SetFloat(*v)
}

func formatNullable(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
