package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hawaii-osds/mpat-cli/internal/classify"
	"github.com/hawaii-osds/mpat-cli/internal/config"
	"github.com/hawaii-osds/mpat-cli/internal/geodesy"
	"github.com/hawaii-osds/mpat-cli/internal/layer"
	"github.com/hawaii-osds/mpat-cli/internal/model"
	"github.com/hawaii-osds/mpat-cli/internal/mpat"
	"github.com/hawaii-osds/mpat-cli/internal/proximity"
	"github.com/hawaii-osds/mpat-cli/internal/sample"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Derive the table and write versioned artifacts",
	Long:  "Loads the prepared inputs, joins the OSDS inventory to parcels, runs the per-parcel derivation, and writes CSV, shapefile, and XLSX artifacts tagged with the next version number.",
}

func runBuildCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	start := time.Now()

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	build, err := st.CreateBuild(ctx)
	if err != nil {
		return err
	}
	zap.L().Info("build started",
		zap.String("build_id", build.ID),
		zap.Int("version", build.Version),
	)

	summary, err := runBuild(ctx, build.Version, start)
	if err != nil {
		if ferr := st.FailBuild(ctx, build.ID, err); ferr != nil {
			zap.L().Warn("could not record build failure", zap.Error(ferr))
		}
		return err
	}

	if err := st.CompleteBuild(ctx, build.ID, summary); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Build %s complete: %d rows (%d partial, %d excluded) -> %s\n",
		mpat.VersionTag(build.Version), summary.Rows, summary.Partial, summary.Excluded, summary.CSVPath)
	return nil
}

func runBuild(ctx context.Context, version int, start time.Time) (*model.BuildSummary, error) {
	in, err := loadInputs(cfg.Inputs, cfg.Pipeline.NoDataThreshold)
	if err != nil {
		return nil, err
	}

	parcels, err := mpat.QualifyingParcels(in.parcels, in.osds, cfg.Inputs.TMKField)
	if err != nil {
		return nil, err
	}

	workers, _ := buildCmd.Flags().GetInt("workers")
	if workers <= 0 {
		workers = cfg.Pipeline.Workers
	}
	tablesPath, _ := buildCmd.Flags().GetString("tables")
	if tablesPath == "" {
		tablesPath = cfg.Classify.TablesPath
	}
	tables, err := classify.LoadSet(tablesPath)
	if err != nil {
		return nil, err
	}

	pipe := mpat.New(
		mpat.Options{
			Workers:           workers,
			CoastThresholdFt:  cfg.Pipeline.CoastThresholdFt,
			StreamThresholdFt: cfg.Pipeline.StreamThresholdFt,
			DepthFloorFt:      cfg.Pipeline.DepthFloorFt,
		},
		proximity.NewEngine(geodesy.NewConverter(cfg.Pipeline.UTMZone)),
		in.indexes,
		in.footprints,
		in.samplers,
		tables,
	)

	results, err := pipe.Run(ctx, parcels)
	if err != nil {
		return nil, err
	}

	table, err := mpat.Assemble(parcels, results)
	if err != nil {
		return nil, err
	}

	outDir, _ := buildCmd.Flags().GetString("out")
	if outDir == "" {
		outDir = cfg.Output.Dir
	}
	paths, err := mpat.WriteAll(outDir, mpat.VersionTag(version), table)
	if err != nil {
		return nil, err
	}

	return &model.BuildSummary{
		Rows:      len(table.Rows),
		Partial:   table.Partial,
		Excluded:  len(table.Excluded),
		CSVPath:   paths.CSV,
		ShpPath:   paths.Shapefile,
		XLSXPath:  paths.XLSX,
		ElapsedMS: time.Since(start).Milliseconds(),
	}, nil
}

// inputs holds every loaded dataset the pipeline consumes.
type inputs struct {
	parcels    *layer.VectorLayer
	osds       map[string][]model.OSDSRecord
	footprints []layer.Feature
	indexes    mpat.Indexes
	samplers   mpat.Samplers
}

func loadInputs(in config.InputsConfig, nodataThreshold float64) (*inputs, error) {
	p := func(name string) string { return filepath.Join(in.Dir, name) }

	parcels, err := layer.LoadShapefile(p(in.Parcels), "parcels")
	if err != nil {
		return nil, err
	}
	osds, err := layer.LoadOSDS(p(in.OSDS))
	if err != nil {
		return nil, err
	}
	buildings, err := layer.LoadShapefile(p(in.Buildings), "buildings_fps")
	if err != nil {
		return nil, err
	}

	idx := mpat.Indexes{}
	for _, v := range []struct {
		name string
		path string
		dest **proximity.Index
	}{
		{"coastline", p(in.Coastline), &idx.Coast},
		{"streams", p(in.Streams), &idx.Streams},
		{"wells_dom", p(in.DomWells), &idx.DomWells},
		{"wells_mun", p(in.MunWells), &idx.MunWells},
		{"sma", p(in.SMA), &idx.SMA},
		{"flood_zones", p(in.FloodZones), &idx.FloodZones},
	} {
		lyr, err := layer.LoadShapefile(v.path, v.name)
		if err != nil {
			return nil, err
		}
		*v.dest = proximity.NewIndex(lyr)
	}

	soils, err := layer.LoadShapefile(p(in.Soils), "soils")
	if err != nil {
		return nil, err
	}

	samplers := mpat.Samplers{
		SoilCond: sample.NewPolygonAttrSampler("soil_hydr_cond_in_hr", soils, in.SoilCondField),
	}
	for _, g := range []struct {
		name   string
		path   string
		factor float64
		dest   *sample.Sampler
	}{
		{"land_surface_elev_ft", p(in.DEM), geodesy.MetersToFeet, &samplers.Elevation},
		{"wt_elev_ft", p(in.WaterTable), geodesy.MetersToFeet, &samplers.WaterTable},
		{"slope_pct", p(in.Slope), 1, &samplers.Slope},
		{"avg_rainfall_in", p(in.Rainfall), geodesy.MetersToInches, &samplers.Rainfall},
	} {
		grid, err := layer.LoadASCIIGrid(g.path, g.name)
		if err != nil {
			return nil, err
		}
		*g.dest = sample.NewGridSampler(g.name, grid, g.factor, nodataThreshold)
	}

	return &inputs{
		parcels:    parcels,
		osds:       osds,
		footprints: buildings.Features,
		indexes:    idx,
		samplers:   samplers,
	}, nil
}

func init() {
	buildCmd.RunE = runBuildCmd
	buildCmd.Flags().Int("workers", 0, "parallel derivation workers (default: pipeline.workers)")
	buildCmd.Flags().String("out", "", "artifact output directory (default: output.dir)")
	buildCmd.Flags().String("tables", "", "YAML file overriding the classification tables")

	rootCmd.AddCommand(buildCmd)
}
