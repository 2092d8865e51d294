// Package mpat derives the Master Parcel Attribute Table: it joins the OSDS
// inventory to the parcel layer, runs the per-parcel derivation in parallel,
// assembles the results into a deterministic table, and writes the versioned
// artifacts.
package mpat

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hawaii-osds/mpat-cli/internal/classify"
	"github.com/hawaii-osds/mpat-cli/internal/layer"
	"github.com/hawaii-osds/mpat-cli/internal/model"
	"github.com/hawaii-osds/mpat-cli/internal/normalize"
	"github.com/hawaii-osds/mpat-cli/internal/overlay"
	"github.com/hawaii-osds/mpat-cli/internal/proximity"
	"github.com/hawaii-osds/mpat-cli/internal/sample"
)

// Indexes holds the spatial indexes of the six reference layers measured by
// the proximity stage.
type Indexes struct {
	Coast      *proximity.Index
	Streams    *proximity.Index
	DomWells   *proximity.Index
	MunWells   *proximity.Index
	SMA        *proximity.Index
	FloodZones *proximity.Index
}

// Samplers holds the point-sampled enrichment sources. Each may null its
// field independently when the analysis point falls outside coverage.
type Samplers struct {
	Elevation  sample.Sampler
	WaterTable sample.Sampler
	Slope      sample.Sampler
	Rainfall   sample.Sampler
	SoilCond   sample.Sampler
}

// Options tunes the derivation.
type Options struct {
	Workers           int
	CoastThresholdFt  float64
	StreamThresholdFt float64
	DepthFloorFt      float64
}

// Pipeline runs the per-parcel derivation.
type Pipeline struct {
	opts       Options
	prox       *proximity.Engine
	idx        Indexes
	footprints []layer.Feature
	samplers   Samplers
	tables     classify.Set
}

// New assembles a pipeline from its prepared inputs.
func New(opts Options, prox *proximity.Engine, idx Indexes, footprints []layer.Feature, samplers Samplers, tables classify.Set) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Pipeline{
		opts:       opts,
		prox:       prox,
		idx:        idx,
		footprints: footprints,
		samplers:   samplers,
		tables:     tables,
	}
}

// Run derives one result per parcel. Workers share nothing but the read-only
// inputs; results land in input order. Run fails only on context
// cancellation — per-parcel failures become excluded results, not errors.
func (p *Pipeline) Run(ctx context.Context, parcels []model.Parcel) ([]model.ParcelResult, error) {
	zap.L().Info("deriving parcel attributes",
		zap.Int("parcels", len(parcels)),
		zap.Int("workers", p.opts.Workers),
	)
	start := time.Now()

	results := make([]model.ParcelResult, len(parcels))
	var succeeded, partial, excluded atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)

	for i := range parcels {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return eris.Wrap(err, "mpat: derivation cancelled")
			}

			res := p.derive(&parcels[i])
			results[i] = res

			switch res.Status {
			case model.StatusSuccess:
				succeeded.Add(1)
			case model.StatusPartial:
				partial.Add(1)
				zap.L().Debug("partial derivation",
					zap.String("tmk", res.TMK),
					zap.Strings("warnings", res.Warnings),
				)
			case model.StatusExcluded:
				excluded.Add(1)
				zap.L().Warn("parcel excluded",
					zap.String("tmk", res.TMK),
					zap.Error(res.Err),
				)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("derivation complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("partial", partial.Load()),
		zap.Int64("excluded", excluded.Load()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results, nil
}

func (p *Pipeline) derive(parcel *model.Parcel) model.ParcelResult {
	pt, err := normalize.AnalysisPoint(parcel.Geometry)
	if err != nil {
		return model.ParcelResult{
			TMK:    parcel.TMK,
			Status: model.StatusExcluded,
			Err:    eris.Wrapf(err, "mpat: parcel %s", parcel.TMK),
		}
	}

	row := &model.Row{
		TMK:                 parcel.TMK,
		Island:              model.IslandFromTMK(parcel.TMK),
		OSDSQty:             len(parcel.OSDS),
		TotalBedrooms:       parcel.TotalBedrooms(),
		AnalysisPointSource: pt.Source,
	}

	ov := overlay.Compute(parcel.Geometry, p.footprints)
	row.ParcelAreaSqFt = ov.ParcelAreaSqFt
	row.BuildingFpQty = ov.FootprintQty
	row.BuildingFpAreaSqFt = ov.FootprintAreaSqFt
	row.NetParcelAreaSqFt = ov.NetParcelAreaSqFt

	distances := []struct {
		idx  *proximity.Index
		dest *float64
	}{
		{p.idx.Coast, &row.DistToCoastFt},
		{p.idx.Streams, &row.DistToStreamFt},
		{p.idx.DomWells, &row.DistToDomWellFt},
		{p.idx.MunWells, &row.DistToMunWellFt},
		{p.idx.SMA, &row.DistToSMAFt},
		{p.idx.FloodZones, &row.DistToFloodZoneFt},
	}
	for _, d := range distances {
		v, err := p.prox.DistanceFt(pt, d.idx)
		if err != nil {
			return model.ParcelResult{
				TMK:    parcel.TMK,
				Status: model.StatusExcluded,
				Err:    eris.Wrapf(err, "mpat: parcel %s", parcel.TMK),
			}
		}
		*d.dest = v
	}

	var warnings []string
	sampleField := func(s sample.Sampler, dest **float64) {
		v, err := s.Sample(pt)
		if err != nil {
			// Out-of-coverage nulls the field and keeps the parcel.
			warnings = append(warnings, eris.Cause(err).Error()+": "+s.Name())
			*dest = nil
			return
		}
		*dest = &v
	}
	sampleField(p.samplers.Elevation, &row.LandSurfaceElevFt)
	sampleField(p.samplers.WaterTable, &row.WtElevFt)
	sampleField(p.samplers.Slope, &row.SlopePct)
	sampleField(p.samplers.Rainfall, &row.AvgRainfallIn)
	sampleField(p.samplers.SoilCond, &row.SoilHydrCondInHr)

	row.DepthToWtFt = classify.DepthToWaterFt(row.LandSurfaceElevFt, row.WtElevFt, p.opts.DepthFloorFt)

	row.InSMA = classify.Flag(classify.Contained(row.DistToSMAFt))
	row.InFloodZone = classify.Flag(classify.Contained(row.DistToFloodZoneFt))
	row.CoastWithin100 = classify.Flag(classify.Within(row.DistToCoastFt, p.opts.CoastThresholdFt))
	row.StreamWithin50 = classify.Flag(classify.Within(row.DistToStreamFt, p.opts.StreamThresholdFt))

	classField := func(t classify.Table, v *float64) string {
		if v == nil {
			return classify.ClassUnknown
		}
		c, err := t.ClassifyChecked(*v)
		if err != nil {
			warnings = append(warnings, eris.Cause(err).Error()+": "+t.Name)
		}
		return c
	}
	row.WtSuitability = classField(p.tables.DepthToWater, row.DepthToWtFt)
	row.SlopeRequirement = classField(p.tables.Slope, row.SlopePct)
	row.ClimateSuitability = classField(p.tables.Rainfall, row.AvgRainfallIn)
	row.SMAConstraints = classField(p.tables.SMA, &row.DistToSMAFt)
	row.LotSizeRequirement = classField(p.tables.LotSize, &row.NetParcelAreaSqFt)

	status := model.StatusSuccess
	if len(warnings) > 0 {
		status = model.StatusPartial
	}
	return model.ParcelResult{
		TMK:      parcel.TMK,
		Status:   status,
		Row:      row,
		Warnings: warnings,
	}
}
