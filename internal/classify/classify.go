// Package classify derives the categorical and indicator columns of the
// output table. Classification policy lives in ordered breakpoint tables, not
// in control flow, so the regulatory thresholds can be replaced from a config
// file without touching pipeline code.
package classify

import (
	"math"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/hawaii-osds/mpat-cli/internal/model"
)

// ClassUnknown is the explicit class for undefined or missing input. A
// missing raster sample classifies as unknown, never as a silently
// substituted default.
const ClassUnknown = "unknown"

// Bucket is one ordered breakpoint: values at or below Upper take Class. The
// final bucket of a table leaves Upper nil and is open-ended, so every table
// is total over the real line.
type Bucket struct {
	Upper *float64 `yaml:"upper"`
	Class string   `yaml:"class"`
}

// Table is an ordered breakpoint table mapping a continuous quantity to a
// class label.
type Table struct {
	Name    string   `yaml:"name"`
	Buckets []Bucket `yaml:"buckets"`
}

// Classify maps a value to its class. NaN maps to ClassUnknown: it is the
// out-of-range marker for inputs no bucket can cover.
func (t Table) Classify(v float64) string {
	if math.IsNaN(v) {
		return ClassUnknown
	}
	for _, b := range t.Buckets {
		if b.Upper == nil || v <= *b.Upper {
			return b.Class
		}
	}
	// Unreachable for a validated table; kept total regardless.
	return ClassUnknown
}

// ClassifyPtr classifies a nullable value; nil maps to ClassUnknown.
func (t Table) ClassifyPtr(v *float64) string {
	if v == nil {
		return ClassUnknown
	}
	return t.Classify(*v)
}

// ClassifyChecked classifies a present value and reports when no bucket
// covers it. Callers tracking per-parcel warnings use this form; the class is
// still usable (unknown) on error.
func (t Table) ClassifyChecked(v float64) (string, error) {
	if math.IsNaN(v) {
		return ClassUnknown, eris.Wrapf(model.ErrClassificationRange, "classify: %s value undefined", t.Name)
	}
	return t.Classify(v), nil
}

func (t Table) validate() error {
	if len(t.Buckets) == 0 {
		return eris.Errorf("classify: table %s has no buckets", t.Name)
	}
	last := t.Buckets[len(t.Buckets)-1]
	if last.Upper != nil {
		return eris.Errorf("classify: table %s: final bucket must be open-ended", t.Name)
	}
	prev := math.Inf(-1)
	for _, b := range t.Buckets[:len(t.Buckets)-1] {
		if b.Upper == nil {
			return eris.Errorf("classify: table %s: only the final bucket may be open-ended", t.Name)
		}
		if *b.Upper <= prev {
			return eris.Errorf("classify: table %s: breakpoints must ascend", t.Name)
		}
		prev = *b.Upper
	}
	return nil
}

// Set holds the five classification tables used by the pipeline.
type Set struct {
	DepthToWater Table `yaml:"depth_to_water"`
	Slope        Table `yaml:"slope"`
	Rainfall     Table `yaml:"rainfall"`
	SMA          Table `yaml:"sma"`
	LotSize      Table `yaml:"lot_size"`
}

func up(v float64) *float64 { return &v }

// Defaults returns the built-in classification policy.
//
// Breakpoints (all inclusive upper bounds):
//   - depth to water table (ft): <=10 low, <=25 medium, else high —
//     deeper water table, less restrictive class.
//   - slope (percent rise): <=8 standard, <=15 modified, else engineered.
//   - average rainfall (in/yr): <=30 high, <=75 medium, else low — wetter
//     climate, more restrictive.
//   - SMA distance (ft): 0 restricted (containment), <=500 buffer, else
//     unrestricted.
//   - net lot size (sqft): <=5000 compact, <=10000 standard, else large.
func Defaults() Set {
	return Set{
		DepthToWater: Table{Name: "depth_to_water", Buckets: []Bucket{
			{Upper: up(10), Class: "low"},
			{Upper: up(25), Class: "medium"},
			{Class: "high"},
		}},
		Slope: Table{Name: "slope", Buckets: []Bucket{
			{Upper: up(8), Class: "standard"},
			{Upper: up(15), Class: "modified"},
			{Class: "engineered"},
		}},
		Rainfall: Table{Name: "rainfall", Buckets: []Bucket{
			{Upper: up(30), Class: "high"},
			{Upper: up(75), Class: "medium"},
			{Class: "low"},
		}},
		SMA: Table{Name: "sma", Buckets: []Bucket{
			{Upper: up(0), Class: "restricted"},
			{Upper: up(500), Class: "buffer"},
			{Class: "unrestricted"},
		}},
		LotSize: Table{Name: "lot_size", Buckets: []Bucket{
			{Upper: up(5000), Class: "compact"},
			{Upper: up(10000), Class: "standard"},
			{Class: "large"},
		}},
	}
}

// LoadSet reads a classification policy from a YAML file, falling back to the
// built-in defaults for any table the file omits.
func LoadSet(path string) (Set, error) {
	set := Defaults()
	if path == "" {
		return set, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, eris.Wrapf(err, "classify: read tables %s", path)
	}
	if err := yaml.Unmarshal(data, &set); err != nil {
		return Set{}, eris.Wrapf(err, "classify: parse tables %s", path)
	}
	if err := set.Validate(); err != nil {
		return Set{}, err
	}
	return set, nil
}

// Validate checks every table for ordered, total coverage.
func (s Set) Validate() error {
	for _, t := range []Table{s.DepthToWater, s.Slope, s.Rainfall, s.SMA, s.LotSize} {
		if err := t.validate(); err != nil {
			return err
		}
	}
	return nil
}

// DepthToWaterFt derives depth to the water table as land-surface elevation
// minus water-table elevation, both in feet. A water table above the land
// surface (possible where the interpolated surfaces disagree) is clamped to
// floorFt and treated as functionally at-surface rather than below datum.
// Nil propagates: the depth is null unless both inputs are present.
func DepthToWaterFt(landElevFt, wtElevFt *float64, floorFt float64) *float64 {
	if landElevFt == nil || wtElevFt == nil {
		return nil
	}
	d := *landElevFt - *wtElevFt
	if d < floorFt {
		d = floorFt
	}
	return &d
}
