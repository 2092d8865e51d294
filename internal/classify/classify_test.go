package classify

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawaii-osds/mpat-cli/internal/model"
)

func TestTableClassify(t *testing.T) {
	tbl := Defaults().DepthToWater

	tests := []struct {
		name string
		v    float64
		want string
	}{
		{"well below first break", 2, "low"},
		{"exactly on first break", 10, "low"},
		{"just past first break", 10.01, "medium"},
		{"exactly on second break", 25, "medium"},
		{"open-ended tail", 400, "high"},
		{"negative", -5, "low"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tbl.Classify(tt.v))
		})
	}
}

func TestTableClassify_NaNIsUnknown(t *testing.T) {
	tbl := Defaults().Slope
	assert.Equal(t, ClassUnknown, tbl.Classify(math.NaN()))
}

func TestTableClassifyPtr(t *testing.T) {
	tbl := Defaults().LotSize
	v := 7500.0
	assert.Equal(t, "standard", tbl.ClassifyPtr(&v))
	assert.Equal(t, ClassUnknown, tbl.ClassifyPtr(nil))
}

func TestTableClassifyChecked(t *testing.T) {
	tbl := Defaults().Rainfall

	c, err := tbl.ClassifyChecked(45)
	require.NoError(t, err)
	assert.Equal(t, "medium", c)

	c, err = tbl.ClassifyChecked(math.NaN())
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrClassificationRange))
	assert.Equal(t, ClassUnknown, c)
}

func TestSMA_ZeroIsRestricted(t *testing.T) {
	tbl := Defaults().SMA
	assert.Equal(t, "restricted", tbl.Classify(0))
	assert.Equal(t, "buffer", tbl.Classify(1))
	assert.Equal(t, "buffer", tbl.Classify(500))
	assert.Equal(t, "unrestricted", tbl.Classify(500.5))
}

func TestDefaultsValidate(t *testing.T) {
	require.NoError(t, Defaults().Validate())
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name string
		tbl  Table
	}{
		{"empty", Table{Name: "t"}},
		{"closed final bucket", Table{Name: "t", Buckets: []Bucket{
			{Upper: up(1), Class: "a"},
		}}},
		{"descending breakpoints", Table{Name: "t", Buckets: []Bucket{
			{Upper: up(10), Class: "a"},
			{Upper: up(5), Class: "b"},
			{Class: "c"},
		}}},
		{"interior open bucket", Table{Name: "t", Buckets: []Bucket{
			{Class: "a"},
			{Class: "b"},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.tbl.validate())
		})
	}
}

func TestLoadSet_OverridesAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
slope:
  name: slope
  buckets:
    - upper: 12
      class: standard
    - class: engineered
`), 0o644))

	set, err := LoadSet(path)
	require.NoError(t, err)

	// The overridden table applies; untouched tables keep defaults.
	assert.Equal(t, "standard", set.Slope.Classify(12))
	assert.Equal(t, "engineered", set.Slope.Classify(12.5))
	assert.Equal(t, "low", set.DepthToWater.Classify(5))
}

func TestLoadSet_EmptyPathUsesDefaults(t *testing.T) {
	set, err := LoadSet("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), set)
}

func TestLoadSet_InvalidTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sma:
  name: sma
  buckets:
    - upper: 100
      class: only
`), 0o644))

	_, err := LoadSet(path)
	assert.Error(t, err)
}

func TestDepthToWaterFt(t *testing.T) {
	elev := 120.0
	wt := 95.0
	d := DepthToWaterFt(&elev, &wt, 3.3)
	require.NotNil(t, d)
	assert.InDelta(t, 25.0, *d, 1e-9)
}

func TestDepthToWaterFt_ClampsToFloor(t *testing.T) {
	// Interpolated water table above land surface: clamp, do not go negative.
	elev := 10.0
	wt := 14.0
	d := DepthToWaterFt(&elev, &wt, 3.3)
	require.NotNil(t, d)
	assert.Equal(t, 3.3, *d)
}

func TestDepthToWaterFt_NilPropagates(t *testing.T) {
	elev := 10.0
	assert.Nil(t, DepthToWaterFt(&elev, nil, 3.3))
	assert.Nil(t, DepthToWaterFt(nil, &elev, 3.3))
}

func TestIndicators(t *testing.T) {
	assert.True(t, Within(100, 100))
	assert.False(t, Within(100.01, 100))

	assert.True(t, Contained(0))
	assert.False(t, Contained(0.5))

	assert.Equal(t, 1, Flag(true))
	assert.Equal(t, 0, Flag(false))
}
