package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawaii-osds/mpat-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "mpat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLite_CreateBuild_AssignsSequentialVersions(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	b1, err := s.CreateBuild(ctx)
	require.NoError(t, err)
	b2, err := s.CreateBuild(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, b1.Version)
	assert.Equal(t, 2, b2.Version)
	assert.NotEqual(t, b1.ID, b2.ID)
	assert.Equal(t, model.BuildStatusRunning, b1.Status)
}

func TestSQLite_CompleteBuild(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	b, err := s.CreateBuild(ctx)
	require.NoError(t, err)

	summary := &model.BuildSummary{Rows: 42, Partial: 3, Excluded: 1, CSVPath: "out/mpat_v01.csv"}
	require.NoError(t, s.CompleteBuild(ctx, b.ID, summary))

	got, err := s.GetBuild(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BuildStatusComplete, got.Status)
	require.NotNil(t, got.Summary)
	assert.Equal(t, 42, got.Summary.Rows)
	assert.Equal(t, "out/mpat_v01.csv", got.Summary.CSVPath)
}

func TestSQLite_FailBuild(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	b, err := s.CreateBuild(ctx)
	require.NoError(t, err)
	require.NoError(t, s.FailBuild(ctx, b.ID, eris.New("parcel layer unreadable")))

	got, err := s.GetBuild(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BuildStatusFailed, got.Status)
	assert.Contains(t, got.Error, "parcel layer unreadable")
	assert.Nil(t, got.Summary)
}

func TestSQLite_CompleteBuild_NotFound(t *testing.T) {
	s := newTestSQLite(t)

	err := s.CompleteBuild(context.Background(), "missing", &model.BuildSummary{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_ListBuilds(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	b1, err := s.CreateBuild(ctx)
	require.NoError(t, err)
	_, err = s.CreateBuild(ctx)
	require.NoError(t, err)
	require.NoError(t, s.CompleteBuild(ctx, b1.ID, &model.BuildSummary{Rows: 10}))

	all, err := s.ListBuilds(ctx, BuildFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	// Newest version first.
	assert.Equal(t, 2, all[0].Version)
	assert.Equal(t, 1, all[1].Version)

	running, err := s.ListBuilds(ctx, BuildFilter{Status: model.BuildStatusRunning})
	require.NoError(t, err)
	require.Len(t, running, 1)
	assert.Equal(t, 2, running[0].Version)

	limited, err := s.ListBuilds(ctx, BuildFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
