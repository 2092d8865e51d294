// Package store persists the build ledger: one record per table build with
// its assigned version number, lifecycle status, and outcome summary. SQLite
// backs local runs; Postgres backs shared deployments.
package store

import (
	"context"

	"github.com/hawaii-osds/mpat-cli/internal/model"
)

// BuildFilter specifies criteria for listing builds.
type BuildFilter struct {
	Status model.BuildStatus `json:"status,omitempty"`
	Limit  int               `json:"limit,omitempty"`
	Offset int               `json:"offset,omitempty"`
}

// Store defines the persistence interface for the build ledger.
type Store interface {
	// CreateBuild opens a ledger entry and assigns the next version number.
	CreateBuild(ctx context.Context) (*model.BuildRun, error)
	CompleteBuild(ctx context.Context, buildID string, summary *model.BuildSummary) error
	FailBuild(ctx context.Context, buildID string, cause error) error
	GetBuild(ctx context.Context, buildID string) (*model.BuildRun, error)
	ListBuilds(ctx context.Context, filter BuildFilter) ([]model.BuildRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
