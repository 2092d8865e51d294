package model

import "time"

// BuildStatus tracks a table build's lifecycle.
type BuildStatus string

const (
	BuildStatusRunning  BuildStatus = "running"
	BuildStatusComplete BuildStatus = "complete"
	BuildStatusFailed   BuildStatus = "failed"
)

// BuildSummary captures the outcome of a completed build: row counts and the
// artifact paths the version produced.
type BuildSummary struct {
	Rows      int    `json:"rows"`
	Partial   int    `json:"partial"`
	Excluded  int    `json:"excluded"`
	CSVPath   string `json:"csv_path"`
	ShpPath   string `json:"shp_path"`
	XLSXPath  string `json:"xlsx_path"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

// BuildRun is one entry in the build ledger. Version numbers are assigned
// sequentially at creation and never reused, so artifact tags (v01, v02)
// identify a build unambiguously.
type BuildRun struct {
	ID        string        `json:"id"`
	Version   int           `json:"version"`
	Status    BuildStatus   `json:"status"`
	Summary   *BuildSummary `json:"summary,omitempty"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
