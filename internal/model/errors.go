package model

import "github.com/rotisserie/eris"

// Pipeline error taxonomy. Per-parcel failures (geometry, sampling) are
// isolated and reported; assembly failures are fatal and abort the build
// before any artifact is written.
var (
	// ErrGeometry marks an unusable parcel geometry (empty, zero-area, or
	// irreparably invalid). The parcel is excluded from the output and logged.
	ErrGeometry = eris.New("unusable parcel geometry")

	// ErrSampleOutOfBounds marks an analysis point outside a surface's
	// coverage extent (or over nodata). The field is nulled, the parcel kept.
	ErrSampleOutOfBounds = eris.New("sample point outside surface coverage")

	// ErrJoinIntegrity marks a duplicate or orphaned TMK, or a schema
	// mismatch between co-derived artifacts, at assembly. Fatal.
	ErrJoinIntegrity = eris.New("join integrity violation")

	// ErrClassificationRange marks a value no breakpoint bucket covers.
	// Mapped to the explicit unknown class, never fatal.
	ErrClassificationRange = eris.New("value outside classification range")
)
