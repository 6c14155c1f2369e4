package render

import "errors"

var (
	// ErrEmptyMesh is returned when an output needs at least one point to
	// establish its extent.
	ErrEmptyMesh = errors.New("render: mesh has no points")

	// ErrInvalidDimensions is returned for image or canvas sizes and sample
	// steps that are not positive.
	ErrInvalidDimensions = errors.New("render: invalid dimensions")
)
