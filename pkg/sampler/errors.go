package sampler

import "errors"

var (
	// ErrNoLabel is returned when a sample contains no image entry tagged
	// as a label, so foreground-constrained extraction cannot proceed.
	ErrNoLabel = errors.New("sampler: no label image found in sample")

	// ErrNoForeground is returned when a configured attempt cap is
	// exhausted without finding a window containing foreground. Without a
	// cap the search simply keeps going.
	ErrNoForeground = errors.New("sampler: no foreground-containing window found within attempt limit")

	// ErrNegativeLabel is returned by label validation when the label
	// volume contains negative values. The sum-based foreground test is
	// only sound for non-negative label encodings.
	ErrNegativeLabel = errors.New("sampler: label volume contains negative values")

	// ErrInvalidPatchSize is returned when the requested patch size does
	// not fit inside the volume extent.
	ErrInvalidPatchSize = errors.New("sampler: patch size exceeds volume extent")
)
