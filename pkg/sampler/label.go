// Package sampler extracts fixed-size patches from multi-channel volumes
// under the constraint that every patch contains at least one foreground
// voxel of the sample's label volume. Candidate windows are drawn uniformly
// at random and rejected until one covers foreground; the search is brute
// force, so its cost grows with the background-to-foreground ratio.
package sampler

import (
	"fmt"

	"volpatch/pkg/sample"
	"volpatch/pkg/volume"
)

// Params configures a LabelSampler.
type Params struct {
	// Generator proposes candidate crop windows. Defaults to a Uniform
	// generator seeded with 0 when nil.
	Generator IndexGenerator

	// MaxAttempts caps the number of candidate windows tried per patch.
	// Zero means unbounded: on a label volume with no foreground anywhere
	// the search never terminates. A positive cap turns that livelock into
	// an ErrNoForeground failure.
	MaxAttempts int

	// ValidateLabels checks once per extraction that the label volume has
	// no negative values. The sum-based foreground test assumes a
	// non-negative label encoding; with validation off that assumption is
	// an unchecked precondition.
	ValidateLabels bool
}

// Stats counts the work a sampler has done across calls.
type Stats struct {
	// Attempts is the total number of candidate windows proposed.
	Attempts int

	// Accepted is the number of patches returned.
	Accepted int
}

// LabelSampler extracts patches whose label crop contains foreground. It is
// not safe for concurrent use; give each goroutine its own sampler.
type LabelSampler struct {
	gen         IndexGenerator
	maxAttempts int
	validate    bool
	stats       Stats
}

// NewLabelSampler returns a sampler with the given parameters.
func NewLabelSampler(p Params) *LabelSampler {
	gen := p.Generator
	if gen == nil {
		gen = NewUniform(0)
	}
	return &LabelSampler{
		gen:         gen,
		maxAttempts: p.MaxAttempts,
		validate:    p.ValidateLabels,
	}
}

// FirstLabel returns the volume of the first label-typed image entry in the
// sample's insertion order, skipping aux entries. The volume is borrowed
// from the sample and must be treated as read-only. ErrNoLabel is returned
// when no entry carries the label tag.
func FirstLabel(s *sample.Sample) (*volume.Volume, error) {
	var found *volume.Volume
	s.Each(func(name string, e sample.Entry) bool {
		img, ok := e.(sample.Image)
		if !ok || img.Type != sample.Label {
			return true
		}
		found = img.Data
		return false
	})
	if found == nil {
		return nil, ErrNoLabel
	}
	return found, nil
}

// ExtractPatch draws random crop windows of the given spatial size until one
// contains at least one foreground voxel in the sample's label volume, then
// crops every image entry to that window and returns the resulting sample.
//
// The input sample is never modified; cropped entries own their data and
// aux entries are shared. On success the returned sample has the same entry
// names in the same order, every image entry has spatial shape equal to
// size, and its label crop has a positive sum.
func (ls *LabelSampler) ExtractPatch(s *sample.Sample, size []int) (*sample.Sample, error) {
	label, err := FirstLabel(s)
	if err != nil {
		return nil, err
	}
	if ls.validate && label.Min() < 0 {
		return nil, ErrNegativeLabel
	}

	var win volume.Window
	for attempt := 0; ; attempt++ {
		if ls.maxAttempts > 0 && attempt >= ls.maxAttempts {
			return nil, fmt.Errorf("%w after %d attempts", ErrNoForeground, attempt)
		}
		win, err = ls.gen.RandomWindow(label.Shape, size)
		if err != nil {
			return nil, err
		}
		ls.stats.Attempts++

		patch, err := label.Crop(win)
		if err != nil {
			return nil, err
		}
		if patch.Sum() > 0 {
			break
		}
	}

	out, err := cropSample(s, win)
	if err != nil {
		return nil, err
	}
	ls.stats.Accepted++
	return out, nil
}

// Stats returns cumulative attempt and acceptance counts.
func (ls *LabelSampler) Stats() Stats {
	return ls.stats
}

// cropSample builds a new sample with every image entry cropped to the
// window. Aux entries are carried over as-is.
func cropSample(s *sample.Sample, w volume.Window) (*sample.Sample, error) {
	out := sample.New()
	var cropErr error
	s.Each(func(name string, e sample.Entry) bool {
		img, ok := e.(sample.Image)
		if !ok {
			out.Set(name, e)
			return true
		}
		cropped, err := img.Data.Crop(w)
		if err != nil {
			cropErr = fmt.Errorf("cropping %q: %w", name, err)
			return false
		}
		out.SetImage(name, cropped, img.Type)
		return true
	})
	if cropErr != nil {
		return nil, cropErr
	}
	return out, nil
}
