package sampler

import (
	"volpatch/pkg/sample"
)

// Stream produces an unbounded sequence of foreground-containing patches
// from one source sample. Each call to Next is an independent extraction;
// no state is carried between patches beyond the shared read-only source
// and the sampler's random generator. The stream never ends on its own:
// the consumer decides how many patches to draw.
type Stream struct {
	sampler *LabelSampler
	src     *sample.Sample
	size    []int
}

// NewStream binds a sampler to a fixed (sample, patch size) pair.
func NewStream(ls *LabelSampler, src *sample.Sample, size []int) *Stream {
	return &Stream{
		sampler: ls,
		src:     src,
		size:    append([]int(nil), size...),
	}
}

// Next extracts one more patch. Errors (ErrNoLabel, ErrNoForeground when an
// attempt cap is set) are returned as-is; the stream remains usable after a
// failed draw.
func (st *Stream) Next() (*sample.Sample, error) {
	return st.sampler.ExtractPatch(st.src, st.size)
}
