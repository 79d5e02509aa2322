package volume

import "fmt"

// Window is a half-open crop region in spatial-dimension space. For every
// dimension d, Ini[d] <= c < Fin[d] selects the voxels of the crop.
type Window struct {
	Ini []int
	Fin []int
}

// Size returns the extent of the window in each spatial dimension.
func (w Window) Size() []int {
	size := make([]int, len(w.Ini))
	for d := range w.Ini {
		size[d] = w.Fin[d] - w.Ini[d]
	}
	return size
}

// NumVoxels returns the number of voxels per channel inside the window.
func (w Window) NumVoxels() int {
	n := 1
	for d := range w.Ini {
		n *= w.Fin[d] - w.Ini[d]
	}
	return n
}

// Contains reports whether the spatial coordinate lies inside the window.
func (w Window) Contains(coord []int) bool {
	if len(coord) != len(w.Ini) {
		return false
	}
	for d, c := range coord {
		if c < w.Ini[d] || c >= w.Fin[d] {
			return false
		}
	}
	return true
}

func (w Window) String() string {
	return fmt.Sprintf("window %v..%v", w.Ini, w.Fin)
}

// check validates the window against a spatial shape.
func (w Window) check(shape []int) error {
	if len(w.Ini) != len(shape) || len(w.Fin) != len(shape) {
		return fmt.Errorf("volume: window %s does not match %d spatial dimensions", w, len(shape))
	}
	for d := range shape {
		if w.Ini[d] < 0 || w.Fin[d] > shape[d] || w.Ini[d] >= w.Fin[d] {
			return fmt.Errorf("volume: %s out of bounds for shape %v", w, shape)
		}
	}
	return nil
}

// Crop returns a new volume holding the voxels selected by the window. The
// channel dimension is preserved in full and the returned data is
// independently owned: writes to the crop never reach the source.
func (v *Volume) Crop(w Window) (*Volume, error) {
	if err := w.check(v.Shape); err != nil {
		return nil, err
	}
	out, err := New(v.Channels, w.Size()...)
	if err != nil {
		return nil, err
	}

	dims := v.Dims()
	srcVoxels := v.NumVoxels()
	dstVoxels := out.NumVoxels()
	rowLen := w.Fin[dims-1] - w.Ini[dims-1]

	// Walk every output row (all dimensions but the innermost) and copy the
	// innermost dimension contiguously from the source.
	coord := append([]int(nil), w.Ini...)
	for c := 0; c < v.Channels; c++ {
		dst := c * dstVoxels
		for {
			off := 0
			for d := 0; d < dims; d++ {
				off = off*v.Shape[d] + coord[d]
			}
			src := c*srcVoxels + off
			copy(out.Data[dst:dst+rowLen], v.Data[src:src+rowLen])
			dst += rowLen

			// Advance the outer coordinates, odometer style.
			d := dims - 2
			for ; d >= 0; d-- {
				coord[d]++
				if coord[d] < w.Fin[d] {
					break
				}
				coord[d] = w.Ini[d]
			}
			if d < 0 {
				break
			}
		}
	}
	return out, nil
}
