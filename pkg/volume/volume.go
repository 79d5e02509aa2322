// Package volume provides dense multi-channel N-dimensional arrays and the
// crop operation used to cut fixed-size patches out of them. A volume stores
// its voxels in a flat []float64, channel-major, with row-major spatial
// layout inside each channel.
package volume

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Volume is a dense multi-channel N-dimensional array. The channel dimension
// is separate from the spatial dimensions: a 2-channel 3-D scan of extent
// 64x64x32 has Channels=2 and Shape=[64 64 32].
type Volume struct {
	// Data holds the voxel values, channel-major: all voxels of channel 0
	// in row-major spatial order, then all voxels of channel 1, and so on.
	Data []float64

	// Channels is the size of the channel dimension. At least 1.
	Channels int

	// Shape is the spatial extent, one entry per spatial dimension.
	Shape []int
}

// New allocates a zero-filled volume with the given channel count and
// spatial shape.
func New(channels int, shape ...int) (*Volume, error) {
	if channels < 1 {
		return nil, fmt.Errorf("volume: channels must be at least 1, got %d", channels)
	}
	n, err := spatialLen(shape)
	if err != nil {
		return nil, err
	}
	return &Volume{
		Data:     make([]float64, channels*n),
		Channels: channels,
		Shape:    append([]int(nil), shape...),
	}, nil
}

// FromData wraps an existing flat slice as a volume. The slice length must
// equal channels times the product of the spatial extents. The slice is
// used directly, not copied.
func FromData(data []float64, channels int, shape ...int) (*Volume, error) {
	if channels < 1 {
		return nil, fmt.Errorf("volume: channels must be at least 1, got %d", channels)
	}
	n, err := spatialLen(shape)
	if err != nil {
		return nil, err
	}
	if len(data) != channels*n {
		return nil, fmt.Errorf("volume: data length %d does not match %d channels x shape %v",
			len(data), channels, shape)
	}
	return &Volume{
		Data:     data,
		Channels: channels,
		Shape:    append([]int(nil), shape...),
	}, nil
}

// Dims returns the number of spatial dimensions.
func (v *Volume) Dims() int { return len(v.Shape) }

// NumVoxels returns the number of voxels in one channel.
func (v *Volume) NumVoxels() int {
	n := 1
	for _, s := range v.Shape {
		n *= s
	}
	return n
}

// At returns the value at the given channel and spatial coordinate.
func (v *Volume) At(channel int, coord ...int) float64 {
	return v.Data[v.index(channel, coord)]
}

// Set stores a value at the given channel and spatial coordinate.
func (v *Volume) Set(value float64, channel int, coord ...int) {
	v.Data[v.index(channel, coord)] = value
}

// Sum returns the sum of every voxel value across all channels.
func (v *Volume) Sum() float64 {
	return floats.Sum(v.Data)
}

// Min returns the smallest voxel value across all channels.
func (v *Volume) Min() float64 {
	return floats.Min(v.Data)
}

// Clone returns a deep copy of the volume.
func (v *Volume) Clone() *Volume {
	return &Volume{
		Data:     append([]float64(nil), v.Data...),
		Channels: v.Channels,
		Shape:    append([]int(nil), v.Shape...),
	}
}

// index converts a channel plus spatial coordinate into a flat offset.
func (v *Volume) index(channel int, coord []int) int {
	if len(coord) != len(v.Shape) {
		panic(fmt.Sprintf("volume: coordinate %v does not match shape %v", coord, v.Shape))
	}
	off := 0
	for d, c := range coord {
		if c < 0 || c >= v.Shape[d] {
			panic(fmt.Sprintf("volume: coordinate %v out of bounds for shape %v", coord, v.Shape))
		}
		off = off*v.Shape[d] + c
	}
	return channel*v.NumVoxels() + off
}

func spatialLen(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, fmt.Errorf("volume: shape must have at least one spatial dimension")
	}
	n := 1
	for d, s := range shape {
		if s < 1 {
			return 0, fmt.Errorf("volume: shape[%d] must be positive, got %d", d, s)
		}
		n *= s
	}
	return n, nil
}
