package sampler

import (
	"fmt"
	"math/rand"

	"volpatch/pkg/volume"
)

// IndexGenerator proposes candidate crop windows for a patch of the given
// size inside the given spatial extent. Implementations must produce windows
// chosen uniformly over all valid positions so that accepted patches cover
// the volume without spatial bias.
type IndexGenerator interface {
	RandomWindow(extent, size []int) (volume.Window, error)
}

// Uniform draws each window start independently and uniformly from the
// valid range per dimension. It is not safe for concurrent use; give each
// goroutine its own generator.
type Uniform struct {
	rng *rand.Rand
}

// NewUniform returns a generator seeded with the given value.
func NewUniform(seed int64) *Uniform {
	return &Uniform{rng: rand.New(rand.NewSource(seed))}
}

// NewUniformFromRand wraps an existing rand.Rand, useful when the caller
// manages seeding centrally.
func NewUniformFromRand(rng *rand.Rand) *Uniform {
	return &Uniform{rng: rng}
}

// RandomWindow returns a uniformly random window of the given size within
// extent. ErrInvalidPatchSize is returned when the patch cannot fit.
func (u *Uniform) RandomWindow(extent, size []int) (volume.Window, error) {
	if len(size) != len(extent) {
		return volume.Window{}, fmt.Errorf("%w: size %v does not match extent %v",
			ErrInvalidPatchSize, size, extent)
	}
	w := volume.Window{
		Ini: make([]int, len(extent)),
		Fin: make([]int, len(extent)),
	}
	for d := range extent {
		if size[d] < 1 || size[d] > extent[d] {
			return volume.Window{}, fmt.Errorf("%w: size %v within extent %v",
				ErrInvalidPatchSize, size, extent)
		}
		w.Ini[d] = u.rng.Intn(extent[d] - size[d] + 1)
		w.Fin[d] = w.Ini[d] + size[d]
	}
	return w, nil
}
