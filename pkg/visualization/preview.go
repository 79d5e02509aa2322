// Package visualization writes JPEG previews of extracted patches so that
// sampling behavior can be inspected visually: one grayscale image per image
// entry, taken from the patch's middle slice.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"

	"volpatch/pkg/sample"
	"volpatch/pkg/volume"
)

// Previewer saves patch previews under a base directory.
type Previewer struct {
	// dir is the base directory for preview images
	dir string
}

// NewPreviewer creates a previewer writing into the given directory.
func NewPreviewer(dir string) *Previewer {
	return &Previewer{dir: dir}
}

// SavePatch writes one JPEG per image entry of the patch, named
// <entry>_<index>.jpg. Channel 0 of each entry is rendered; for 3-D patches
// the middle slice along the first spatial dimension is shown.
func (p *Previewer) SavePatch(patch *sample.Sample, index int) error {
	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return fmt.Errorf("failed to create preview directory: %w", err)
	}

	var saveErr error
	patch.Each(func(name string, e sample.Entry) bool {
		img, ok := e.(sample.Image)
		if !ok {
			return true
		}
		rendered, err := renderMidSlice(img.Data)
		if err != nil {
			saveErr = fmt.Errorf("entry %q: %w", name, err)
			return false
		}
		filename := filepath.Join(p.dir, fmt.Sprintf("%s_%03d.jpg", name, index))
		if err := saveJPEG(filename, rendered); err != nil {
			saveErr = err
			return false
		}
		return true
	})
	return saveErr
}

// renderMidSlice converts channel 0 of a 2-D or 3-D volume into a
// grayscale image, normalizing values to the full 16-bit range.
func renderMidSlice(v *volume.Volume) (image.Image, error) {
	var width, height int
	var at func(y, x int) float64

	switch v.Dims() {
	case 2:
		height, width = v.Shape[0], v.Shape[1]
		at = func(y, x int) float64 { return v.At(0, y, x) }
	case 3:
		mid := v.Shape[0] / 2
		height, width = v.Shape[1], v.Shape[2]
		at = func(y, x int) float64 { return v.At(0, mid, y, x) }
	default:
		return nil, fmt.Errorf("previews support 2-D and 3-D patches, got %d dimensions", v.Dims())
	}

	// Normalize to the observed value range so labels (small integers) and
	// intensities render visibly.
	lo, hi := at(0, 0), at(0, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			val := at(y, x)
			if val < lo {
				lo = val
			}
			if val > hi {
				hi = val
			}
		}
	}
	scale := 0.0
	if hi > lo {
		scale = 65535.0 / (hi - lo)
	}

	img := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray16(x, y, color.Gray16{Y: uint16((at(y, x) - lo) * scale)})
		}
	}
	return img, nil
}

func saveJPEG(filename string, img image.Image) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create preview file: %w", err)
	}
	defer file.Close()

	if err := jpeg.Encode(file, img, &jpeg.Options{Quality: 90}); err != nil {
		return fmt.Errorf("failed to encode preview: %w", err)
	}
	return nil
}
