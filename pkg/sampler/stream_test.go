package sampler

import (
	"errors"
	"testing"

	"volpatch/pkg/sample"
)

// TestStreamProducesIndependentPatches verifies that successive draws are
// independent and can land on different windows
func TestStreamProducesIndependentPatches(t *testing.T) {
	// All-foreground label: every window is accepted on the first attempt,
	// so the stream's windows directly reflect the generator's draws.
	label := mustVolume(t, 1, 8, 8)
	intensity := mustVolume(t, 1, 8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			label.Set(1, 0, y, x)
			intensity.Set(float64(y*8+x), 0, y, x)
		}
	}

	s := sample.New()
	s.SetImage("t1", intensity, sample.Intensity)
	s.SetImage("seg", label, sample.Label)

	ls := NewLabelSampler(Params{Generator: NewUniform(99)})
	st := NewStream(ls, s, []int{2, 2})

	origins := make(map[float64]bool)
	for i := 0; i < 50; i++ {
		patch, err := st.Next()
		if err != nil {
			t.Fatalf("Next failed on draw %d: %v", i, err)
		}
		img, ok := patch.Image("t1")
		if !ok {
			t.Fatal("Expected t1 entry in patch")
		}
		// The top-left voxel value identifies the crop origin.
		origins[img.Data.At(0, 0, 0)] = true
	}

	if len(origins) < 2 {
		t.Errorf("Expected multiple distinct windows over 50 draws, got %d", len(origins))
	}
}

// TestStreamPropagatesNoLabel verifies that locator failure surfaces
// through the stream
func TestStreamPropagatesNoLabel(t *testing.T) {
	s := sample.New()
	s.SetImage("t1", mustVolume(t, 1, 4, 4), sample.Intensity)

	st := NewStream(NewLabelSampler(Params{}), s, []int{2, 2})
	if _, err := st.Next(); !errors.Is(err, ErrNoLabel) {
		t.Fatalf("Expected ErrNoLabel, got %v", err)
	}
}

// TestStreamUsableAfterCapFailure verifies that a capped miss does not
// poison the stream
func TestStreamUsableAfterCapFailure(t *testing.T) {
	label := mustVolume(t, 1, 8, 8)
	s := sample.New()
	s.SetImage("seg", label, sample.Label)

	ls := NewLabelSampler(Params{Generator: NewUniform(1), MaxAttempts: 10})
	st := NewStream(ls, s, []int{2, 2})

	if _, err := st.Next(); !errors.Is(err, ErrNoForeground) {
		t.Fatalf("Expected ErrNoForeground on empty label, got %v", err)
	}

	// Add foreground to the shared source; the next draw must succeed.
	label.Set(1, 0, 4, 4)
	if _, err := st.Next(); err != nil {
		t.Fatalf("Expected draw to succeed after foreground appeared, got %v", err)
	}
}
