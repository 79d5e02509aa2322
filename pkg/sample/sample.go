// Package sample provides the container describing one training example: a
// named, ordered collection of image entries (a dense volume plus a type
// tag) and auxiliary entries (opaque metadata). Iteration order is the
// insertion order, so lookups like "the first label entry" are deterministic
// and reproducible across calls.
package sample

import (
	"fmt"

	"volpatch/pkg/volume"
)

// ImageType tags what an image entry's voxels mean.
type ImageType int

const (
	// Intensity marks a scan whose voxels are measured intensities.
	Intensity ImageType = iota

	// Label marks a segmentation map whose voxels encode foreground
	// (positive) versus background (zero) regions.
	Label
)

func (t ImageType) String() string {
	switch t {
	case Intensity:
		return "intensity"
	case Label:
		return "label"
	}
	return fmt.Sprintf("imagetype(%d)", int(t))
}

// Entry is one named member of a sample: either an Image or an Aux.
type Entry interface {
	isEntry()
}

// Image is a sample entry carrying a dense volume and its type tag.
type Image struct {
	Data *volume.Volume
	Type ImageType
}

func (Image) isEntry() {}

// Aux is a sample entry carrying an arbitrary auxiliary payload, opaque to
// the patch-extraction machinery and passed through untouched.
type Aux struct {
	Value any
}

func (Aux) isEntry() {}

// Sample maps unique entry names to entries and remembers insertion order.
type Sample struct {
	names   []string
	entries map[string]Entry
}

// New returns an empty sample.
func New() *Sample {
	return &Sample{entries: make(map[string]Entry)}
}

// Set adds or replaces an entry. A new name is appended to the iteration
// order; replacing an existing name keeps its original position.
func (s *Sample) Set(name string, e Entry) {
	if _, ok := s.entries[name]; !ok {
		s.names = append(s.names, name)
	}
	s.entries[name] = e
}

// SetImage is shorthand for Set with an Image entry.
func (s *Sample) SetImage(name string, data *volume.Volume, typ ImageType) {
	s.Set(name, Image{Data: data, Type: typ})
}

// SetAux is shorthand for Set with an Aux entry.
func (s *Sample) SetAux(name string, value any) {
	s.Set(name, Aux{Value: value})
}

// Get returns the entry stored under name.
func (s *Sample) Get(name string) (Entry, bool) {
	e, ok := s.entries[name]
	return e, ok
}

// Image returns the image entry stored under name, or false when the name
// is absent or holds an aux entry.
func (s *Sample) Image(name string) (Image, bool) {
	img, ok := s.entries[name].(Image)
	return img, ok
}

// Names returns the entry names in insertion order. The returned slice is
// shared; callers must not modify it.
func (s *Sample) Names() []string {
	return s.names
}

// Len returns the number of entries.
func (s *Sample) Len() int {
	return len(s.names)
}

// Each calls fn for every entry in insertion order until fn returns false.
func (s *Sample) Each(fn func(name string, e Entry) bool) {
	for _, name := range s.names {
		if !fn(name, s.entries[name]) {
			return
		}
	}
}
