package mask

import (
	"errors"
	"fmt"
	"sort"

	"contours2dvh/internal/models"
)

var (
	// ErrDimensionMismatch is reported when masks or series of unequal
	// grid dimensions are combined.
	ErrDimensionMismatch = errors.New("grid dimensions do not match")

	// ErrNoThresholdBound is reported when a threshold volume is
	// requested without a lower or upper bound.
	ErrNoThresholdBound = errors.New("threshold needs at least one bound")

	// ErrBadPermutation is reported when a reordering permutation does
	// not cover every image exactly once.
	ErrBadPermutation = errors.New("invalid permutation")

	// ErrFrameMismatch is reported when a sample grid and a reference
	// series disagree on the number of slices.
	ErrFrameMismatch = errors.New("frame and slice counts differ")
)

// Provenance identifies how a volume's masks were produced.
type Provenance int

const (
	// ContourSource marks a volume rasterized from a contour set
	ContourSource Provenance = iota

	// ThresholdSource marks a volume derived from a sample threshold
	ThresholdSource

	// WholeVolumeSource marks a full-coverage volume
	WholeVolumeSource
)

// ThresholdRange records the bounds a threshold volume was built from.
// A nil bound means that side was open.
type ThresholdRange struct {
	Min *float64
	Max *float64
}

// Volume is an ordered stack of slice masks forming a 3D binary region.
// The image sequence is the primary storage; the stacked 3D view is
// derived on demand and cached.
//
// Overlap, Sensitivity and Specificity are free-form comparison scores.
// The volume never computes them itself; Compare does, and callers
// assign them.
type Volume struct {
	Overlap     float64
	Sensitivity float64
	Specificity float64

	images     []*Image
	provenance Provenance
	contours   *models.ContourSet
	threshold  *ThresholdRange
	missed     int

	// structure counts reorderings so the stacked cache can detect them
	structure uint64

	stack        []bool
	stackVersion uint64
	stackValid   bool
}

// NewVolume assembles a volume from slice masks. All masks must share
// the same grid dimensions; an empty volume is allowed.
func NewVolume(images []*Image, provenance Provenance) (*Volume, error) {
	for i := 1; i < len(images); i++ {
		if images[i].columns != images[0].columns || images[i].rows != images[0].rows {
			return nil, fmt.Errorf("%w: volume mixes %dx%d and %dx%d masks", ErrDimensionMismatch,
				images[0].columns, images[0].rows, images[i].columns, images[i].rows)
		}
	}
	return &Volume{images: images, provenance: provenance}, nil
}

// Len returns the number of slice masks.
func (v *Volume) Len() int {
	return len(v.images)
}

// Image returns the slice mask at position i.
func (v *Volume) Image(i int) *Image {
	return v.images[i]
}

// Images returns the slice masks in their current order.
func (v *Volume) Images() []*Image {
	images := make([]*Image, len(v.images))
	copy(images, v.images)
	return images
}

// Provenance returns how the volume was produced.
func (v *Volume) Provenance() Provenance {
	return v.provenance
}

// ContourSet returns the contour set a contour volume was rasterized
// from, or nil for other provenances.
func (v *Volume) ContourSet() *models.ContourSet {
	return v.contours
}

// Threshold returns the bounds a threshold volume was built from, or
// nil for other provenances.
func (v *Volume) Threshold() *ThresholdRange {
	return v.threshold
}

// Missed returns the number of contour planes that had no reference
// image at their position and were skipped during construction.
func (v *Volume) Missed() int {
	return v.missed
}

// Columns returns the shared mask width, or 0 for an empty volume.
func (v *Volume) Columns() int {
	if len(v.images) == 0 {
		return 0
	}
	return v.images[0].columns
}

// Rows returns the shared mask height, or 0 for an empty volume.
func (v *Volume) Rows() int {
	if len(v.images) == 0 {
		return 0
	}
	return v.images[0].rows
}

// Sort orders the slice masks ascending by their slice position.
func (v *Volume) Sort() {
	sort.SliceStable(v.images, func(i, j int) bool {
		return v.images[i].Position() < v.images[j].Position()
	})
	v.structure++
}

// Reorder rearranges the slice masks so that the mask currently at
// position perm[i] moves to position i. The permutation must cover
// every position exactly once.
func (v *Volume) Reorder(perm []int) error {
	if len(perm) != len(v.images) {
		return fmt.Errorf("%w: %d entries for %d masks", ErrBadPermutation, len(perm), len(v.images))
	}
	seen := make([]bool, len(v.images))
	for _, p := range perm {
		if p < 0 || p >= len(v.images) || seen[p] {
			return fmt.Errorf("%w: entry %d", ErrBadPermutation, p)
		}
		seen[p] = true
	}

	reordered := make([]*Image, len(v.images))
	for i, p := range perm {
		reordered[i] = v.images[p]
	}
	v.images = reordered
	v.structure++
	return nil
}

// Stacked returns the volume as one flattened 3D array in frame, row,
// column order, together with its dimensions. The array is cached and
// rebuilt only after a mask mutation or a reordering; treat it as
// read-only.
func (v *Volume) Stacked() (data []bool, columns, rows, frames int) {
	version := v.currentVersion()
	if !v.stackValid || v.stackVersion != version {
		size := v.Columns() * v.Rows()
		v.stack = make([]bool, size*len(v.images))
		for f, img := range v.images {
			copy(v.stack[f*size:(f+1)*size], img.bits)
		}
		v.stackVersion = version
		v.stackValid = true
	}
	return v.stack, v.Columns(), v.Rows(), len(v.images)
}

func (v *Volume) currentVersion() uint64 {
	version := v.structure
	for _, img := range v.images {
		version += img.version
	}
	return version
}
