// Package dose computes dose-volume statistics from scalar samples
// gathered inside a masked region.
package dose

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"contours2dvh/internal/models"
	"contours2dvh/pkg/mask"
)

var (
	// ErrFrameMismatch reports a sample grid whose frame count differs
	// from the mask volume's plane count.
	ErrFrameMismatch = errors.New("frame count does not match mask planes")

	// ErrEmpty reports a mask volume with no pixels set, which leaves
	// nothing to sample.
	ErrEmpty = errors.New("mask volume selects no samples")
)

// Distribution holds the scaled dose samples collected inside a masked
// region, sorted ascending. New rejects empty regions, so the
// statistics below never see an empty sample list.
type Distribution struct {
	samples []float64
	volume  *mask.Volume
}

// New samples the grid inside the volume's mask. Frame i of the grid is
// paired with mask plane i by array index, the same positional pairing
// mask.FromThreshold uses, so the caller must keep the two in matching
// order. Every sample is scaled by the grid's scaling factor.
func New(volume *mask.Volume, grid *models.DoseGrid) (*Distribution, error) {
	if volume == nil {
		return nil, fmt.Errorf("no mask volume")
	}
	if grid == nil {
		return nil, fmt.Errorf("no sample grid")
	}
	if grid.NumFrames() != volume.Len() {
		return nil, fmt.Errorf("%w: %d frames for %d mask planes",
			ErrFrameMismatch, grid.NumFrames(), volume.Len())
	}

	var samples []float64
	for i := 0; i < volume.Len(); i++ {
		image := volume.Image(i)
		if grid.Columns != image.Columns() || grid.Rows != image.Rows() {
			return nil, fmt.Errorf("%w: grid is %dx%d, mask plane is %dx%d",
				mask.ErrDimensionMismatch, grid.Columns, grid.Rows, image.Columns(), image.Rows())
		}
		frame := grid.Frames[i]
		if len(frame) != image.Columns()*image.Rows() {
			return nil, fmt.Errorf("%w: frame %d has %d samples for a %dx%d grid",
				mask.ErrDimensionMismatch, i, len(frame), grid.Columns, grid.Rows)
		}

		for _, idx := range image.Selection().Indices() {
			samples = append(samples, frame[idx]*grid.Scaling)
		}
	}
	if len(samples) == 0 {
		return nil, ErrEmpty
	}

	sort.Float64s(samples)
	return &Distribution{samples: samples, volume: volume}, nil
}

// Len returns the number of samples in the distribution.
func (d *Distribution) Len() int {
	return len(d.samples)
}

// Samples returns a copy of the sorted sample list.
func (d *Distribution) Samples() []float64 {
	out := make([]float64, len(d.samples))
	copy(out, d.samples)
	return out
}

// Volume returns the mask volume the samples were drawn from.
func (d *Distribution) Volume() *mask.Volume {
	return d.volume
}

// D returns the minimum dose received by the hottest percent of the
// region, the DVH's D-value: D(2) is near the maximum, D(98) near the
// minimum. Panics when percent is outside [0, 100].
func (d *Distribution) D(percent float64) float64 {
	if percent < 0 || percent > 100 {
		panic("dose: percent out of range [0, 100]")
	}
	top := len(d.samples) - 1
	rank := top - int(math.Round(percent/100*float64(top)))
	return d.samples[rank]
}

// V returns the percentage of the region receiving at least the given
// dose.
func (d *Distribution) V(dose float64) float64 {
	first := sort.SearchFloat64s(d.samples, dose)
	return 100 * float64(len(d.samples)-first) / float64(len(d.samples))
}

// HIndex returns the homogeneity index (D(2) - D(98)) / D(50). Values
// near zero indicate a uniform dose across the region.
func (d *Distribution) HIndex() float64 {
	return (d.D(2) - d.D(98)) / d.D(50)
}

// Min returns the smallest sample.
func (d *Distribution) Min() float64 {
	return d.samples[0]
}

// Max returns the largest sample.
func (d *Distribution) Max() float64 {
	return d.samples[len(d.samples)-1]
}

// Mean returns the arithmetic mean of the samples.
func (d *Distribution) Mean() float64 {
	return stat.Mean(d.samples, nil)
}

// Median returns the middle sample, averaging the two middle samples
// for even counts.
func (d *Distribution) Median() float64 {
	n := len(d.samples)
	if n%2 == 0 {
		return (d.samples[n/2-1] + d.samples[n/2]) / 2
	}
	return d.samples[n/2]
}

// StdDev returns the sample standard deviation.
func (d *Distribution) StdDev() float64 {
	return stat.StdDev(d.samples, nil)
}

// PopStdDev returns the population standard deviation.
func (d *Distribution) PopStdDev() float64 {
	return stat.PopStdDev(d.samples, nil)
}
