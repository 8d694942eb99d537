package mask

import (
	"fmt"
	"math"
	"runtime"
	"sort"

	"contours2dvh/internal/models"
	"contours2dvh/pkg/geometry"
	"contours2dvh/pkg/raster"
)

// ProgressCallback is a function that reports progress during volume
// construction.
type ProgressCallback func(completed, total int, message string)

// BuildOption adjusts how a volume is constructed.
type BuildOption func(*buildOptions)

type buildOptions struct {
	workers  int
	progress ProgressCallback
}

// WithWorkers sets how many slices are rasterized concurrently. The
// default is the number of CPUs.
func WithWorkers(n int) BuildOption {
	return func(o *buildOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithProgress installs a callback invoked once per contour plane,
// including planes skipped for lack of a reference image.
func WithProgress(cb ProgressCallback) BuildOption {
	return func(o *buildOptions) {
		o.progress = cb
	}
}

func newBuildOptions(opts []BuildOption) buildOptions {
	options := buildOptions{workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

func (o *buildOptions) report(completed, total int, message string) {
	if o.progress != nil {
		o.progress(completed, total, message)
	}
}

// FromContourSet rasterizes a contour set against a reference image
// series into a volume. Contours are grouped by plane position and each
// group is matched to the reference image at exactly that position;
// groups without a matching image are skipped and counted, which the
// volume reports through Missed. On a slice with several contours the
// mask is the union of the per-contour interiors; an inner "hole"
// contour is not subtracted.
//
// Each plane is rasterized independently on its own grid, in parallel.
func FromContourSet(set *models.ContourSet, series []*models.ImageSlice, opts ...BuildOption) (*Volume, error) {
	if set == nil {
		return nil, fmt.Errorf("no contour set")
	}
	if err := checkSeries(series); err != nil {
		return nil, err
	}
	options := newBuildOptions(opts)

	byPosition := make(map[float64]*models.ImageSlice, len(series))
	for _, slice := range series {
		if _, taken := byPosition[slice.Position]; !taken {
			byPosition[slice.Position] = slice
		}
	}

	groups := set.GroupByPosition()
	positions := make([]float64, 0, len(groups))
	for position := range groups {
		positions = append(positions, position)
	}
	sort.Float64s(positions)

	type task struct {
		position float64
		contours []*models.Contour
		slice    *models.ImageSlice
	}

	total := len(positions)
	completed := 0
	missed := 0
	var tasks []task
	for _, position := range positions {
		slice, ok := byPosition[position]
		if !ok {
			missed++
			completed++
			options.report(completed, total, fmt.Sprintf("no reference image at position %g mm", position))
			continue
		}
		tasks = append(tasks, task{position: position, contours: groups[position], slice: slice})
	}

	type sliceResult struct {
		order int
		image *Image
		err   error
	}

	workers := options.workers
	if workers > len(tasks) {
		workers = len(tasks)
	}
	jobs := make(chan int)
	results := make(chan sliceResult, len(tasks))

	for w := 0; w < workers; w++ {
		go func() {
			for i := range jobs {
				image, err := rasterizePlane(tasks[i].slice, tasks[i].contours)
				results <- sliceResult{order: i, image: image, err: err}
			}
		}()
	}
	go func() {
		for i := range tasks {
			jobs <- i
		}
		close(jobs)
	}()

	// Collect in completion order, store in plane order. The positions
	// were sorted, so the assembled volume is already ascending.
	images := make([]*Image, len(tasks))
	for range tasks {
		res := <-results
		if res.err != nil {
			return nil, fmt.Errorf("rasterizing plane at %g mm: %w", tasks[res.order].position, res.err)
		}
		images[res.order] = res.image
		completed++
		options.report(completed, total, fmt.Sprintf("rasterized %d contour(s) at position %g mm",
			len(tasks[res.order].contours), tasks[res.order].position))
	}

	volume, err := NewVolume(images, ContourSource)
	if err != nil {
		return nil, err
	}
	volume.contours = set
	volume.missed = missed
	return volume, nil
}

// rasterizePlane builds the mask for one slice from the contours on its
// plane. Every contour gets a fresh grid; the interiors are merged.
func rasterizePlane(slice *models.ImageSlice, contours []*models.Contour) (*Image, error) {
	space, err := geometry.NewSpace(slice)
	if err != nil {
		return nil, err
	}
	image, err := NewImage(slice)
	if err != nil {
		return nil, err
	}

	for _, contour := range contours {
		vertices := make([]raster.Pixel, len(contour.Points))
		for i, point := range contour.Points {
			ci, ri := space.PhysicalToIndex(point)
			vertices[i] = raster.Pixel{Column: ci, Row: ri}
		}

		grid, err := raster.NewGrid(slice.Columns, slice.Rows)
		if err != nil {
			return nil, err
		}
		result, err := grid.FillContour(vertices)
		if err != nil {
			return nil, err
		}
		image.SetIndices(result.Indices, true)
	}
	return image, nil
}

// FromThreshold marks every pixel whose scaled sample value lies within
// [min, max]; a nil bound leaves that side open, but at least one bound
// is required. Frames are paired with reference slices by array index,
// not by position, unlike the contour mode's position-keyed lookup; the
// caller must supply series and grid in matching order.
func FromThreshold(grid *models.DoseGrid, series []*models.ImageSlice, min, max *float64) (*Volume, error) {
	if grid == nil {
		return nil, fmt.Errorf("no sample grid")
	}
	if err := checkSeries(series); err != nil {
		return nil, err
	}
	if min == nil && max == nil {
		return nil, ErrNoThresholdBound
	}
	if grid.NumFrames() != len(series) {
		return nil, fmt.Errorf("%w: %d frames for %d slices", ErrFrameMismatch, grid.NumFrames(), len(series))
	}

	lo := math.Inf(-1)
	if min != nil {
		lo = *min
	}
	hi := math.Inf(1)
	if max != nil {
		hi = *max
	}

	images := make([]*Image, len(series))
	for i, slice := range series {
		if grid.Columns != slice.Columns || grid.Rows != slice.Rows {
			return nil, fmt.Errorf("%w: grid is %dx%d, slice is %dx%d", ErrDimensionMismatch,
				grid.Columns, grid.Rows, slice.Columns, slice.Rows)
		}
		frame := grid.Frames[i]
		if len(frame) != slice.Columns*slice.Rows {
			return nil, fmt.Errorf("%w: frame %d has %d samples for a %dx%d grid", ErrDimensionMismatch,
				i, len(frame), slice.Columns, slice.Rows)
		}

		image, err := NewImage(slice)
		if err != nil {
			return nil, err
		}
		for idx, raw := range frame {
			value := raw * grid.Scaling
			if value >= lo && value <= hi {
				image.SetIndex(idx, true)
			}
		}
		images[i] = image
	}

	volume, err := NewVolume(images, ThresholdSource)
	if err != nil {
		return nil, err
	}
	volume.threshold = copyThreshold(min, max)
	volume.Sort()
	return volume, nil
}

// FromFullCoverage marks every pixel of every reference image true.
func FromFullCoverage(series []*models.ImageSlice) (*Volume, error) {
	if err := checkSeries(series); err != nil {
		return nil, err
	}

	images := make([]*Image, len(series))
	for i, slice := range series {
		image, err := NewImage(slice)
		if err != nil {
			return nil, err
		}
		image.Fill(true)
		images[i] = image
	}

	volume, err := NewVolume(images, WholeVolumeSource)
	if err != nil {
		return nil, err
	}
	volume.Sort()
	return volume, nil
}

// checkSeries rejects an empty series or one mixing grid dimensions.
func checkSeries(series []*models.ImageSlice) error {
	if len(series) == 0 {
		return fmt.Errorf("no reference series")
	}
	for _, slice := range series[1:] {
		if slice.Columns != series[0].Columns || slice.Rows != series[0].Rows {
			return fmt.Errorf("%w: series mixes %dx%d and %dx%d grids", ErrDimensionMismatch,
				series[0].Columns, series[0].Rows, slice.Columns, slice.Rows)
		}
	}
	return nil
}

func copyThreshold(min, max *float64) *ThresholdRange {
	bounds := &ThresholdRange{}
	if min != nil {
		v := *min
		bounds.Min = &v
	}
	if max != nil {
		v := *max
		bounds.Max = &v
	}
	return bounds
}
