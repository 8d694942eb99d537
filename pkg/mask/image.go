package mask

import (
	"fmt"

	"contours2dvh/internal/models"
)

// Image is one slice's binary pixel mask, bound to the geometry-bearing
// reference slice it was derived from. Pixels are stored row-major; the
// set of true pixels is available as a lazily derived Selection.
type Image struct {
	columns int
	rows    int
	slice   *models.ImageSlice
	bits    []bool

	// version counts mutations so derived views can detect staleness
	version uint64

	cache      []int
	cacheValid bool
}

// NewImage creates an all-false mask for the given reference slice.
func NewImage(slice *models.ImageSlice) (*Image, error) {
	if slice == nil {
		return nil, fmt.Errorf("mask image needs a reference slice")
	}
	if slice.Columns < 1 || slice.Rows < 1 {
		return nil, fmt.Errorf("mask image needs positive dimensions, got %dx%d", slice.Columns, slice.Rows)
	}
	return &Image{
		columns: slice.Columns,
		rows:    slice.Rows,
		slice:   slice,
		bits:    make([]bool, slice.Columns*slice.Rows),
	}, nil
}

// Columns returns the number of pixels along a row.
func (m *Image) Columns() int {
	return m.columns
}

// Rows returns the number of pixel rows.
func (m *Image) Rows() int {
	return m.rows
}

// Slice returns the reference slice the mask is bound to.
func (m *Image) Slice() *models.ImageSlice {
	return m.slice
}

// Position returns the reference slice's position along the stacking
// axis in mm.
func (m *Image) Position() float64 {
	return m.slice.Position
}

// At returns the pixel at the given position. The second result is
// false when the position lies outside the grid.
func (m *Image) At(c, r int) (value, ok bool) {
	if c < 0 || c >= m.columns || r < 0 || r >= m.rows {
		return false, false
	}
	return m.bits[r*m.columns+c], true
}

// Set writes a pixel and reports whether the position was inside the
// grid. Writes outside the grid change nothing.
func (m *Image) Set(c, r int, v bool) bool {
	if c < 0 || c >= m.columns || r < 0 || r >= m.rows {
		return false
	}
	m.bits[r*m.columns+c] = v
	m.touch()
	return true
}

// SetIndex writes the pixel at a flattened row-major index and reports
// whether the index was inside the grid.
func (m *Image) SetIndex(idx int, v bool) bool {
	if idx < 0 || idx >= len(m.bits) {
		return false
	}
	m.bits[idx] = v
	m.touch()
	return true
}

// SetIndices writes the pixels at the given flattened indices and
// returns how many of them were inside the grid.
func (m *Image) SetIndices(indices []int, v bool) int {
	applied := 0
	for _, idx := range indices {
		if idx >= 0 && idx < len(m.bits) {
			m.bits[idx] = v
			applied++
		}
	}
	m.touch()
	return applied
}

// Fill sets every pixel of the mask to the given value.
func (m *Image) Fill(v bool) {
	for i := range m.bits {
		m.bits[i] = v
	}
	m.touch()
}

// TrueCount returns the number of true pixels.
func (m *Image) TrueCount() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// Union merges another mask into this one with a logical OR. The masks
// must share the same grid dimensions.
func (m *Image) Union(other *Image) error {
	if other.columns != m.columns || other.rows != m.rows {
		return fmt.Errorf("%w: %dx%d and %dx%d", ErrDimensionMismatch,
			m.columns, m.rows, other.columns, other.rows)
	}
	for i, b := range other.bits {
		if b {
			m.bits[i] = true
		}
	}
	m.touch()
	return nil
}

// Selection returns the mask's true pixels as an index selection. The
// index scan is memoized and recomputed only after the mask changed.
func (m *Image) Selection() *Selection {
	if !m.cacheValid {
		m.cache = m.cache[:0]
		for idx, b := range m.bits {
			if b {
				m.cache = append(m.cache, idx)
			}
		}
		m.cacheValid = true
	}
	indices := make([]int, len(m.cache))
	copy(indices, m.cache)
	return NewSelection(indices, m)
}

func (m *Image) touch() {
	m.version++
	m.cacheValid = false
}
