// Package mask builds binary pixel masks from contour geometry,
// threshold rules or full coverage, and stacks them into volumetric
// regions with index-set access.
package mask

// Selection is an ordered list of flattened pixel indices into the grid
// of its owning image. Indices follow row-major order (index = column +
// row * width); duplicates are kept and order is preserved.
type Selection struct {
	indices []int
	image   *Image
}

// NewSelection wraps the given indices for the image's grid. The slice
// is kept as passed; duplicate or out-of-grid indices are not rejected.
func NewSelection(indices []int, image *Image) *Selection {
	return &Selection{indices: indices, image: image}
}

// Image returns the image whose grid the indices address.
func (s *Selection) Image() *Image {
	return s.image
}

// Len returns the number of indices.
func (s *Selection) Len() int {
	return len(s.indices)
}

// Indices returns a copy of the index list.
func (s *Selection) Indices() []int {
	indices := make([]int, len(s.indices))
	copy(indices, s.indices)
	return indices
}

// Columns returns the column of each index, in index order.
func (s *Selection) Columns() []int {
	width := s.image.Columns()
	columns := make([]int, len(s.indices))
	for i, idx := range s.indices {
		columns[i] = idx % width
	}
	return columns
}

// Rows returns the row of each index, in index order.
func (s *Selection) Rows() []int {
	width := s.image.Columns()
	rows := make([]int, len(s.indices))
	for i, idx := range s.indices {
		rows[i] = idx / width
	}
	return rows
}

// Shift translates every index by the given column and row deltas. No
// bounds are enforced; shifted indices may address virtual positions
// outside the image grid.
func (s *Selection) Shift(deltaCol, deltaRow int) {
	width := s.image.Columns()
	for i, idx := range s.indices {
		col := idx%width + deltaCol
		row := idx/width + deltaRow
		s.indices[i] = col + row*width
	}
}

// ShiftColumns translates every index along the column axis only.
func (s *Selection) ShiftColumns(delta int) {
	s.Shift(delta, 0)
}

// ShiftRows translates every index along the row axis only.
func (s *Selection) ShiftRows(delta int) {
	s.Shift(0, delta)
}

// ShiftAndCrop translates the indices like Shift and re-flattens them
// against a virtual grid narrowed by twice the column delta, modelling
// the removal of a border of |deltaCol| columns and |deltaRow| rows.
// After the call the indices address a grid of width
// image.Columns() - 2*|deltaCol|.
func (s *Selection) ShiftAndCrop(deltaCol, deltaRow int) {
	width := s.image.Columns()
	croppedWidth := width - 2*absInt(deltaCol)
	for i, idx := range s.indices {
		col := idx%width - absInt(deltaCol)
		row := idx/width - absInt(deltaRow)
		s.indices[i] = col + row*croppedWidth
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
