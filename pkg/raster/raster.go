// Package raster draws closed polylines onto pixel grids and extracts
// the enclosed region with a scanline flood fill. All grid access is
// bounds checked: writes outside the grid are counted instead of
// applied, and neighbor probes beyond an edge report no neighbor.
package raster

import (
	"errors"
	"fmt"
)

// Cell is the classification of one grid pixel during rasterization.
type Cell uint8

const (
	// Background marks a pixel no operation has touched
	Background Cell = iota

	// Boundary marks a pixel written by line drawing
	Boundary

	// Fill marks a pixel reached by the flood fill
	Fill
)

// ErrDegenerateContour is reported when a polyline has too few vertices
// to enclose anything.
var ErrDegenerateContour = errors.New("contour needs at least 3 vertices")

// Pixel is a grid position in column, row order.
type Pixel struct {
	Column int
	Row    int
}

// Grid is a rectangular field of cells addressed by column and row.
type Grid struct {
	columns int
	rows    int
	cells   []Cell
}

// NewGrid creates a grid of the given dimensions with every cell set to
// Background.
func NewGrid(columns, rows int) (*Grid, error) {
	if columns < 1 || rows < 1 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", columns, rows)
	}
	return &Grid{
		columns: columns,
		rows:    rows,
		cells:   make([]Cell, columns*rows),
	}, nil
}

// Columns returns the number of cells along a row.
func (g *Grid) Columns() int {
	return g.columns
}

// Rows returns the number of cell rows.
func (g *Grid) Rows() int {
	return g.rows
}

// At returns the cell at the given position. The second result is false
// when the position lies outside the grid.
func (g *Grid) At(c, r int) (Cell, bool) {
	if c < 0 || c >= g.columns || r < 0 || r >= g.rows {
		return Background, false
	}
	return g.cells[r*g.columns+c], true
}

// Set writes a cell value and reports whether the position was inside
// the grid. Writes outside the grid change nothing.
func (g *Grid) Set(c, r int, v Cell) bool {
	if c < 0 || c >= g.columns || r < 0 || r >= g.rows {
		return false
	}
	g.cells[r*g.columns+c] = v
	return true
}

// Count returns the number of cells holding the given value.
func (g *Grid) Count(v Cell) int {
	n := 0
	for _, cell := range g.cells {
		if cell == v {
			n++
		}
	}
	return n
}

// DrawLine writes v along the integer line between two pixels using an
// error-accumulator walk. Pixels falling outside the grid are skipped;
// the clipped result counts them.
func (g *Grid) DrawLine(c0, r0, c1, r1 int, v Cell) (written, clipped int) {
	dc := abs(c1 - c0)
	dr := abs(r1 - r0)

	sc := 1
	if c0 > c1 {
		sc = -1
	}
	sr := 1
	if r0 > r1 {
		sr = -1
	}

	err := dc - dr
	for {
		if g.Set(c0, r0, v) {
			written++
		} else {
			clipped++
		}
		if c0 == c1 && r0 == r1 {
			break
		}
		e2 := 2 * err
		if e2 > -dr {
			err -= dr
			c0 += sc
		}
		if e2 < dc {
			err += dc
			r0 += sr
		}
	}
	return written, clipped
}

// FloodFill replaces the connected area of target cells around the seed
// with the fill value, scanning row runs and probing the rows above and
// below each run. A seed outside the grid, a seed not holding the
// target value, or equal target and fill values fill nothing. Returns
// the number of filled cells.
func (g *Grid) FloodFill(seedC, seedR int, target, fill Cell) int {
	if target == fill {
		return 0
	}
	if cell, ok := g.At(seedC, seedR); !ok || cell != target {
		return 0
	}

	queue := []Pixel{{seedC, seedR}}
	filled := 0

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		if cell, ok := g.At(p.Column, p.Row); !ok || cell != target {
			continue
		}

		// Expand the run of target cells around the popped pixel.
		west := p.Column
		for {
			if cell, ok := g.At(west-1, p.Row); !ok || cell != target {
				break
			}
			west--
		}
		east := p.Column
		for {
			if cell, ok := g.At(east+1, p.Row); !ok || cell != target {
				break
			}
			east++
		}

		for c := west; c <= east; c++ {
			g.Set(c, p.Row, fill)
			filled++

			if cell, ok := g.At(c, p.Row-1); ok && cell == target {
				queue = append(queue, Pixel{c, p.Row - 1})
			}
			if cell, ok := g.At(c, p.Row+1); ok && cell == target {
				queue = append(queue, Pixel{c, p.Row + 1})
			}
		}
	}
	return filled
}

// FillResult describes the region a contour enclosed on a grid.
type FillResult struct {
	// Indices are the region's pixels as flattened row-major indices in
	// ascending order
	Indices []int

	// Inverted reports that the flood fill escaped to the grid corner
	// and the region was recovered as the untouched pixels instead
	Inverted bool

	// Clipped counts boundary pixels that fell outside the grid
	Clipped int
}

// FillContour draws the closed polyline through the given vertices and
// returns the pixels of the enclosed region. The fill is seeded at the
// truncated mean of the drawn boundary pixels, which may fall outside
// a concave contour; if the fill then escapes to the grid corner, the
// untouched pixels are taken as the region instead. This requires the
// (0, 0) corner cell to never belong to the true region.
//
// The grid must hold only Background cells; one grid serves one contour.
func (g *Grid) FillContour(vertices []Pixel) (*FillResult, error) {
	if len(vertices) < 3 {
		return nil, fmt.Errorf("%w, got %d", ErrDegenerateContour, len(vertices))
	}

	result := &FillResult{}

	for i, p := range vertices {
		next := vertices[(i+1)%len(vertices)]
		_, clipped := g.DrawLine(p.Column, p.Row, next.Column, next.Row, Boundary)
		result.Clipped += clipped
	}

	// The seed is the truncated mean of the drawn boundary pixels, so
	// it stays on the grid however far the vertices reach beyond it. A
	// fully clipped contour leaves no boundary and fills nothing.
	sumC, sumR, drawn := 0, 0, 0
	for idx, cell := range g.cells {
		if cell != Boundary {
			continue
		}
		sumC += idx % g.columns
		sumR += idx / g.columns
		drawn++
	}
	if drawn > 0 {
		g.FloodFill(sumC/drawn, sumR/drawn, Background, Fill)
	}

	corner, _ := g.At(0, 0)
	result.Inverted = corner == Fill

	// Scanning the backing array in order yields ascending indices.
	for idx, cell := range g.cells {
		if result.Inverted {
			if cell == Background {
				result.Indices = append(result.Indices, idx)
			}
		} else if cell == Boundary || cell == Fill {
			result.Indices = append(result.Indices, idx)
		}
	}

	return result, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
