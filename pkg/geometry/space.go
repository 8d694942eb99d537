// Package geometry converts between the pixel-index space of an image
// slice and physical patient coordinates in millimeters.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"contours2dvh/internal/models"
)

// ErrInvalidGeometry is reported when an image slice does not describe a
// usable pixel grid.
var ErrInvalidGeometry = errors.New("invalid image geometry")

// cosineTolerance bounds how far the direction cosines may deviate from
// an exact orthonormal pair.
const cosineTolerance = 1e-6

// Space maps pixel indices of one image slice to physical positions and
// back, using the slice's origin, pixel spacing and direction cosines.
type Space struct {
	origin     models.Coordinate
	colDir     []float64
	rowDir     []float64
	colSpacing float64
	rowSpacing float64
	columns    int
	rows       int
}

// NewSpace builds a coordinate space from a slice's geometry. It fails
// if the grid dimensions or spacings are not positive, or if the
// direction cosines do not form an orthonormal pair.
func NewSpace(slice *models.ImageSlice) (*Space, error) {
	if slice == nil {
		return nil, fmt.Errorf("%w: no image slice", ErrInvalidGeometry)
	}
	if slice.Columns < 1 || slice.Rows < 1 {
		return nil, fmt.Errorf("%w: grid is %dx%d", ErrInvalidGeometry, slice.Columns, slice.Rows)
	}
	if slice.ColSpacing <= 0 || slice.RowSpacing <= 0 {
		return nil, fmt.Errorf("%w: spacing is %gx%g", ErrInvalidGeometry, slice.ColSpacing, slice.RowSpacing)
	}

	colDir := []float64{slice.Cosines[0], slice.Cosines[1], slice.Cosines[2]}
	rowDir := []float64{slice.Cosines[3], slice.Cosines[4], slice.Cosines[5]}

	if math.Abs(floats.Norm(colDir, 2)-1) > cosineTolerance {
		return nil, fmt.Errorf("%w: column cosines %v are not unit length", ErrInvalidGeometry, colDir)
	}
	if math.Abs(floats.Norm(rowDir, 2)-1) > cosineTolerance {
		return nil, fmt.Errorf("%w: row cosines %v are not unit length", ErrInvalidGeometry, rowDir)
	}
	if math.Abs(floats.Dot(colDir, rowDir)) > cosineTolerance {
		return nil, fmt.Errorf("%w: direction cosines are not orthogonal", ErrInvalidGeometry)
	}

	return &Space{
		origin:     slice.Origin,
		colDir:     colDir,
		rowDir:     rowDir,
		colSpacing: slice.ColSpacing,
		rowSpacing: slice.RowSpacing,
		columns:    slice.Columns,
		rows:       slice.Rows,
	}, nil
}

// Columns returns the number of pixels along a row.
func (s *Space) Columns() int {
	return s.columns
}

// Rows returns the number of pixel rows.
func (s *Space) Rows() int {
	return s.rows
}

// IndexToPhysical returns the physical position in mm of the pixel at
// the given column and row index. Indices outside the grid are mapped
// the same way, onto the extended plane.
func (s *Space) IndexToPhysical(ci, ri int) models.Coordinate {
	dc := float64(ci) * s.colSpacing
	dr := float64(ri) * s.rowSpacing
	return models.Coordinate{
		X: s.origin.X + dc*s.colDir[0] + dr*s.rowDir[0],
		Y: s.origin.Y + dc*s.colDir[1] + dr*s.rowDir[1],
		Z: s.origin.Z + dc*s.colDir[2] + dr*s.rowDir[2],
	}
}

// PhysicalToIndex returns the nearest pixel index for a physical
// position, projecting the position onto the slice plane. The result is
// not clipped to the grid; callers decide how to treat indices outside
// it.
func (s *Space) PhysicalToIndex(c models.Coordinate) (ci, ri int) {
	rel := []float64{c.X - s.origin.X, c.Y - s.origin.Y, c.Z - s.origin.Z}
	ci = int(math.Round(floats.Dot(rel, s.colDir) / s.colSpacing))
	ri = int(math.Round(floats.Dot(rel, s.rowDir) / s.rowSpacing))
	return ci, ri
}

// Contains reports whether the given pixel index lies inside the grid.
func (s *Space) Contains(ci, ri int) bool {
	return ci >= 0 && ci < s.columns && ri >= 0 && ri < s.rows
}
