package models

// ImageSlice carries the pixel-grid geometry of a single 2D image in a
// series. Instances are supplied by the surrounding toolkit; this core
// only reads them.
type ImageSlice struct {
	// Columns is the number of pixels along a row
	Columns int

	// Rows is the number of pixel rows
	Rows int

	// Origin is the physical position of the first (top-left) pixel in mm
	Origin Coordinate

	// ColSpacing is the physical distance between neighboring columns in mm
	ColSpacing float64

	// RowSpacing is the physical distance between neighboring rows in mm
	RowSpacing float64

	// Cosines holds two unit direction vectors: the first three entries
	// point along increasing column index, the last three along
	// increasing row index
	Cosines [6]float64

	// Position is the slice position along the stacking axis in mm
	Position float64
}
