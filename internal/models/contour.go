package models

import (
	"math"
)

// Coordinate is a point in the patient coordinate system, in millimeters.
// A coordinate is a free value unless it is held by a Contour, in which
// case the contour owns it.
type Coordinate struct {
	// X is the position along the first patient axis in mm
	X float64

	// Y is the position along the second patient axis in mm
	Y float64

	// Z is the position along the stacking axis in mm
	Z float64
}

// Translate shifts the coordinate in place by the given offsets in mm.
func (c *Coordinate) Translate(dx, dy, dz float64) {
	c.X += dx
	c.Y += dy
	c.Z += dz
}

// Distance returns the Euclidean distance to another coordinate in mm.
func (c Coordinate) Distance(other Coordinate) float64 {
	dx := c.X - other.X
	dy := c.Y - other.Y
	dz := c.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Contour is an ordered closed polyline of coordinates delineating a
// region boundary on one slice plane. The last point connects back to
// the first; it is not repeated.
type Contour struct {
	// Points are the polyline vertices in drawing order
	Points []Coordinate

	// Position is the slice position of the contour plane along the
	// stacking axis in mm
	Position float64
}

// NewContour creates a contour from the given vertices, deriving its
// plane position from the first vertex. A contour without vertices gets
// position zero.
func NewContour(points []Coordinate) *Contour {
	position := 0.0
	if len(points) > 0 {
		position = points[0].Z
	}
	return &Contour{Points: points, Position: position}
}

// NewContourAt creates a contour with an explicitly given plane position.
func NewContourAt(points []Coordinate, position float64) *Contour {
	return &Contour{Points: points, Position: position}
}

// Translate shifts every vertex of the contour by the given offsets in
// mm. The plane position follows the z offset.
func (c *Contour) Translate(dx, dy, dz float64) {
	for i := range c.Points {
		c.Points[i].Translate(dx, dy, dz)
	}
	c.Position += dz
}

// ContourSet groups the contours that together delineate one structure.
type ContourSet struct {
	// Name identifies the delineated structure
	Name string

	// Contours are the planar contours of the structure, in no
	// particular order; several contours may share one plane
	Contours []*Contour
}

// GroupByPosition buckets the set's contours by their plane position.
// Contours on the same plane keep their relative order.
func (s *ContourSet) GroupByPosition() map[float64][]*Contour {
	groups := make(map[float64][]*Contour)
	for _, contour := range s.Contours {
		groups[contour.Position] = append(groups[contour.Position], contour)
	}
	return groups
}
