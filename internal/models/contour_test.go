package models

import (
	"testing"
)

// TestCoordinateTranslate verifies in-place translation of a coordinate
func TestCoordinateTranslate(t *testing.T) {
	c := Coordinate{X: 1.0, Y: -2.0, Z: 3.5}
	c.Translate(0.5, 2.0, -3.5)

	if c.X != 1.5 || c.Y != 0.0 || c.Z != 0.0 {
		t.Errorf("Expected (1.5, 0.0, 0.0), got (%v, %v, %v)", c.X, c.Y, c.Z)
	}
}

// TestCoordinateDistance verifies the Euclidean distance between coordinates
func TestCoordinateDistance(t *testing.T) {
	a := Coordinate{X: 0, Y: 0, Z: 0}
	b := Coordinate{X: 3, Y: 4, Z: 0}

	if d := a.Distance(b); d != 5.0 {
		t.Errorf("Expected distance 5.0, got %v", d)
	}

	if d := a.Distance(a); d != 0.0 {
		t.Errorf("Expected zero distance to self, got %v", d)
	}
}

// TestNewContour verifies that the plane position is derived from the
// first vertex
func TestNewContour(t *testing.T) {
	points := []Coordinate{
		{X: 0, Y: 0, Z: 12.5},
		{X: 10, Y: 0, Z: 12.5},
		{X: 10, Y: 10, Z: 12.5},
	}

	contour := NewContour(points)
	if contour.Position != 12.5 {
		t.Errorf("Expected position 12.5, got %v", contour.Position)
	}

	empty := NewContour(nil)
	if empty.Position != 0.0 {
		t.Errorf("Expected position 0.0 for empty contour, got %v", empty.Position)
	}

	at := NewContourAt(points, -4.0)
	if at.Position != -4.0 {
		t.Errorf("Expected explicit position -4.0, got %v", at.Position)
	}
}

// TestContourTranslate verifies that translation moves every vertex and
// the plane position
func TestContourTranslate(t *testing.T) {
	contour := NewContour([]Coordinate{
		{X: 1, Y: 2, Z: 3},
		{X: 4, Y: 5, Z: 3},
		{X: 1, Y: 5, Z: 3},
	})

	contour.Translate(1.0, -1.0, 2.0)

	if contour.Position != 5.0 {
		t.Errorf("Expected position 5.0 after translation, got %v", contour.Position)
	}

	expected := []Coordinate{
		{X: 2, Y: 1, Z: 5},
		{X: 5, Y: 4, Z: 5},
		{X: 2, Y: 4, Z: 5},
	}
	for i, p := range contour.Points {
		if p != expected[i] {
			t.Errorf("Point %d: expected %v, got %v", i, expected[i], p)
		}
	}
}

// TestGroupByPosition verifies that contours are bucketed by plane and
// keep their relative order within a bucket
func TestGroupByPosition(t *testing.T) {
	a := NewContourAt(nil, 0.0)
	b := NewContourAt(nil, 2.5)
	c := NewContourAt(nil, 0.0)

	set := &ContourSet{Name: "target", Contours: []*Contour{a, b, c}}
	groups := set.GroupByPosition()

	if len(groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(groups))
	}

	if len(groups[0.0]) != 2 || groups[0.0][0] != a || groups[0.0][1] != c {
		t.Errorf("Group at 0.0 should hold contours a and c in order")
	}

	if len(groups[2.5]) != 1 || groups[2.5][0] != b {
		t.Errorf("Group at 2.5 should hold contour b")
	}
}

// TestDoseGridScaling verifies scaled sample access
func TestDoseGridScaling(t *testing.T) {
	grid := &DoseGrid{
		Columns: 2,
		Rows:    1,
		Scaling: 0.5,
		Frames:  [][]float64{{2, 4}, {6, 8}},
	}

	if n := grid.NumFrames(); n != 2 {
		t.Errorf("Expected 2 frames, got %d", n)
	}

	if v := grid.ScaledValue(1, 0); v != 3.0 {
		t.Errorf("Expected scaled value 3.0, got %v", v)
	}

	scaled := grid.ScaledFrame(0)
	if len(scaled) != 2 || scaled[0] != 1.0 || scaled[1] != 2.0 {
		t.Errorf("Expected scaled frame [1 2], got %v", scaled)
	}

	// The original frame must stay untouched.
	if grid.Frames[0][0] != 2 {
		t.Errorf("ScaledFrame should not modify the grid, got %v", grid.Frames[0][0])
	}
}
