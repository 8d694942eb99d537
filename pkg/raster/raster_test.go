package raster

import (
	"errors"
	"testing"
)

// mustGrid builds a grid or stops the test
func mustGrid(t *testing.T, columns, rows int) *Grid {
	t.Helper()
	g, err := NewGrid(columns, rows)
	if err != nil {
		t.Fatalf("Failed to create %dx%d grid: %v", columns, rows, err)
	}
	return g
}

// contains reports whether idx is present in indices
func contains(indices []int, idx int) bool {
	for _, i := range indices {
		if i == idx {
			return true
		}
	}
	return false
}

// TestNewGridValidation verifies that degenerate dimensions are rejected
func TestNewGridValidation(t *testing.T) {
	testCases := []struct {
		columns, rows int
		valid         bool
	}{
		{10, 10, true},
		{1, 1, true},
		{0, 10, false},
		{10, 0, false},
		{-1, 10, false},
	}

	for _, tc := range testCases {
		_, err := NewGrid(tc.columns, tc.rows)
		if tc.valid && err != nil {
			t.Errorf("NewGrid(%d, %d): expected success, got %v", tc.columns, tc.rows, err)
		}
		if !tc.valid && err == nil {
			t.Errorf("NewGrid(%d, %d): expected error, got nil", tc.columns, tc.rows)
		}
	}
}

// TestAtSetBounds verifies that out-of-grid access is reported, not applied
func TestAtSetBounds(t *testing.T) {
	g := mustGrid(t, 4, 3)

	if ok := g.Set(2, 1, Boundary); !ok {
		t.Error("Expected in-grid write to succeed")
	}
	if cell, ok := g.At(2, 1); !ok || cell != Boundary {
		t.Errorf("Expected Boundary at (2, 1), got %v (ok=%v)", cell, ok)
	}

	outside := []Pixel{{-1, 0}, {0, -1}, {4, 0}, {0, 3}}
	for _, p := range outside {
		if ok := g.Set(p.Column, p.Row, Fill); ok {
			t.Errorf("Set(%d, %d) outside the grid should report false", p.Column, p.Row)
		}
		if _, ok := g.At(p.Column, p.Row); ok {
			t.Errorf("At(%d, %d) outside the grid should report false", p.Column, p.Row)
		}
	}

	// Nothing but the one in-grid write may have landed.
	if n := g.Count(Boundary) + g.Count(Fill); n != 1 {
		t.Errorf("Expected exactly 1 non-background cell, got %d", n)
	}
}

// TestDrawLine verifies written cells for straight and diagonal lines
func TestDrawLine(t *testing.T) {
	testCases := []struct {
		name           string
		c0, r0, c1, r1 int
		expected       []Pixel
	}{
		{"horizontal", 1, 2, 4, 2, []Pixel{{1, 2}, {2, 2}, {3, 2}, {4, 2}}},
		{"vertical", 3, 0, 3, 3, []Pixel{{3, 0}, {3, 1}, {3, 2}, {3, 3}}},
		{"diagonal", 0, 0, 3, 3, []Pixel{{0, 0}, {1, 1}, {2, 2}, {3, 3}}},
		{"reversed", 4, 2, 1, 2, []Pixel{{4, 2}, {3, 2}, {2, 2}, {1, 2}}},
		{"point", 2, 2, 2, 2, []Pixel{{2, 2}}},
	}

	for _, tc := range testCases {
		g := mustGrid(t, 6, 6)
		written, clipped := g.DrawLine(tc.c0, tc.r0, tc.c1, tc.r1, Boundary)

		if written != len(tc.expected) {
			t.Errorf("%s: expected %d written pixels, got %d", tc.name, len(tc.expected), written)
		}
		if clipped != 0 {
			t.Errorf("%s: expected no clipped pixels, got %d", tc.name, clipped)
		}
		for _, p := range tc.expected {
			if cell, _ := g.At(p.Column, p.Row); cell != Boundary {
				t.Errorf("%s: expected Boundary at (%d, %d)", tc.name, p.Column, p.Row)
			}
		}
		if g.Count(Boundary) != len(tc.expected) {
			t.Errorf("%s: expected %d boundary cells, got %d", tc.name, len(tc.expected), g.Count(Boundary))
		}
	}
}

// TestDrawLineClipped verifies that out-of-grid pixels are counted, not drawn
func TestDrawLineClipped(t *testing.T) {
	g := mustGrid(t, 4, 4)

	written, clipped := g.DrawLine(-2, 0, 3, 0, Boundary)
	if written != 4 {
		t.Errorf("Expected 4 written pixels, got %d", written)
	}
	if clipped != 2 {
		t.Errorf("Expected 2 clipped pixels, got %d", clipped)
	}
	if g.Count(Boundary) != 4 {
		t.Errorf("Expected 4 boundary cells, got %d", g.Count(Boundary))
	}
}

// TestFloodFill verifies the scanline fill inside a drawn rectangle
func TestFloodFill(t *testing.T) {
	g := mustGrid(t, 6, 6)
	corners := []Pixel{{1, 1}, {4, 1}, {4, 4}, {1, 4}}
	for i, p := range corners {
		next := corners[(i+1)%len(corners)]
		g.DrawLine(p.Column, p.Row, next.Column, next.Row, Boundary)
	}

	filled := g.FloodFill(2, 2, Background, Fill)
	if filled != 4 {
		t.Errorf("Expected 4 filled cells, got %d", filled)
	}
	for _, p := range []Pixel{{2, 2}, {3, 2}, {2, 3}, {3, 3}} {
		if cell, _ := g.At(p.Column, p.Row); cell != Fill {
			t.Errorf("Expected Fill at (%d, %d), got %v", p.Column, p.Row, cell)
		}
	}

	// The exterior stays untouched.
	if cell, _ := g.At(0, 0); cell != Background {
		t.Error("Fill leaked outside the rectangle")
	}
}

// TestFloodFillSeedHandling verifies the no-op seed conditions
func TestFloodFillSeedHandling(t *testing.T) {
	g := mustGrid(t, 4, 4)
	g.Set(1, 1, Boundary)

	if n := g.FloodFill(-1, 0, Background, Fill); n != 0 {
		t.Errorf("Out-of-grid seed should fill nothing, got %d", n)
	}
	if n := g.FloodFill(1, 1, Background, Fill); n != 0 {
		t.Errorf("Seed on a boundary cell should fill nothing, got %d", n)
	}
	if n := g.FloodFill(0, 0, Background, Background); n != 0 {
		t.Errorf("Equal target and fill should fill nothing, got %d", n)
	}
}

// TestFloodFillAtEdges verifies that probes beyond the grid edge are
// treated as missing neighbors
func TestFloodFillAtEdges(t *testing.T) {
	g := mustGrid(t, 3, 3)

	filled := g.FloodFill(0, 0, Background, Fill)
	if filled != 9 {
		t.Errorf("Expected the whole 3x3 grid filled, got %d", filled)
	}
}

// TestFillContourSquare verifies the interior of an axis-aligned square:
// the region must cover the boundary plus the enclosed pixels
func TestFillContourSquare(t *testing.T) {
	g := mustGrid(t, 10, 10)
	square := []Pixel{{2, 2}, {7, 2}, {7, 7}, {2, 7}}

	result, err := g.FillContour(square)
	if err != nil {
		t.Fatalf("Failed to fill square contour: %v", err)
	}

	if result.Inverted {
		t.Error("Square fill should not invert")
	}
	if result.Clipped != 0 {
		t.Errorf("Expected no clipped pixels, got %d", result.Clipped)
	}
	if len(result.Indices) != 36 {
		t.Errorf("Expected 36 region pixels, got %d", len(result.Indices))
	}

	last := -1
	for _, idx := range result.Indices {
		if idx <= last {
			t.Fatalf("Indices not strictly ascending at %d after %d", idx, last)
		}
		last = idx

		col := idx % 10
		row := idx / 10
		if col < 2 || col > 7 || row < 2 || row > 7 {
			t.Errorf("Region pixel (%d, %d) outside the square", col, row)
		}
	}
}

// TestFillContourInverted verifies recovery when the seed lands in the
// notch of a concave contour and the fill escapes
func TestFillContourInverted(t *testing.T) {
	g := mustGrid(t, 12, 12)

	// A "U" opening upward; the boundary pixels average to (5, 5) in
	// the notch, outside the enclosed area.
	u := []Pixel{
		{2, 2}, {4, 2}, {4, 7}, {6, 7}, {6, 2}, {8, 2}, {8, 9}, {2, 9},
	}

	result, err := g.FillContour(u)
	if err != nil {
		t.Fatalf("Failed to fill concave contour: %v", err)
	}

	if !result.Inverted {
		t.Fatal("Expected the fill to escape and invert")
	}

	// Arm and bowl interiors: col 3 and col 7 rows 3..8, row 8 cols 4..6.
	if len(result.Indices) != 15 {
		t.Errorf("Expected 15 region pixels, got %d", len(result.Indices))
	}
	for _, p := range []Pixel{{3, 4}, {7, 5}, {5, 8}} {
		if !contains(result.Indices, p.Row*12+p.Column) {
			t.Errorf("Expected (%d, %d) inside the region", p.Column, p.Row)
		}
	}
	for _, p := range []Pixel{{0, 0}, {5, 5}, {2, 2}} {
		if contains(result.Indices, p.Row*12+p.Column) {
			t.Errorf("Expected (%d, %d) outside the region", p.Column, p.Row)
		}
	}
}

// TestFillContourClipped verifies that a contour reaching past the grid
// keeps its full in-grid interior: the seed must come from the drawn
// boundary pixels, since the vertex positions lie outside the grid
func TestFillContourClipped(t *testing.T) {
	g := mustGrid(t, 10, 10)

	// The rectangle's left half lies beyond the grid; the grid edge
	// closes the interior off instead.
	rect := []Pixel{{-15, 2}, {8, 2}, {8, 7}, {-15, 7}}

	result, err := g.FillContour(rect)
	if err != nil {
		t.Fatalf("Failed to fill clipped contour: %v", err)
	}

	if result.Inverted {
		t.Error("Clipped fill should not invert")
	}
	if result.Clipped != 36 {
		t.Errorf("Expected 36 clipped pixels, got %d", result.Clipped)
	}

	// Boundary: rows 2 and 7 at cols 0..8 plus col 8 rows 3..6.
	// Interior: rows 3..6 at cols 0..7.
	if n := g.Count(Boundary); n != 22 {
		t.Errorf("Expected 22 boundary cells, got %d", n)
	}
	if n := g.Count(Fill); n != 32 {
		t.Errorf("Expected 32 filled cells, got %d", n)
	}
	if len(result.Indices) != 54 {
		t.Errorf("Expected 54 region pixels, got %d", len(result.Indices))
	}

	for _, p := range []Pixel{{0, 4}, {4, 4}, {7, 6}} {
		if !contains(result.Indices, p.Row*10+p.Column) {
			t.Errorf("Expected (%d, %d) inside the region", p.Column, p.Row)
		}
	}
	for _, p := range []Pixel{{9, 4}, {4, 1}, {4, 8}} {
		if contains(result.Indices, p.Row*10+p.Column) {
			t.Errorf("Expected (%d, %d) outside the region", p.Column, p.Row)
		}
	}
}

// TestFillContourAllClipped verifies that a contour entirely outside
// the grid draws nothing and encloses nothing
func TestFillContourAllClipped(t *testing.T) {
	g := mustGrid(t, 6, 6)
	square := []Pixel{{-9, -9}, {-5, -9}, {-5, -5}, {-9, -5}}

	result, err := g.FillContour(square)
	if err != nil {
		t.Fatalf("Failed to fill off-grid contour: %v", err)
	}

	if result.Inverted {
		t.Error("Off-grid fill should not invert")
	}
	if result.Clipped != 20 {
		t.Errorf("Expected 20 clipped pixels, got %d", result.Clipped)
	}
	if len(result.Indices) != 0 {
		t.Errorf("Expected an empty region, got %d pixels", len(result.Indices))
	}
}

// TestFillContourDegenerate verifies rejection of too few vertices
func TestFillContourDegenerate(t *testing.T) {
	g := mustGrid(t, 4, 4)

	_, err := g.FillContour([]Pixel{{0, 0}, {2, 2}})
	if err == nil {
		t.Fatal("Expected error for 2-vertex contour, got nil")
	}
	if !errors.Is(err, ErrDegenerateContour) {
		t.Errorf("Expected ErrDegenerateContour, got %v", err)
	}
}
