// Package registration matches image slices against a reference series
// by comparing the planes the slices lie on. A slice's plane is fitted
// through three of its corner pixels and expressed as
//
//	a*x + b*y + c*z = 500
//
// so two slices with the same orientation and position produce the same
// coefficients regardless of their grid size or spacing.
package registration

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"contours2dvh/internal/models"
	"contours2dvh/pkg/geometry"
)

var (
	// ErrCollinearPoints reports three sample points that do not
	// determine the plane equation, either because they are collinear
	// or because their plane passes through the origin.
	ErrCollinearPoints = errors.New("points do not determine a plane")

	// ErrNoMatch reports that no slice in the reference series lies
	// close enough to the queried slice's plane.
	ErrNoMatch = errors.New("no slice with a matching plane")
)

const (
	// planeOffset is the fixed right-hand side of the plane equation.
	planeOffset = 500.0

	// detTolerance is the smallest determinant magnitude accepted when
	// solving for the plane coefficients.
	detTolerance = 1e-12

	// matchTolerance is the largest absolute coefficient deviation sum
	// a winning candidate may have and still count as a match.
	matchTolerance = 0.01
)

// Plane holds the coefficients of a*x + b*y + c*z = 500.
type Plane struct {
	A float64
	B float64
	C float64
}

// FitPlane solves for the plane through three points. The three
// equations a*xi + b*yi + c*zi = 500 are solved by Cramer's rule; a
// vanishing determinant means the points cannot pin the plane down and
// yields ErrCollinearPoints.
func FitPlane(p1, p2, p3 models.Coordinate) (Plane, error) {
	rows := [3][3]float64{
		{p1.X, p1.Y, p1.Z},
		{p2.X, p2.Y, p2.Z},
		{p3.X, p3.Y, p3.Z},
	}

	det := det3(rows)
	if math.Abs(det) < detTolerance {
		return Plane{}, fmt.Errorf("%w: determinant %g", ErrCollinearPoints, det)
	}

	return Plane{
		A: det3(replaceColumn(rows, 0)) / det,
		B: det3(replaceColumn(rows, 1)) / det,
		C: det3(replaceColumn(rows, 2)) / det,
	}, nil
}

// Match finds the candidate closest to p. Each coefficient's absolute
// deviations are rescaled by their mean across the candidates so that
// no single axis dominates the ranking; the best-ranked candidate is
// then accepted only if its raw deviation sum stays within
// matchTolerance. Returns (-1, false) when there are no candidates or
// the closest one is still too far off.
func (p Plane) Match(candidates []Plane) (int, bool) {
	if len(candidates) == 0 {
		return -1, false
	}

	devA := make([]float64, len(candidates))
	devB := make([]float64, len(candidates))
	devC := make([]float64, len(candidates))
	for i, c := range candidates {
		devA[i] = math.Abs(p.A - c.A)
		devB[i] = math.Abs(p.B - c.B)
		devC[i] = math.Abs(p.C - c.C)
	}
	rescale(devA)
	rescale(devB)
	rescale(devC)

	best := 0
	bestScore := math.Inf(1)
	for i := range candidates {
		score := devA[i] + devB[i] + devC[i]
		if score < bestScore {
			best = i
			bestScore = score
		}
	}

	raw := math.Abs(p.A-candidates[best].A) +
		math.Abs(p.B-candidates[best].B) +
		math.Abs(p.C-candidates[best].C)
	if raw > matchTolerance {
		return -1, false
	}
	return best, true
}

// SliceOrientation fits the plane an image slice lies on, sampling the
// physical positions of three of its corner pixels.
func SliceOrientation(slice *models.ImageSlice) (Plane, error) {
	space, err := geometry.NewSpace(slice)
	if err != nil {
		return Plane{}, err
	}

	return FitPlane(
		space.IndexToPhysical(0, 0),
		space.IndexToPhysical(slice.Columns-1, 0),
		space.IndexToPhysical(0, slice.Rows-1),
	)
}

// FindSlice locates the slice in series whose plane best matches the
// queried slice. Returns ErrNoMatch when even the closest candidate
// deviates too much.
func FindSlice(slice *models.ImageSlice, series []*models.ImageSlice) (int, error) {
	target, err := SliceOrientation(slice)
	if err != nil {
		return -1, fmt.Errorf("fitting queried slice: %w", err)
	}

	candidates := make([]Plane, len(series))
	for i, ref := range series {
		plane, err := SliceOrientation(ref)
		if err != nil {
			return -1, fmt.Errorf("fitting series slice %d: %w", i, err)
		}
		candidates[i] = plane
	}

	index, ok := target.Match(candidates)
	if !ok {
		return -1, ErrNoMatch
	}
	return index, nil
}

// rescale divides the values by their mean. A list of all zeros keeps
// its values, since those already rank first on every axis.
func rescale(values []float64) {
	mean := stat.Mean(values, nil)
	if mean == 0 {
		return
	}
	for i := range values {
		values[i] /= mean
	}
}

// replaceColumn substitutes the plane offset into one column of the
// coefficient matrix, as Cramer's rule requires.
func replaceColumn(rows [3][3]float64, col int) [3][3]float64 {
	for i := range rows {
		rows[i][col] = planeOffset
	}
	return rows
}

func det3(rows [3][3]float64) float64 {
	return mat.Det(mat.NewDense(3, 3, []float64{
		rows[0][0], rows[0][1], rows[0][2],
		rows[1][0], rows[1][1], rows[1][2],
		rows[2][0], rows[2][1], rows[2][2],
	}))
}
