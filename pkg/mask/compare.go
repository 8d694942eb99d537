package mask

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Scores holds the measures of agreement between a candidate volume and
// a reference volume.
type Scores struct {
	// Overlap is the intersection over the union of the two regions
	Overlap float64

	// Sensitivity is the fraction of the reference region the candidate
	// covers
	Sensitivity float64

	// Specificity is the fraction of the reference background the
	// candidate leaves uncovered
	Specificity float64

	// Correlation is the Pearson correlation of the two stacked masks
	Correlation float64
}

// Compare measures how well a candidate volume reproduces a reference
// volume. Both volumes must have the same stacked dimensions. When a
// measure's denominator is empty (for example the reference region for
// sensitivity), the volumes trivially agree on that class and the
// measure is 1.
func Compare(candidate, reference *Volume) (Scores, error) {
	if candidate == nil || reference == nil {
		return Scores{}, fmt.Errorf("comparison needs two volumes")
	}

	a, aCols, aRows, aFrames := candidate.Stacked()
	b, bCols, bRows, bFrames := reference.Stacked()
	if aCols != bCols || aRows != bRows || aFrames != bFrames {
		return Scores{}, fmt.Errorf("%w: %dx%dx%d and %dx%dx%d", ErrDimensionMismatch,
			aCols, aRows, aFrames, bCols, bRows, bFrames)
	}

	var tp, fp, fn, tn float64
	for i := range a {
		switch {
		case a[i] && b[i]:
			tp++
		case a[i] && !b[i]:
			fp++
		case !a[i] && b[i]:
			fn++
		default:
			tn++
		}
	}

	scores := Scores{Overlap: 1, Sensitivity: 1, Specificity: 1}
	if union := tp + fp + fn; union > 0 {
		scores.Overlap = tp / union
	}
	if tp+fn > 0 {
		scores.Sensitivity = tp / (tp + fn)
	}
	if tn+fp > 0 {
		scores.Specificity = tn / (tn + fp)
	}

	if len(a) > 0 {
		scores.Correlation = stat.Correlation(boolsToFloats(a), boolsToFloats(b), nil)
	}
	return scores, nil
}

// AssignTo stores the three region scores on a volume.
func (s Scores) AssignTo(v *Volume) {
	v.Overlap = s.Overlap
	v.Sensitivity = s.Sensitivity
	v.Specificity = s.Specificity
}

func boolsToFloats(bits []bool) []float64 {
	values := make([]float64, len(bits))
	for i, b := range bits {
		if b {
			values[i] = 1
		}
	}
	return values
}
