package models

// DoseGrid holds a multi-frame grid of raw scalar samples together with
// the linear factor that converts them to physical dose values.
type DoseGrid struct {
	// Columns is the number of samples along a row in every frame
	Columns int

	// Rows is the number of sample rows in every frame
	Rows int

	// Scaling converts a raw stored sample to a physical dose value
	Scaling float64

	// Frames holds one flattened Columns x Rows sample array per slice,
	// in row-major order
	Frames [][]float64
}

// NumFrames returns the number of sample frames in the grid.
func (g *DoseGrid) NumFrames() int {
	return len(g.Frames)
}

// ScaledValue returns the physical dose at the flattened index idx of
// frame f.
func (g *DoseGrid) ScaledValue(f, idx int) float64 {
	return g.Frames[f][idx] * g.Scaling
}

// ScaledFrame returns a copy of frame f with the scaling factor applied.
func (g *DoseGrid) ScaledFrame(f int) []float64 {
	frame := g.Frames[f]
	scaled := make([]float64, len(frame))
	for i, v := range frame {
		scaled[i] = v * g.Scaling
	}
	return scaled
}
