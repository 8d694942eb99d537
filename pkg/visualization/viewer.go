// Package visualization renders mask volumes as grayscale images for
// visual inspection. Masked pixels draw in the bright half of the
// 16-bit range; an optional scalar underlay shades the surrounding
// pixels in the bottom quarter so the region can be judged against its
// context.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"

	"contours2dvh/internal/models"
	"contours2dvh/pkg/mask"
)

// Viewer renders cross sections of a stacked mask volume.
type Viewer struct {
	// bits holds the flattened mask in frame, row, column order
	bits []bool

	// underlay holds optional scaled scalar samples in the same layout
	underlay []float64

	// underlayMax is the largest underlay sample, used to normalize
	underlayMax float64

	// dimensions of the stack
	columns int
	rows    int
	frames  int
}

// NewViewer snapshots the volume's stacked form. Later mutations of the
// volume do not show up in the viewer.
func NewViewer(volume *mask.Volume) (*Viewer, error) {
	if volume == nil {
		return nil, fmt.Errorf("no mask volume")
	}
	if volume.Len() == 0 {
		return nil, fmt.Errorf("mask volume has no planes")
	}

	bits, columns, rows, frames := volume.Stacked()
	return &Viewer{
		bits:    bits,
		columns: columns,
		rows:    rows,
		frames:  frames,
	}, nil
}

// SetUnderlay shades unmasked pixels with the grid's scaled values.
// Frames pair with mask planes by array index.
func (v *Viewer) SetUnderlay(grid *models.DoseGrid) error {
	if grid == nil {
		return fmt.Errorf("no sample grid")
	}
	if grid.NumFrames() != v.frames {
		return fmt.Errorf("underlay has %d frames for %d mask planes", grid.NumFrames(), v.frames)
	}
	if grid.Columns != v.columns || grid.Rows != v.rows {
		return fmt.Errorf("underlay is %dx%d, mask is %dx%d", grid.Columns, grid.Rows, v.columns, v.rows)
	}

	size := v.columns * v.rows
	underlay := make([]float64, size*v.frames)
	max := 0.0
	for f, frame := range grid.Frames {
		if len(frame) != size {
			return fmt.Errorf("underlay frame %d has %d samples for a %dx%d grid",
				f, len(frame), v.columns, v.rows)
		}
		for i, raw := range frame {
			value := raw * grid.Scaling
			underlay[f*size+i] = value
			if value > max {
				max = value
			}
		}
	}

	v.underlay = underlay
	v.underlayMax = max
	return nil
}

// ExtractSlice extracts a 2D cross section along the specified axis.
// The x axis cuts across columns, y across rows and z across frames.
func (v *Viewer) ExtractSlice(axis string, position int) (image.Image, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	var img *image.Gray16

	switch axis {
	case "x", "X":
		if position >= v.columns {
			return nil, fmt.Errorf("position %d exceeds %d columns", position, v.columns)
		}

		img = image.NewGray16(image.Rect(0, 0, v.frames, v.rows))
		for row := 0; row < v.rows; row++ {
			for frame := 0; frame < v.frames; frame++ {
				idx := frame*v.columns*v.rows + row*v.columns + position
				img.SetGray16(frame, row, color.Gray16{Y: v.shade(idx)})
			}
		}

	case "y", "Y":
		if position >= v.rows {
			return nil, fmt.Errorf("position %d exceeds %d rows", position, v.rows)
		}

		img = image.NewGray16(image.Rect(0, 0, v.columns, v.frames))
		for frame := 0; frame < v.frames; frame++ {
			for col := 0; col < v.columns; col++ {
				idx := frame*v.columns*v.rows + position*v.columns + col
				img.SetGray16(col, frame, color.Gray16{Y: v.shade(idx)})
			}
		}

	case "z", "Z":
		if position >= v.frames {
			return nil, fmt.Errorf("position %d exceeds %d frames", position, v.frames)
		}

		img = image.NewGray16(image.Rect(0, 0, v.columns, v.rows))
		for row := 0; row < v.rows; row++ {
			for col := 0; col < v.columns; col++ {
				idx := position*v.columns*v.rows + row*v.columns + col
				img.SetGray16(col, row, color.Gray16{Y: v.shade(idx)})
			}
		}

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	return img, nil
}

// shade maps one voxel to a 16-bit gray value. Masked voxels occupy
// [32768, 65535], underlay-only voxels [0, 16383], everything else 0.
func (v *Viewer) shade(idx int) uint16 {
	norm := 0.0
	if v.underlay != nil && v.underlayMax > 0 {
		norm = v.underlay[idx] / v.underlayMax
	}
	if v.bits[idx] {
		return uint16(32768 + norm*32767)
	}
	return uint16(norm * 16383)
}

// ExtractRegion copies a rectangular subvolume of the mask.
func (v *Viewer) ExtractRegion(startCol, startRow, startFrame, sizeCols, sizeRows, sizeFrames int) ([]bool, error) {
	if startCol < 0 || startRow < 0 || startFrame < 0 {
		return nil, fmt.Errorf("start coordinates must be non-negative")
	}
	if sizeCols <= 0 || sizeRows <= 0 || sizeFrames <= 0 {
		return nil, fmt.Errorf("size dimensions must be positive")
	}
	if startCol+sizeCols > v.columns || startRow+sizeRows > v.rows || startFrame+sizeFrames > v.frames {
		return nil, fmt.Errorf("region extends beyond the mask volume")
	}

	region := make([]bool, sizeCols*sizeRows*sizeFrames)
	for frame := 0; frame < sizeFrames; frame++ {
		for row := 0; row < sizeRows; row++ {
			for col := 0; col < sizeCols; col++ {
				srcIdx := (startFrame+frame)*v.columns*v.rows + (startRow+row)*v.columns + (startCol + col)
				dstIdx := frame*sizeCols*sizeRows + row*sizeCols + col
				region[dstIdx] = v.bits[srcIdx]
			}
		}
	}

	return region, nil
}

// SaveSlice writes an extracted slice to disk. The format follows the
// file extension: .png, .tif or .tiff.
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return png.Encode(file, img)
	case ".tif", ".tiff":
		return tiff.Encode(file, img, nil)
	default:
		return fmt.Errorf("unsupported image format: %s", filepath.Ext(filename))
	}
}

// SaveSliceSequence extracts and saves every cross section along the
// specified axis as PNG files.
func (v *Viewer) SaveSliceSequence(axis string, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	var maxPos int
	switch axis {
	case "x", "X":
		maxPos = v.columns
	case "y", "Y":
		maxPos = v.rows
	case "z", "Z":
		maxPos = v.frames
	default:
		return fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.png", axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}

	return nil
}
