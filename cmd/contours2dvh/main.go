package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"path/filepath"
	"time"

	"contours2dvh/internal/models"
	"contours2dvh/pkg/config"
	"contours2dvh/pkg/dose"
	"contours2dvh/pkg/mask"
	"contours2dvh/pkg/registration"
	"contours2dvh/pkg/visualization"
)

const (
	// Geometry of the synthetic phantom, in mm.
	pixelSpacing = 2.0
	sliceStep    = 3.0
	firstSliceZ  = 2.0

	// Spherical target and dose falloff.
	targetRadius = 30.0
	doseSigma    = 35.0
	peakDose     = 70.0
	gridScaling  = 0.01

	contourVertices = 48
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "", "Path to YAML configuration file")
	writeConfig := flag.String("write-config", "", "Write the default configuration to the given path and exit")
	gridSize := flag.Int("grid", 64, "Width and height of the phantom slice grid in pixels")
	sliceCount := flag.Int("slices", 25, "Number of slices in the phantom series")
	numCores := flag.Int("cores", 0, "Number of CPU cores to use (default: configured value)")
	extractSlices := flag.Bool("extract-slices", false, "Extract and save mask cross sections along all axes")
	slicesDir := flag.String("slices-dir", "", "Directory to save extracted cross sections (default: configured value)")
	flag.Parse()

	if *writeConfig != "" {
		if err := config.CreateDefaultConfigFile(*writeConfig); err != nil {
			log.Fatalf("Failed to write configuration: %v", err)
		}
		fmt.Printf("Default configuration written to: %s\n", *writeConfig)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *numCores > 0 {
		cfg.Processing.Workers = *numCores
	}
	if *slicesDir != "" {
		cfg.Output.SliceDir = *slicesDir
	}
	// The slice extent must clear the target sphere, or its contours
	// would be clipped at the grid edges.
	if *gridSize < 48 || *sliceCount < 3 {
		log.Fatal("Phantom needs a grid of at least 48 pixels and at least 3 slices")
	}

	fmt.Println("================================")
	fmt.Println("CONTOURS2DVH: ROI MASKS AND DOSE-VOLUME STATISTICS FROM PLANAR CONTOURS")
	fmt.Println("================================")

	// Build the synthetic phantom: an axial series, a spherical target
	// outlined as per-slice contours, and a dose grid falling off from
	// the sphere's center.
	series := buildSeries(*gridSize, *sliceCount)
	center := phantomCenter(*gridSize, *sliceCount)
	set := buildContourSet(series, center)
	doseGrid := buildDoseGrid(series, center)

	fmt.Printf("Phantom: %d slices of %dx%d pixels, target sphere of %.0f mm radius\n",
		*sliceCount, *gridSize, *gridSize, targetRadius)
	fmt.Printf("Rasterizing %d contours on %d cores...\n", len(set.Contours), cfg.Processing.Workers)

	opts := []mask.BuildOption{mask.WithWorkers(cfg.Processing.Workers)}
	if cfg.Output.Verbose {
		opts = append(opts, mask.WithProgress(func(completed, total int, message string) {
			fmt.Printf("  [%d/%d] %s\n", completed, total, message)
		}))
	}

	startTime := time.Now()
	target, err := mask.FromContourSet(set, series, opts...)
	if err != nil {
		log.Fatalf("Mask construction failed: %v", err)
	}
	processingTime := time.Since(startTime)

	marked := 0
	for _, image := range target.Images() {
		marked += image.TrueCount()
	}
	fmt.Printf("\nMask construction completed in %.2f seconds!\n", processingTime.Seconds())
	fmt.Printf("Target region: %d planes, %d pixels marked, %d contours without a slice\n",
		target.Len(), marked, target.Missed())

	// Sampling and thresholding pair grid frames with mask planes by
	// array index, so restrict the series and the grid to the planes
	// the sphere was contoured on.
	contoured := make(map[float64]bool, target.Len())
	for _, image := range target.Images() {
		contoured[image.Position()] = true
	}
	planeDose := &models.DoseGrid{
		Columns: doseGrid.Columns,
		Rows:    doseGrid.Rows,
		Scaling: doseGrid.Scaling,
	}
	var planeSeries []*models.ImageSlice
	for i, slice := range series {
		if contoured[slice.Position] {
			planeSeries = append(planeSeries, slice)
			planeDose.Frames = append(planeDose.Frames, doseGrid.Frames[i])
		}
	}

	// Dose-volume statistics inside the target.
	dist, err := dose.New(target, planeDose)
	if err != nil {
		log.Fatalf("Dose sampling failed: %v", err)
	}

	fmt.Printf("\nDose-Volume Statistics:\n")
	fmt.Printf("=======================\n")
	fmt.Printf("Samples: %d\n", dist.Len())
	fmt.Printf("Min dose: %.2f Gy\n", dist.Min())
	fmt.Printf("Max dose: %.2f Gy\n", dist.Max())
	fmt.Printf("Mean dose: %.2f Gy\n", dist.Mean())
	fmt.Printf("Median dose: %.2f Gy\n", dist.Median())
	fmt.Printf("Standard deviation: %.2f Gy\n", dist.StdDev())
	for _, percent := range cfg.Report.DosePercents {
		fmt.Printf("D%g: %.2f Gy\n", percent, dist.D(percent))
	}
	for _, level := range cfg.Report.VolumeDoses {
		fmt.Printf("V%gGy: %.1f%%\n", level, dist.V(level))
	}
	fmt.Printf("Homogeneity index: %.3f\n", dist.HIndex())

	// Compare the contoured target against the high-dose region.
	var lower, upper *float64
	if cfg.Threshold.Min > 0 {
		lower = &cfg.Threshold.Min
	}
	if cfg.Threshold.Max > 0 {
		upper = &cfg.Threshold.Max
	}
	hot, err := mask.FromThreshold(planeDose, planeSeries, lower, upper)
	if err != nil {
		log.Fatalf("Threshold volume failed: %v", err)
	}
	scores, err := mask.Compare(hot, target)
	if err != nil {
		log.Fatalf("Volume comparison failed: %v", err)
	}
	scores.AssignTo(hot)

	fmt.Printf("\nHigh-dose region vs. contoured target:\n")
	fmt.Printf("======================================\n")
	if lower != nil && upper != nil {
		fmt.Printf("Dose window: %.1f to %.1f Gy\n", *lower, *upper)
	} else if lower != nil {
		fmt.Printf("Dose window: %.1f Gy and above\n", *lower)
	} else if upper != nil {
		fmt.Printf("Dose window: up to %.1f Gy\n", *upper)
	}
	fmt.Printf("Overlap: %.3f\n", scores.Overlap)
	fmt.Printf("Sensitivity: %.3f\n", scores.Sensitivity)
	fmt.Printf("Specificity: %.3f\n", scores.Specificity)
	fmt.Printf("Correlation: %.3f\n", scores.Correlation)

	// Match a foreign slice against the series by plane orientation.
	middle := series[len(series)/2]
	query := &models.ImageSlice{
		Columns:    128,
		Rows:       128,
		Origin:     models.Coordinate{X: -40, Y: -40, Z: middle.Position},
		ColSpacing: 1.0,
		RowSpacing: 1.0,
		Cosines:    middle.Cosines,
		Position:   middle.Position,
	}
	index, err := registration.FindSlice(query, series)
	if err != nil {
		log.Fatalf("Slice matching failed: %v", err)
	}
	fmt.Printf("\nSlice matching:\n")
	fmt.Printf("===============\n")
	fmt.Printf("A 128x128 slice on the plane at %.1f mm matched series slice %d (position %.1f mm)\n",
		query.Position, index, series[index].Position)

	// Extract and save cross sections if requested.
	if *extractSlices {
		fmt.Println("\nExtracting mask cross sections along all axes...")

		viewer, err := visualization.NewViewer(target)
		if err != nil {
			log.Fatalf("Viewer creation failed: %v", err)
		}
		if err := viewer.SetUnderlay(planeDose); err != nil {
			log.Fatalf("Underlay failed: %v", err)
		}

		for _, axis := range []string{"x", "y", "z"} {
			axisDir := filepath.Join(cfg.Output.SliceDir, axis)
			fmt.Printf("Saving %s-axis cross sections to: %s\n", axis, axisDir)

			if err := viewer.SaveSliceSequence(axis, axisDir); err != nil {
				log.Printf("Warning: Failed to save %s-axis cross sections: %v", axis, err)
			}
		}

		fmt.Println("Cross section extraction completed!")
	}

	if cfg.Output.SaveSlices && !*extractSlices {
		fmt.Printf("\nCross section saving is enabled in the configuration; rerun with -extract-slices to write %s\n",
			cfg.Output.SliceDir)
	}
}

// buildSeries lays out an axial series with uniform spacing, starting
// above the origin plane so every slice fits a plane equation.
func buildSeries(gridSize, sliceCount int) []*models.ImageSlice {
	series := make([]*models.ImageSlice, sliceCount)
	for i := range series {
		z := firstSliceZ + float64(i)*sliceStep
		series[i] = &models.ImageSlice{
			Columns:    gridSize,
			Rows:       gridSize,
			Origin:     models.Coordinate{X: 0, Y: 0, Z: z},
			ColSpacing: pixelSpacing,
			RowSpacing: pixelSpacing,
			Cosines:    [6]float64{1, 0, 0, 0, 1, 0},
			Position:   z,
		}
	}
	return series
}

// phantomCenter places the sphere in the middle of the volume.
func phantomCenter(gridSize, sliceCount int) models.Coordinate {
	extent := float64(gridSize-1) * pixelSpacing
	return models.Coordinate{
		X: extent / 2,
		Y: extent / 2,
		Z: firstSliceZ + sliceStep*float64(sliceCount-1)/2,
	}
}

// buildContourSet outlines the sphere on every slice it intersects.
func buildContourSet(series []*models.ImageSlice, center models.Coordinate) *models.ContourSet {
	set := &models.ContourSet{Name: "target"}
	for _, slice := range series {
		dz := slice.Position - center.Z
		if math.Abs(dz) >= targetRadius {
			continue
		}
		radius := math.Sqrt(targetRadius*targetRadius - dz*dz)
		if radius < pixelSpacing {
			continue
		}

		points := make([]models.Coordinate, contourVertices)
		for k := range points {
			angle := 2 * math.Pi * float64(k) / contourVertices
			points[k] = models.Coordinate{
				X: center.X + radius*math.Cos(angle),
				Y: center.Y + radius*math.Sin(angle),
				Z: slice.Position,
			}
		}
		set.Contours = append(set.Contours, models.NewContour(points))
	}
	return set
}

// buildDoseGrid fills one frame per slice with a Gaussian falloff from
// the sphere's center, stored as raw values under a common scaling.
func buildDoseGrid(series []*models.ImageSlice, center models.Coordinate) *models.DoseGrid {
	columns := series[0].Columns
	rows := series[0].Rows

	grid := &models.DoseGrid{
		Columns: columns,
		Rows:    rows,
		Scaling: gridScaling,
		Frames:  make([][]float64, len(series)),
	}
	for i, slice := range series {
		frame := make([]float64, columns*rows)
		for row := 0; row < rows; row++ {
			for col := 0; col < columns; col++ {
				x := float64(col) * pixelSpacing
				y := float64(row) * pixelSpacing
				dx := x - center.X
				dy := y - center.Y
				dz := slice.Position - center.Z
				dist2 := dx*dx + dy*dy + dz*dz

				gray := peakDose * math.Exp(-dist2/(doseSigma*doseSigma))
				frame[row*columns+col] = gray / gridScaling
			}
		}
		grid.Frames[i] = frame
	}
	return grid
}
