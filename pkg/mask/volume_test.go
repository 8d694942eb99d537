package mask

import (
	"errors"
	"testing"
)

func imagesAt(t *testing.T, positions ...float64) []*Image {
	t.Helper()
	images := make([]*Image, len(positions))
	for i, p := range positions {
		images[i] = mustImage(t, newTestSlice(3, 2, p))
	}
	return images
}

func TestNewVolumeValidation(t *testing.T) {
	images := imagesAt(t, 0, 2)
	images = append(images, mustImage(t, newTestSlice(4, 2, 4)))

	if _, err := NewVolume(images, ContourSource); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Expected ErrDimensionMismatch for mixed dimensions, got %v", err)
	}

	empty, err := NewVolume(nil, WholeVolumeSource)
	if err != nil {
		t.Fatalf("Empty volume should be allowed: %v", err)
	}
	if empty.Len() != 0 {
		t.Errorf("Expected empty volume, got %d images", empty.Len())
	}
}

func TestVolumeAccessors(t *testing.T) {
	volume, err := NewVolume(imagesAt(t, 0, 2, 4), ThresholdSource)
	if err != nil {
		t.Fatalf("Failed to create volume: %v", err)
	}

	if volume.Len() != 3 {
		t.Errorf("Expected 3 images, got %d", volume.Len())
	}
	if volume.Columns() != 3 || volume.Rows() != 2 {
		t.Errorf("Expected 3x2 planes, got %dx%d", volume.Columns(), volume.Rows())
	}
	if volume.Provenance() != ThresholdSource {
		t.Errorf("Expected threshold provenance, got %v", volume.Provenance())
	}
	if volume.Image(1).Position() != 2 {
		t.Errorf("Expected position 2 at index 1, got %g", volume.Image(1).Position())
	}

	// The returned list is a copy.
	list := volume.Images()
	list[0] = nil
	if volume.Image(0) == nil {
		t.Error("Mutating the returned image list changed the volume")
	}
}

func TestVolumeSort(t *testing.T) {
	volume, err := NewVolume(imagesAt(t, 4, 0, 2), ContourSource)
	if err != nil {
		t.Fatalf("Failed to create volume: %v", err)
	}

	volume.Sort()

	expected := []float64{0, 2, 4}
	for i, want := range expected {
		if got := volume.Image(i).Position(); got != want {
			t.Errorf("Index %d: expected position %g, got %g", i, want, got)
		}
	}
}

func TestVolumeReorder(t *testing.T) {
	volume, err := NewVolume(imagesAt(t, 0, 2, 4), ContourSource)
	if err != nil {
		t.Fatalf("Failed to create volume: %v", err)
	}

	if err := volume.Reorder([]int{2, 0, 1}); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}

	expected := []float64{4, 0, 2}
	for i, want := range expected {
		if got := volume.Image(i).Position(); got != want {
			t.Errorf("Index %d: expected position %g, got %g", i, want, got)
		}
	}
}

func TestVolumeReorderValidation(t *testing.T) {
	volume, err := NewVolume(imagesAt(t, 0, 2, 4), ContourSource)
	if err != nil {
		t.Fatalf("Failed to create volume: %v", err)
	}

	cases := []struct {
		name string
		perm []int
	}{
		{"too short", []int{0, 1}},
		{"duplicate entry", []int{0, 0, 2}},
		{"out of range", []int{0, 1, 3}},
		{"negative entry", []int{0, 1, -1}},
	}

	for _, tc := range cases {
		if err := volume.Reorder(tc.perm); !errors.Is(err, ErrBadPermutation) {
			t.Errorf("%s: expected ErrBadPermutation, got %v", tc.name, err)
		}
	}
}

// TestVolumeStacked verifies the flattened layout and that the cache
// tracks both pixel writes and structural changes
func TestVolumeStacked(t *testing.T) {
	volume, err := NewVolume(imagesAt(t, 0, 2), ContourSource)
	if err != nil {
		t.Fatalf("Failed to create volume: %v", err)
	}
	volume.Image(0).SetIndex(1, true)
	volume.Image(1).SetIndex(5, true)

	data, columns, rows, frames := volume.Stacked()
	if columns != 3 || rows != 2 || frames != 2 {
		t.Fatalf("Expected 3x2x2 stack, got %dx%dx%d", columns, rows, frames)
	}
	if len(data) != 12 {
		t.Fatalf("Expected 12 voxels, got %d", len(data))
	}
	if !data[1] || !data[11] {
		t.Errorf("Expected voxels 1 and 11 set, got %v", data)
	}

	// Unchanged volume returns the cached stack.
	again, _, _, _ := volume.Stacked()
	if &again[0] != &data[0] {
		t.Error("Expected the cached stack to be reused")
	}

	// A pixel write forces a rebuild.
	volume.Image(0).SetIndex(0, true)
	rebuilt, _, _, _ := volume.Stacked()
	if !rebuilt[0] {
		t.Error("Stack did not pick up the pixel write")
	}

	// A structural change forces a rebuild too.
	if err := volume.Reorder([]int{1, 0}); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}
	reordered, _, _, _ := volume.Stacked()
	if !reordered[5] || reordered[11] {
		t.Errorf("Stack did not follow the reorder, got %v", reordered)
	}
}
