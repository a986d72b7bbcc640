package morphology

import (
	"errors"
	"testing"

	"microseg3d/pkg/volume"
)

// TestThinningPreservesThinLine verifies a 1-voxel-wide path survives
// a thinning pass connected.
func TestThinningPreservesThinLine(t *testing.T) {
	m, _ := volume.NewMask([]int{1, 5, 9})
	for x := 1; x < 8; x++ {
		m.Data[2*9+x] = true
	}
	before := m.Count()

	out, err := TopologyPreservingThinning(m, 1, 1)
	if err != nil {
		t.Fatalf("TopologyPreservingThinning failed: %v", err)
	}
	if out.Count() != before {
		t.Errorf("Thin line lost voxels: %d -> %d", before, out.Count())
	}
	_, n, err := Label(out, ConnFaces)
	if err != nil {
		t.Fatalf("Label failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Thin line disconnected into %d components", n)
	}
}

// TestThinningErodesThickSlab verifies voxels far from the medial axis
// are removed.
func TestThinningErodesThickSlab(t *testing.T) {
	m, _ := volume.NewMask([]int{1, 15, 15})
	for y := 1; y < 14; y++ {
		for x := 1; x < 14; x++ {
			m.Data[y*15+x] = true
		}
	}
	before := m.Count()

	out, err := TopologyPreservingThinning(m, 1, 1)
	if err != nil {
		t.Fatalf("TopologyPreservingThinning failed: %v", err)
	}
	if out.Count() >= before {
		t.Errorf("Thick slab was not thinned: %d -> %d", before, out.Count())
	}
	if !out.Any() {
		t.Errorf("Thinning removed the whole slab")
	}
}

// TestThinningNeeds3D rejects rank-2 input.
func TestThinningNeeds3D(t *testing.T) {
	m, _ := volume.NewMask([]int{4, 4})
	if _, err := TopologyPreservingThinning(m, 1, 1); !errors.Is(err, ErrNeed3D) {
		t.Errorf("Expected ErrNeed3D, got %v", err)
	}
}

// TestOuterBoundaries marks background voxels adjacent to a region.
func TestOuterBoundaries(t *testing.T) {
	l, _ := volume.NewLabels([]int{5, 5})
	l.Data[2*5+2] = 1

	b, err := OuterBoundaries(l)
	if err != nil {
		t.Fatalf("OuterBoundaries failed: %v", err)
	}
	if b.Count() != 4 {
		t.Errorf("Expected 4 boundary voxels, got %d", b.Count())
	}
	if b.Data[2*5+2] {
		t.Errorf("Region voxel must not be marked as boundary")
	}
	for _, idx := range []int{1*5 + 2, 3*5 + 2, 2*5 + 1, 2*5 + 3} {
		if !b.Data[idx] {
			t.Errorf("Face neighbor %d should be boundary", idx)
		}
	}
}
