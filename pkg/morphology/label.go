// Package morphology implements the binary image primitives the
// segmentation pipeline is built from: connected-component labeling,
// region measurement, exact Euclidean distance transforms, medial-axis
// skeletonization, structuring-element erosion/dilation, hole filling
// and topology-preserving thinning. Masks are treated functionally;
// only operations that document it mutate their input.
package morphology

import (
	"fmt"

	"microseg3d/pkg/volume"
)

// Connectivity selects which voxels count as neighbors during
// labeling, as the maximum number of orthogonal steps separating two
// neighbors: 1 means faces only (4 neighbors in 2D, 6 in 3D), 2 adds
// edges, 3 adds corners in 3D.
type Connectivity int

const (
	// ConnFaces connects voxels sharing a face (4-connectivity in 2D).
	ConnFaces Connectivity = 1

	// ConnEdges additionally connects voxels sharing an edge
	// (8-connectivity in 2D).
	ConnEdges Connectivity = 2

	// ConnCorners additionally connects voxels sharing only a corner
	// (26-connectivity in 3D).
	ConnCorners Connectivity = 3
)

// neighborOffsets enumerates the flat-index offsets of the voxels a
// given connectivity reaches, together with their per-axis deltas so
// callers can bounds-check at the array edges.
func neighborOffsets(shape []int, conn Connectivity) ([][]int, error) {
	rank := len(shape)
	if int(conn) < 1 || int(conn) > rank {
		return nil, fmt.Errorf("%w: %d for rank %d", ErrBadConnectivity, conn, rank)
	}
	var offs [][]int
	var walk func(axis int, cur []int)
	walk = func(axis int, cur []int) {
		if axis == rank {
			steps := 0
			for _, d := range cur {
				if d != 0 {
					steps++
				}
			}
			if steps >= 1 && steps <= int(conn) {
				offs = append(offs, append([]int(nil), cur...))
			}
			return
		}
		for _, d := range []int{-1, 0, 1} {
			walk(axis+1, append(cur, d))
		}
	}
	walk(0, make([]int, 0, rank))
	return offs, nil
}

// Label assigns a distinct positive id to every connected component of
// true voxels and returns the label map together with the number of
// components found.
func Label(m *volume.Mask, conn Connectivity) (*volume.Labels, int, error) {
	offs, err := neighborOffsets(m.Shape, conn)
	if err != nil {
		return nil, 0, err
	}
	out, err := volume.NewLabels(m.Shape)
	if err != nil {
		return nil, 0, err
	}

	rank := len(m.Shape)
	strides := make([]int, rank)
	strides[rank-1] = 1
	for a := rank - 2; a >= 0; a-- {
		strides[a] = strides[a+1] * m.Shape[a+1]
	}

	coord := make([]int, rank)
	next := int32(0)
	queue := make([]int, 0, 256)
	for start, on := range m.Data {
		if !on || out.Data[start] != 0 {
			continue
		}
		next++
		out.Data[start] = next
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			idx := queue[len(queue)-1]
			queue = queue[:len(queue)-1]

			rem := idx
			for a := 0; a < rank; a++ {
				coord[a] = rem / strides[a]
				rem %= strides[a]
			}
			for _, off := range offs {
				nidx := idx
				ok := true
				for a := 0; a < rank; a++ {
					c := coord[a] + off[a]
					if c < 0 || c >= m.Shape[a] {
						ok = false
						break
					}
					nidx += off[a] * strides[a]
				}
				if !ok || !m.Data[nidx] || out.Data[nidx] != 0 {
					continue
				}
				out.Data[nidx] = next
				queue = append(queue, nidx)
			}
		}
	}
	return out, int(next), nil
}

// ComponentSizes returns the voxel count per label id. Index 0 holds
// the background count.
func ComponentSizes(l *volume.Labels, n int) []int {
	sizes := make([]int, n+1)
	for _, v := range l.Data {
		sizes[v]++
	}
	return sizes
}

// Region holds the measurements extracted from one labeled component.
type Region struct {
	// Label is the component id in the label map.
	Label int32

	// Area is the voxel count.
	Area int

	// Centroid is the mean voxel coordinate per axis, outermost first.
	Centroid []float64
}

// Regions measures every labeled component of a label map, ordered by
// ascending label id.
func Regions(l *volume.Labels) []Region {
	rank := len(l.Shape)
	strides := make([]int, rank)
	strides[rank-1] = 1
	for a := rank - 2; a >= 0; a-- {
		strides[a] = strides[a+1] * l.Shape[a+1]
	}

	maxLabel := int32(0)
	for _, v := range l.Data {
		if v > maxLabel {
			maxLabel = v
		}
	}
	if maxLabel == 0 {
		return nil
	}

	sums := make([][]float64, maxLabel+1)
	counts := make([]int, maxLabel+1)
	for idx, v := range l.Data {
		if v == 0 {
			continue
		}
		if sums[v] == nil {
			sums[v] = make([]float64, rank)
		}
		rem := idx
		for a := 0; a < rank; a++ {
			sums[v][a] += float64(rem / strides[a])
			rem %= strides[a]
		}
		counts[v]++
	}

	regions := make([]Region, 0, maxLabel)
	for id := int32(1); id <= maxLabel; id++ {
		if counts[id] == 0 {
			continue
		}
		c := make([]float64, rank)
		for a := 0; a < rank; a++ {
			c[a] = sums[id][a] / float64(counts[id])
		}
		regions = append(regions, Region{Label: id, Area: counts[id], Centroid: c})
	}
	return regions
}

// RemoveSmallObjects clears every connected component with fewer than
// minSize voxels. Components are found with full connectivity
// (diagonals included), matching the permissive convention used when
// cleaning seeds.
func RemoveSmallObjects(m *volume.Mask, minSize int) (*volume.Mask, error) {
	lab, n, err := Label(m, Connectivity(m.Rank()))
	if err != nil {
		return nil, err
	}
	sizes := ComponentSizes(lab, n)
	out := m.Clone()
	for i, v := range lab.Data {
		if v > 0 && sizes[v] < minSize {
			out.Data[i] = false
		}
	}
	return out, nil
}
