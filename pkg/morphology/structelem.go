package morphology

import (
	"fmt"

	"microseg3d/pkg/volume"
)

// StructElem is a structuring element expressed as the list of voxel
// offsets it covers, one [z y x] (or [y x] for rank 2) triple per
// voxel.
type StructElem struct {
	Rank    int
	Offsets [][]int
}

// Ball returns the rank-3 spherical structuring element of the given
// radius: all integer offsets within Euclidean distance radius of the
// center.
func Ball(radius int) StructElem {
	se := StructElem{Rank: 3}
	r2 := radius * radius
	for dz := -radius; dz <= radius; dz++ {
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				if dz*dz+dy*dy+dx*dx <= r2 {
					se.Offsets = append(se.Offsets, []int{dz, dy, dx})
				}
			}
		}
	}
	return se
}

// Disk returns the rank-2 circular structuring element of the given
// radius.
func Disk(radius int) StructElem {
	se := StructElem{Rank: 2}
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dy*dy+dx*dx <= r2 {
				se.Offsets = append(se.Offsets, []int{dy, dx})
			}
		}
	}
	return se
}

func checkSE(m *volume.Mask, se StructElem) error {
	if m.Rank() != se.Rank {
		return fmt.Errorf("%w: mask rank %d, element rank %d",
			volume.ErrShapeMismatch, m.Rank(), se.Rank)
	}
	return nil
}

// Erode returns the binary erosion of m by se. Voxels outside the
// array count as background, so foreground touching the border
// erodes.
func Erode(m *volume.Mask, se StructElem) (*volume.Mask, error) {
	if err := checkSE(m, se); err != nil {
		return nil, err
	}
	return mapSE(m, se, true), nil
}

// Dilate returns the binary dilation of m by se.
func Dilate(m *volume.Mask, se StructElem) (*volume.Mask, error) {
	if err := checkSE(m, se); err != nil {
		return nil, err
	}
	return mapSE(m, se, false), nil
}

// Open erodes then dilates, removing structure thinner than se.
func Open(m *volume.Mask, se StructElem) (*volume.Mask, error) {
	er, err := Erode(m, se)
	if err != nil {
		return nil, err
	}
	return Dilate(er, se)
}

// mapSE walks the structuring element at every voxel. With all=true it
// computes erosion (every covered voxel must be foreground), otherwise
// dilation (any covered voxel suffices).
func mapSE(m *volume.Mask, se StructElem, all bool) *volume.Mask {
	rank := m.Rank()
	out := &volume.Mask{Data: make([]bool, len(m.Data)), Shape: append([]int(nil), m.Shape...)}

	strides := make([]int, rank)
	strides[rank-1] = 1
	for a := rank - 2; a >= 0; a-- {
		strides[a] = strides[a+1] * m.Shape[a+1]
	}

	coord := make([]int, rank)
	for idx := range m.Data {
		rem := idx
		for a := 0; a < rank; a++ {
			coord[a] = rem / strides[a]
			rem %= strides[a]
		}
		if all {
			hit := true
			for _, off := range se.Offsets {
				nidx := 0
				inside := true
				for a := 0; a < rank; a++ {
					c := coord[a] + off[a]
					if c < 0 || c >= m.Shape[a] {
						inside = false
						break
					}
					nidx += c * strides[a]
				}
				if !inside || !m.Data[nidx] {
					hit = false
					break
				}
			}
			out.Data[idx] = hit
		} else {
			hit := false
			for _, off := range se.Offsets {
				nidx := 0
				inside := true
				for a := 0; a < rank; a++ {
					c := coord[a] + off[a]
					if c < 0 || c >= m.Shape[a] {
						inside = false
						break
					}
					nidx += c * strides[a]
				}
				if inside && m.Data[nidx] {
					hit = true
					break
				}
			}
			out.Data[idx] = hit
		}
	}
	return out
}
