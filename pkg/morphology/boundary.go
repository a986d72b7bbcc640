package morphology

import "microseg3d/pkg/volume"

// OuterBoundaries marks the background voxels that touch a labeled
// region through a face. This is the outer-boundary convention used to
// pin the zero level set around seed regions.
func OuterBoundaries(l *volume.Labels) (*volume.Mask, error) {
	offs, err := neighborOffsets(l.Shape, ConnFaces)
	if err != nil {
		return nil, err
	}
	out, err := volume.NewMask(l.Shape)
	if err != nil {
		return nil, err
	}

	rank := len(l.Shape)
	strides := make([]int, rank)
	strides[rank-1] = 1
	for a := rank - 2; a >= 0; a-- {
		strides[a] = strides[a+1] * l.Shape[a+1]
	}

	coord := make([]int, rank)
	for idx, v := range l.Data {
		if v != 0 {
			continue
		}
		rem := idx
		for a := 0; a < rank; a++ {
			coord[a] = rem / strides[a]
			rem %= strides[a]
		}
		for _, off := range offs {
			nidx := idx
			inside := true
			for a := 0; a < rank; a++ {
				c := coord[a] + off[a]
				if c < 0 || c >= l.Shape[a] {
					inside = false
					break
				}
				nidx += off[a] * strides[a]
			}
			if inside && l.Data[nidx] != 0 {
				out.Data[idx] = true
				break
			}
		}
	}
	return out, nil
}
