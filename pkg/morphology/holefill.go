package morphology

import (
	"fmt"

	"microseg3d/pkg/volume"
)

// FillHoles fills enclosed background regions whose size lies in
// [holeMin, holeMax] voxels. Background components are found with
// face connectivity; components outside the size window are left
// untouched (too large means true background, too small means noise).
// The original foreground is always retained: the result is the union
// of the input mask and the selected fill regions.
//
// For a rank-3 mask with fill2D set, each z-slice is filled
// independently, so a cavity spanning slices is judged per slice, not
// volumetrically. Ranks other than 2 and 3 are rejected.
func FillHoles(bw *volume.Mask, holeMin, holeMax int, fill2D bool) (*volume.Mask, error) {
	switch bw.Rank() {
	case 2:
		return fillHolesFlat(bw, holeMin, holeMax)
	case 3:
		if fill2D {
			return volume.ApplySlices(bw, func(sl *volume.Mask) (*volume.Mask, error) {
				return fillHolesFlat(sl, holeMin, holeMax)
			})
		}
		return fillHolesFlat(bw, holeMin, holeMax)
	default:
		return nil, fmt.Errorf("%w: rank %d", volume.ErrBadRank, bw.Rank())
	}
}

// fillHolesFlat labels the inverted mask with face connectivity and
// keeps components whose size falls inside the window.
func fillHolesFlat(bw *volume.Mask, holeMin, holeMax int) (*volume.Mask, error) {
	lab, n, err := Label(bw.Not(), ConnFaces)
	if err != nil {
		return nil, err
	}
	sizes := ComponentSizes(lab, n)

	out := bw.Clone()
	for i, id := range lab.Data {
		if id == 0 {
			continue
		}
		if s := sizes[id]; s >= holeMin && s <= holeMax {
			out.Data[i] = true
		}
	}
	return out, nil
}
