// Package seed derives watershed/level-set seed volumes from a single
// representative z-frame of a thresholded volume.
package seed

import (
	"errors"
	"fmt"
	"math"

	"microseg3d/pkg/morphology"
	"microseg3d/pkg/threshold"
	"microseg3d/pkg/volume"
)

// MidFrameMethod selects how the representative z-frame is chosen.
type MidFrameMethod string

const (
	// MidFrameZ picks the middle z-slice of the volume.
	MidFrameZ MidFrameMethod = "z"

	// MidFrameIntensity picks the frame from the Otsu split of the
	// per-slice foreground-count profile.
	MidFrameIntensity MidFrameMethod = "intensity"
)

// ErrUnknownMethod is returned for a mid-frame method this package
// does not implement.
var ErrUnknownMethod = errors.New("seed: unknown mid-frame method")

// MidFrame returns the representative z-frame index of a rank-3
// intensity volume according to method.
func MidFrame(smooth *volume.Volume, method MidFrameMethod) (int, error) {
	if smooth.Rank() != 3 {
		return 0, fmt.Errorf("%w: rank %d", volume.ErrBadRank, smooth.Rank())
	}
	nz, ny, nx := smooth.Shape[0], smooth.Shape[1], smooth.Shape[2]

	switch method {
	case MidFrameZ:
		return nz / 2, nil

	case MidFrameIntensity:
		t, err := threshold.Otsu(smooth)
		if err != nil {
			return 0, err
		}
		bw := smooth.Threshold(t)
		profile := make([]float64, nz)
		for zz := 0; zz < nz; zz++ {
			n := 0
			for i := zz * ny * nx; i < (zz+1)*ny*nx; i++ {
				if bw.Data[i] {
					n++
				}
			}
			profile[zz] = float64(n)
		}
		split, err := threshold.HistogramOtsu(profile)
		if err != nil {
			return 0, err
		}
		mid := int(math.Round(split * float64(nz)))
		if mid >= nz {
			mid = nz - 1
		}
		return mid, nil

	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

// FromMidFrame builds a sparse rank-3 seed volume of the given shape
// from the foreground components of a 2D mid-frame mask. Components
// smaller than holeMin voxels are discarded; each survivor contributes
// one seed voxel at its rounded centroid within the midFrame slice,
// with successive ids. With bgSeed set, the whole z=0 slice receives
// id 1 as a background anchor and component ids start at 2.
func FromMidFrame(bw *volume.Mask, shape []int, midFrame, holeMin int, bgSeed bool) (*volume.Labels, error) {
	if bw.Rank() != 2 {
		return nil, fmt.Errorf("%w: mid-frame mask has rank %d", volume.ErrBadRank, bw.Rank())
	}
	if len(shape) != 3 {
		return nil, fmt.Errorf("%w: seed shape %v", volume.ErrBadRank, shape)
	}
	nz, ny, nx := shape[0], shape[1], shape[2]
	if bw.Shape[0] != ny || bw.Shape[1] != nx {
		return nil, fmt.Errorf("%w: frame %v into %v", volume.ErrShapeMismatch, bw.Shape, shape)
	}
	if midFrame < 0 || midFrame >= nz {
		return nil, fmt.Errorf("%w: mid frame %d of %d", volume.ErrBadShape, midFrame, nz)
	}

	cleaned, err := morphology.RemoveSmallObjects(bw, holeMin)
	if err != nil {
		return nil, err
	}
	lab, _, err := morphology.Label(cleaned, morphology.ConnEdges)
	if err != nil {
		return nil, err
	}
	regions := morphology.Regions(lab)

	out, err := volume.NewLabels(shape)
	if err != nil {
		return nil, err
	}

	count := int32(0)
	if bgSeed {
		count++
		for i := 0; i < ny*nx; i++ {
			out.Data[i] = count
		}
	}

	for _, reg := range regions {
		py := int(math.Round(reg.Centroid[0]))
		px := int(math.Round(reg.Centroid[1]))
		if py < 0 || py >= ny || px < 0 || px >= nx {
			continue
		}
		count++
		out.Data[(midFrame*ny+py)*nx+px] = count
	}
	return out, nil
}
