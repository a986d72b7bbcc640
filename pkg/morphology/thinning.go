package morphology

import (
	"fmt"

	"microseg3d/pkg/volume"
)

// TopologyPreservingThinning erodes a rank-3 mask by a ball of radius
// thin while refusing to remove voxels close to the per-slice medial
// axis. Voxels farther than minThickness from the slice skeleton are
// "safe" to remove; everything nearer is protected, so thin connected
// strands survive the pass. One call performs a single erosion pass;
// callers iterate for stronger thinning.
//
// The input mask is mutated and returned.
func TopologyPreservingThinning(bw *volume.Mask, minThickness float64, thin int) (*volume.Mask, error) {
	if bw.Rank() != 3 {
		return nil, fmt.Errorf("%w: rank %d", ErrNeed3D, bw.Rank())
	}

	safe, err := volume.NewMask(bw.Shape)
	if err != nil {
		return nil, err
	}
	for zz := 0; zz < bw.Shape[0]; zz++ {
		sl, err := bw.SliceZ(zz)
		if err != nil {
			return nil, err
		}
		if !sl.Any() {
			continue
		}
		ctl, err := MedialAxis(sl)
		if err != nil {
			return nil, err
		}
		// Distance of every voxel from the slice centerline.
		dist, err := DistanceTransform(ctl.Not())
		if err != nil {
			return nil, err
		}
		safeSlice := dist.Threshold(minThickness + 1e-5)
		if err := safe.SetSliceZ(zz, safeSlice); err != nil {
			return nil, err
		}
	}

	eroded, err := Erode(bw, Ball(thin))
	if err != nil {
		return nil, err
	}

	// Removal candidates are the erosion boundary: present before,
	// gone after.
	for i := range bw.Data {
		rmCandidate := bw.Data[i] && !eroded.Data[i]
		if safe.Data[i] && rmCandidate {
			bw.Data[i] = false
		}
	}
	return bw, nil
}
