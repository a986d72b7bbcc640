package morphology

import (
	"math"

	"microseg3d/pkg/volume"
)

// DistanceTransform computes the exact Euclidean distance from every
// true voxel to its nearest false voxel; false voxels map to 0. A mask
// with no false voxel yields +Inf everywhere. Unit voxel spacing is
// assumed.
//
// The transform is the separable lower-envelope algorithm of
// Felzenszwalb and Huttenlocher applied to squared distances, one axis
// at a time, so the result is exact rather than a chamfer
// approximation.
func DistanceTransform(m *volume.Mask) (*volume.Volume, error) {
	out, err := volume.New(m.Shape, volume.DefaultMeta())
	if err != nil {
		return nil, err
	}
	// Seed with a large finite value rather than +Inf: the envelope
	// arithmetic below subtracts seeds from each other, and Inf-Inf
	// would poison the transform with NaNs.
	const far = 1e20
	for i, on := range m.Data {
		if on {
			out.Data[i] = far
		}
	}

	rank := len(m.Shape)
	strides := make([]int, rank)
	strides[rank-1] = 1
	for a := rank - 2; a >= 0; a-- {
		strides[a] = strides[a+1] * m.Shape[a+1]
	}

	// Scratch buffers sized for the longest axis.
	maxExtent := 0
	for _, s := range m.Shape {
		if s > maxExtent {
			maxExtent = s
		}
	}
	f := make([]float64, maxExtent)
	d := make([]float64, maxExtent)
	v := make([]int, maxExtent)
	z := make([]float64, maxExtent+1)

	total := len(out.Data)
	for axis := 0; axis < rank; axis++ {
		n := m.Shape[axis]
		stride := strides[axis]
		// Iterate over every 1D line along this axis.
		for base := 0; base < total; base++ {
			// base indexes a line start only when its coordinate along
			// axis is zero.
			if (base/stride)%n != 0 {
				continue
			}
			for i := 0; i < n; i++ {
				f[i] = out.Data[base+i*stride]
			}
			dt1d(f[:n], d[:n], v[:n], z[:n+1])
			for i := 0; i < n; i++ {
				out.Data[base+i*stride] = d[i]
			}
		}
	}

	for i, x := range out.Data {
		if x >= far {
			out.Data[i] = math.Inf(1)
		} else {
			out.Data[i] = math.Sqrt(x)
		}
	}
	return out, nil
}

// dt1d computes the 1D squared-distance transform of sampled function
// f into d, using v and z as lower-envelope scratch space.
func dt1d(f, d []float64, v []int, z []float64) {
	n := len(f)
	k := 0
	v[0] = 0
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)
	for q := 1; q < n; q++ {
		var s float64
		for {
			p := v[k]
			s = ((f[q] + float64(q*q)) - (f[p] + float64(p*p))) / float64(2*q-2*p)
			if s > z[k] {
				break
			}
			k--
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}
	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		dq := float64(q - v[k])
		d[q] = dq*dq + f[v[k]]
	}
}
