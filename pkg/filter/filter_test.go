package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microseg3d/pkg/volume"
)

func TestNormalizeIntensityRange(t *testing.T) {
	v, err := volume.New([]int{1, 2, 5}, volume.DefaultMeta())
	require.NoError(t, err)
	copy(v.Data, []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100})

	out, err := NormalizeIntensity(v, 0, 100)
	require.NoError(t, err)
	assert.InDelta(t, 0, out.Data[0], 1e-12)
	assert.InDelta(t, 1, out.Data[9], 1e-12)
	for _, x := range out.Data {
		assert.GreaterOrEqual(t, x, 0.0)
		assert.LessOrEqual(t, x, 1.0)
	}
}

func TestNormalizeIntensityClips(t *testing.T) {
	v, err := volume.New([]int{1, 1, 10}, volume.DefaultMeta())
	require.NoError(t, err)
	copy(v.Data, []float64{0, 1, 1, 1, 1, 1, 1, 1, 1, 1000})

	// Clipping at the 10th/90th percentiles flattens the outliers.
	out, err := NormalizeIntensity(v, 10, 90)
	require.NoError(t, err)
	assert.Equal(t, out.Data[1], out.Data[8])
	assert.InDelta(t, 1, out.Data[9], 1e-12)
}

func TestNormalizeIntensityBadBounds(t *testing.T) {
	v, err := volume.New([]int{1, 1, 4}, volume.DefaultMeta())
	require.NoError(t, err)
	_, err = NormalizeIntensity(v, 90, 10)
	assert.ErrorIs(t, err, ErrBadPercentile)
	_, err = NormalizeIntensity(v, -1, 50)
	assert.ErrorIs(t, err, ErrBadPercentile)
}

func TestGaussianSmoothPreservesConstant(t *testing.T) {
	v, err := volume.New([]int{4, 5, 6}, volume.DefaultMeta())
	require.NoError(t, err)
	for i := range v.Data {
		v.Data[i] = 3.25
	}
	out, err := GaussianSmooth3D(v, 1.5)
	require.NoError(t, err)
	for i, x := range out.Data {
		assert.InDeltaf(t, 3.25, x, 1e-9, "voxel %d", i)
	}
}

func TestGaussianSmoothBlursImpulse(t *testing.T) {
	v, err := volume.New([]int{7, 7, 7}, volume.DefaultMeta())
	require.NoError(t, err)
	center := (3*7+3)*7 + 3
	v.Data[center] = 1

	out, err := GaussianSmooth3D(v, 1)
	require.NoError(t, err)
	assert.Less(t, out.Data[center], 1.0)
	assert.Greater(t, out.Data[center], out.Data[center+1])
	assert.Greater(t, out.Data[center+1], 0.0)
}

func TestGaussianSmoothSigmaZeroCopies(t *testing.T) {
	v, err := volume.New([]int{2, 2, 2}, volume.DefaultMeta())
	require.NoError(t, err)
	v.Data[3] = 9
	out, err := GaussianSmooth3D(v, 0)
	require.NoError(t, err)
	assert.Equal(t, v.Data, out.Data)

	// The copy owns its voxels.
	out.Data[0] = 5
	assert.Zero(t, v.Data[0])
}
