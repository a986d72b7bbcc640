package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microseg3d/pkg/volume"
)

func midFrameMask(t *testing.T) *volume.Mask {
	t.Helper()
	m, err := volume.NewMask([]int{9, 9})
	require.NoError(t, err)
	// Two well-separated 3x3 blocks.
	for y := 1; y < 4; y++ {
		for x := 1; x < 4; x++ {
			m.Data[y*9+x] = true
		}
	}
	for y := 5; y < 8; y++ {
		for x := 5; x < 8; x++ {
			m.Data[y*9+x] = true
		}
	}
	return m
}

func TestFromMidFrameBackgroundSeed(t *testing.T) {
	bw := midFrameMask(t)
	sd, err := FromMidFrame(bw, []int{5, 9, 9}, 2, 2, true)
	require.NoError(t, err)

	// The whole z=0 slice carries the background id 1.
	for i := 0; i < 81; i++ {
		assert.Equal(t, int32(1), sd.Data[i])
	}

	// One centroid seed per component, ids 2 and 3, in the mid frame.
	var ids []int32
	for i := 81; i < len(sd.Data); i++ {
		if sd.Data[i] != 0 {
			ids = append(ids, sd.Data[i])
			// All component seeds live in slice z=2.
			assert.GreaterOrEqual(t, i, 2*81)
			assert.Less(t, i, 3*81)
		}
	}
	assert.ElementsMatch(t, []int32{2, 3}, ids)

	// Centroids of the blocks are (2,2) and (6,6).
	assert.Equal(t, int32(2), sd.Data[(2*9+2)*9+2])
	assert.Equal(t, int32(3), sd.Data[(2*9+6)*9+6])
}

func TestFromMidFrameNoBackground(t *testing.T) {
	bw := midFrameMask(t)
	sd, err := FromMidFrame(bw, []int{5, 9, 9}, 1, 2, false)
	require.NoError(t, err)

	count := 0
	for _, v := range sd.Data {
		if v != 0 {
			count++
			assert.Contains(t, []int32{1, 2}, v)
		}
	}
	assert.Equal(t, 2, count)
}

func TestFromMidFrameSmallObjectFilter(t *testing.T) {
	bw := midFrameMask(t)
	// Add a lone voxel that must be filtered out with holeMin=2.
	bw.Data[0] = true

	sd, err := FromMidFrame(bw, []int{3, 9, 9}, 1, 2, false)
	require.NoError(t, err)
	count := 0
	for _, v := range sd.Data {
		if v != 0 {
			count++
		}
	}
	assert.Equal(t, 2, count, "lone voxel should not produce a seed")
}

func TestFromMidFrameValidation(t *testing.T) {
	bw := midFrameMask(t)

	_, err := FromMidFrame(bw, []int{5, 9, 9}, 7, 2, true)
	assert.ErrorIs(t, err, volume.ErrBadShape)

	_, err = FromMidFrame(bw, []int{5, 8, 8}, 2, 2, true)
	assert.ErrorIs(t, err, volume.ErrShapeMismatch)
}

func TestMidFrameZ(t *testing.T) {
	v, err := volume.New([]int{7, 4, 4}, volume.DefaultMeta())
	require.NoError(t, err)
	mid, err := MidFrame(v, MidFrameZ)
	require.NoError(t, err)
	assert.Equal(t, 3, mid)
}

func TestMidFrameIntensity(t *testing.T) {
	v, err := volume.New([]int{8, 6, 6}, volume.DefaultMeta())
	require.NoError(t, err)
	// Bright foreground concentrated in the upper half of the stack.
	for zz := 4; zz < 8; zz++ {
		for i := zz * 36; i < (zz+1)*36; i++ {
			v.Data[i] = 100
		}
	}
	mid, err := MidFrame(v, MidFrameIntensity)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, mid, 0)
	assert.Less(t, mid, 8)
}

func TestMidFrameUnknownMethod(t *testing.T) {
	v, err := volume.New([]int{4, 4, 4}, volume.DefaultMeta())
	require.NoError(t, err)
	_, err = MidFrame(v, "gradient")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}
