package levelset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microseg3d/pkg/volume"
)

func TestGradientMagnitudeRamp(t *testing.T) {
	// Linear ramp along x: |grad| = slope everywhere away from the
	// borders.
	v, err := volume.New([]int{1, 4, 8}, volume.DefaultMeta())
	require.NoError(t, err)
	for i := range v.Data {
		v.Data[i] = 2 * float64(i%8)
	}

	g, err := GradientMagnitude(v)
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		for x := 1; x < 7; x++ {
			assert.InDelta(t, 2, g.Data[y*8+x], 1e-12)
		}
	}
}

func TestGradientMagnitudeFlat(t *testing.T) {
	v, err := volume.New([]int{2, 3, 3}, volume.DefaultMeta())
	require.NoError(t, err)
	for i := range v.Data {
		v.Data[i] = 5
	}
	g, err := GradientMagnitude(v)
	require.NoError(t, err)
	for _, x := range g.Data {
		assert.Zero(t, x)
	}
}

func TestSigmoidNegativeSlope(t *testing.T) {
	v, err := volume.New([]int{1, 1, 3}, volume.DefaultMeta())
	require.NoError(t, err)
	copy(v.Data, []float64{0, 3, 10})

	out, err := Sigmoid(v, -0.5, 3.0, 0, 1)
	require.NoError(t, err)

	// Negative alpha inverts: low input maps high, high input maps
	// low, beta maps to the middle.
	assert.Greater(t, out.Data[0], 0.99)
	assert.InDelta(t, 0.5, out.Data[1], 1e-12)
	assert.Less(t, out.Data[2], 0.01)
	for _, x := range out.Data {
		assert.GreaterOrEqual(t, x, 0.0)
		assert.LessOrEqual(t, x, 1.0)
	}
}

func TestBinaryThreshold(t *testing.T) {
	v, err := volume.New([]int{1, 1, 4}, volume.DefaultMeta())
	require.NoError(t, err)
	copy(v.Data, []float64{-1, 0, 5, math.Inf(1)})

	m := BinaryThreshold(v, 0, math.Inf(1))
	assert.Equal(t, []bool{false, true, true, true}, m.Data)

	m = BinaryThreshold(v, 0, 4)
	assert.Equal(t, []bool{false, true, false, false}, m.Data)
}
