package threshold

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microseg3d/pkg/volume"
)

func TestHistogramOtsuBimodal(t *testing.T) {
	// Two equal peaks over a shallow valley: the split lands near the
	// midpoint bin center.
	hist := make([]float64, 11)
	for i := range hist {
		hist[i] = 1
	}
	hist[2] = 100
	hist[8] = 100

	got, err := HistogramOtsu(hist)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, 0.2)
}

func TestHistogramOtsuSkewed(t *testing.T) {
	// A dominant low peak and a small high peak: the split separates
	// them.
	hist := []float64{500, 400, 10, 5, 2, 1, 1, 40, 60, 30, 5}
	got, err := HistogramOtsu(hist)
	require.NoError(t, err)
	assert.Greater(t, got, 0.1)
	assert.Less(t, got, 0.7)
}

func TestHistogramOtsuDegenerate(t *testing.T) {
	// All-zero histogram: the epsilon bias keeps the search defined.
	got, err := HistogramOtsu(make([]float64, 16))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got, 0.0)
	assert.Less(t, got, 1.0)
}

func TestHistogramOtsuShort(t *testing.T) {
	_, err := HistogramOtsu([]float64{1})
	assert.ErrorIs(t, err, ErrShortHistogram)
}

func TestOtsuVolume(t *testing.T) {
	v, err := volume.New([]int{1, 4, 4}, volume.DefaultMeta())
	require.NoError(t, err)
	for i := range v.Data {
		if i < 8 {
			v.Data[i] = 10
		} else {
			v.Data[i] = 200
		}
	}

	tv, err := Otsu(v)
	require.NoError(t, err)
	assert.Greater(t, tv, 10.0)
	assert.Less(t, tv, 200.0)

	// Two classes recovered exactly.
	assert.Equal(t, 8, v.Threshold(tv).Count())
}

func TestOtsuFlatVolume(t *testing.T) {
	v, err := volume.New([]int{2, 2}, volume.DefaultMeta())
	require.NoError(t, err)
	for i := range v.Data {
		v.Data[i] = 7
	}
	tv, err := Otsu(v)
	require.NoError(t, err)
	assert.Equal(t, 7.0, tv)
}
