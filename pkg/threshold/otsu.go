// Package threshold implements Otsu threshold selection, both over a
// caller-supplied histogram and directly over volume intensities.
package threshold

import (
	"errors"

	"gonum.org/v1/gonum/floats"

	"microseg3d/pkg/volume"
)

// ErrShortHistogram is returned when a histogram has fewer than two
// bins, leaving no split point to evaluate.
var ErrShortHistogram = errors.New("threshold: histogram needs at least two bins")

// HistogramOtsu returns the threshold in [0, 1) maximizing the
// between-class variance of a histogram whose bins are assumed
// uniformly spaced over [0, 1]. Every bin receives a small bias so an
// all-zero histogram yields a well-defined answer instead of a
// division error. Ties resolve to the first maximizing split.
func HistogramOtsu(hist []float64) (float64, error) {
	n := len(hist)
	if n < 2 {
		return 0, ErrShortHistogram
	}

	h := make([]float64, n)
	for i, v := range hist {
		h[i] = v + 1e-5
	}

	binSize := 1 / float64(n-1)
	centers := make([]float64, n)
	for i := range centers {
		centers[i] = float64(i) * binSize
	}

	// Class 1: cumulative weight and mean from the left.
	weight1 := make([]float64, n)
	floats.CumSum(weight1, h)
	hc := make([]float64, n)
	for i := range hc {
		hc[i] = h[i] * centers[i]
	}
	mean1 := make([]float64, n)
	floats.CumSum(mean1, hc)
	for i := range mean1 {
		mean1[i] /= weight1[i]
	}

	// Class 2: the same from the right, computed by reversing,
	// accumulating and reversing back.
	hRev := make([]float64, n)
	hcRev := make([]float64, n)
	for i := 0; i < n; i++ {
		hRev[i] = h[n-1-i]
		hcRev[i] = hc[n-1-i]
	}
	weight2 := make([]float64, n)
	floats.CumSum(weight2, hRev)
	mean2 := make([]float64, n)
	floats.CumSum(mean2, hcRev)
	for i := range mean2 {
		mean2[i] /= weight2[i]
	}
	floats.Reverse(weight2)
	floats.Reverse(mean2)

	// The last split has an empty class 2; clip the ends to pair
	// weight1[i] with the class-2 statistics starting at i+1.
	variance := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		d := mean1[i] - mean2[i+1]
		variance[i] = weight1[i] * weight2[i+1] * d * d
	}

	return centers[floats.MaxIdx(variance)], nil
}

// Otsu returns the intensity threshold separating a volume into two
// classes with maximal between-class variance, using a 256-bin
// histogram spanning the volume's intensity range.
func Otsu(v *volume.Volume) (float64, error) {
	const bins = 256
	lo := floats.Min(v.Data)
	hi := floats.Max(v.Data)
	if hi == lo {
		return lo, nil
	}

	hist := make([]float64, bins)
	scale := float64(bins-1) / (hi - lo)
	for _, x := range v.Data {
		b := int((x - lo) * scale)
		hist[b]++
	}

	t, err := HistogramOtsu(hist)
	if err != nil {
		return 0, err
	}
	return lo + t*(hi-lo), nil
}
