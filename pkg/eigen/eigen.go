// Package eigen computes per-voxel eigenvalues of batched symmetric
// matrices, ordered by absolute value. Ridge and blob detectors read
// Hessian eigenvalues in this order: the sign carries concavity, the
// magnitude carries dominance.
package eigen

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrBadOrder is returned for a matrix order below 1.
	ErrBadOrder = errors.New("eigen: matrix order must be positive")

	// ErrBadBatch is returned when the flat input length is not a
	// multiple of order*order.
	ErrBadBatch = errors.New("eigen: data length is not a whole number of matrices")

	// ErrNotFactorizable is returned when the symmetric
	// eigendecomposition fails to converge.
	ErrNotFactorizable = errors.New("eigen: factorization failed")
)

// AbsoluteEigenvalues computes the eigenvalues of a batch of order×order
// symmetric matrices stored contiguously in mats, sorts each matrix's
// eigenvalues by ascending absolute value, and returns one slice per
// eigenvalue rank: out[r][k] is the rank-r eigenvalue of matrix k.
func AbsoluteEigenvalues(mats []float64, order int) ([][]float64, error) {
	if order < 1 {
		return nil, ErrBadOrder
	}
	step := order * order
	if len(mats)%step != 0 {
		return nil, fmt.Errorf("%w: %d values, order %d", ErrBadBatch, len(mats), order)
	}
	batch := len(mats) / step

	out := make([][]float64, order)
	for r := range out {
		out[r] = make([]float64, batch)
	}

	var es mat.EigenSym
	vals := make([]float64, order)
	for k := 0; k < batch; k++ {
		sym := mat.NewSymDense(order, mats[k*step:(k+1)*step])
		if ok := es.Factorize(sym, false); !ok {
			return nil, fmt.Errorf("%w: matrix %d", ErrNotFactorizable, k)
		}
		es.Values(vals)
		sortByAbs(vals)
		for r := 0; r < order; r++ {
			out[r][k] = vals[r]
		}
	}
	return out, nil
}

// sortByAbs orders values by ascending magnitude. Batches are 2x2 or
// 3x3 Hessians, so insertion sort is the right tool.
func sortByAbs(v []float64) {
	for i := 1; i < len(v); i++ {
		x := v[i]
		j := i - 1
		for j >= 0 && math.Abs(v[j]) > math.Abs(x) {
			v[j+1] = v[j]
			j--
		}
		v[j+1] = x
	}
}
