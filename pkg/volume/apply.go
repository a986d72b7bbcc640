package volume

import "fmt"

// SliceOp transforms one 2D mask into another of the same shape.
type SliceOp func(sl *Mask) (*Mask, error)

// ApplySlices applies a 2D operator independently to every z-slice of
// a rank-3 mask and reassembles the results. Several morphological
// routines (hole filling, thinning safe zones) are defined per slice;
// this is the single loop they all share.
func ApplySlices(m *Mask, op SliceOp) (*Mask, error) {
	if m.Rank() != 3 {
		return nil, fmt.Errorf("%w: rank %d", ErrBadRank, m.Rank())
	}
	out, err := NewMask(m.Shape)
	if err != nil {
		return nil, err
	}
	for zz := 0; zz < m.Shape[0]; zz++ {
		sl, err := m.SliceZ(zz)
		if err != nil {
			return nil, err
		}
		res, err := op(sl)
		if err != nil {
			return nil, fmt.Errorf("slice %d: %w", zz, err)
		}
		if err := out.SetSliceZ(zz, res); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DivideNonzero divides a by b element-wise, substituting a near-zero
// denominator where b is exactly zero. The substitution trades exact
// arithmetic for availability; callers threshold the result anyway.
func DivideNonzero(a, b []float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: %d vs %d values", ErrShapeMismatch, len(a), len(b))
	}
	out := make([]float64, len(a))
	for i := range a {
		d := b[i]
		if d == 0 {
			d = 1e-10
		}
		out[i] = a[i] / d
	}
	return out, nil
}
