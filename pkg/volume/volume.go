// Package volume defines the array types shared by all segmentation
// primitives: scalar intensity volumes, boolean occupancy masks and
// integer label maps. All three store their voxels as a flat slice in
// row-major (z, y, x) order with an explicit shape, following the
// layout used throughout the reconstruction code this module grew out
// of. Arrays are either rank 2 (y, x) or rank 3 (z, y, x).
package volume

import "fmt"

// Meta carries the physical interpretation of a volume: voxel spacing
// and origin along (z, y, x) in micrometers. It travels with the data
// explicitly instead of being recovered from an image object at
// runtime.
type Meta struct {
	// Spacing is the physical size of one voxel along z, y, x.
	Spacing [3]float64

	// Origin is the physical position of voxel (0, 0, 0).
	Origin [3]float64
}

// DefaultMeta returns unit spacing at the coordinate origin.
func DefaultMeta() Meta {
	return Meta{Spacing: [3]float64{1, 1, 1}}
}

// Volume is a scalar intensity field of rank 2 or 3.
type Volume struct {
	// Data holds the voxel values in row-major (z, y, x) order.
	Data []float64

	// Shape is the extent per axis, outermost first.
	Shape []int

	// Meta is the physical metadata attached to this volume.
	Meta Meta
}

// Mask is a boolean occupancy field of rank 2 or 3.
type Mask struct {
	Data  []bool
	Shape []int
}

// Labels is an integer component field of rank 2 or 3. Zero is
// background; positive values identify distinct regions.
type Labels struct {
	Data  []int32
	Shape []int
}

func numel(shape []int) (int, error) {
	if len(shape) != 2 && len(shape) != 3 {
		return 0, fmt.Errorf("%w: rank %d", ErrBadRank, len(shape))
	}
	n := 1
	for _, s := range shape {
		if s <= 0 {
			return 0, fmt.Errorf("%w: extent %d", ErrBadShape, s)
		}
		n *= s
	}
	return n, nil
}

// New allocates a zero-filled Volume with the given shape and metadata.
func New(shape []int, meta Meta) (*Volume, error) {
	n, err := numel(shape)
	if err != nil {
		return nil, err
	}
	return &Volume{
		Data:  make([]float64, n),
		Shape: append([]int(nil), shape...),
		Meta:  meta,
	}, nil
}

// NewLike wraps data in a new Volume carrying the shape and metadata
// of ref. This is the explicit replacement for constructing "an image
// like that one": the caller owns data and the metadata transfer is
// visible at the call site.
func NewLike(data []float64, ref *Volume) (*Volume, error) {
	if len(data) != len(ref.Data) {
		return nil, fmt.Errorf("%w: have %d values, reference holds %d",
			ErrShapeMismatch, len(data), len(ref.Data))
	}
	return &Volume{
		Data:  data,
		Shape: append([]int(nil), ref.Shape...),
		Meta:  ref.Meta,
	}, nil
}

// NewMask allocates an all-false Mask with the given shape.
func NewMask(shape []int) (*Mask, error) {
	n, err := numel(shape)
	if err != nil {
		return nil, err
	}
	return &Mask{Data: make([]bool, n), Shape: append([]int(nil), shape...)}, nil
}

// NewLabels allocates an all-zero label map with the given shape.
func NewLabels(shape []int) (*Labels, error) {
	n, err := numel(shape)
	if err != nil {
		return nil, err
	}
	return &Labels{Data: make([]int32, n), Shape: append([]int(nil), shape...)}, nil
}

// Rank returns the number of axes.
func (v *Volume) Rank() int { return len(v.Shape) }

// Rank returns the number of axes.
func (m *Mask) Rank() int { return len(m.Shape) }

// Rank returns the number of axes.
func (l *Labels) Rank() int { return len(l.Shape) }

// SameShape reports whether a and b have identical extents per axis.
func SameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Threshold returns the mask of voxels strictly above t.
func (v *Volume) Threshold(t float64) *Mask {
	out := &Mask{Data: make([]bool, len(v.Data)), Shape: append([]int(nil), v.Shape...)}
	for i, x := range v.Data {
		out.Data[i] = x > t
	}
	return out
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	out := &Mask{Data: make([]bool, len(m.Data)), Shape: append([]int(nil), m.Shape...)}
	copy(out.Data, m.Data)
	return out
}

// Not returns the voxel-wise complement.
func (m *Mask) Not() *Mask {
	out := &Mask{Data: make([]bool, len(m.Data)), Shape: append([]int(nil), m.Shape...)}
	for i, b := range m.Data {
		out.Data[i] = !b
	}
	return out
}

// Or sets m to the voxel-wise union of m and other.
func (m *Mask) Or(other *Mask) error {
	if !SameShape(m.Shape, other.Shape) {
		return fmt.Errorf("%w: %v vs %v", ErrShapeMismatch, m.Shape, other.Shape)
	}
	for i, b := range other.Data {
		if b {
			m.Data[i] = true
		}
	}
	return nil
}

// Count returns the number of true voxels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Data {
		if b {
			n++
		}
	}
	return n
}

// Any reports whether at least one voxel is true.
func (m *Mask) Any() bool {
	for _, b := range m.Data {
		if b {
			return true
		}
	}
	return false
}

// Bytes flattens the mask into a byte volume, mapping true voxels to
// inside and false voxels to outside.
func (m *Mask) Bytes(inside, outside byte) []byte {
	out := make([]byte, len(m.Data))
	for i, b := range m.Data {
		if b {
			out[i] = inside
		} else {
			out[i] = outside
		}
	}
	return out
}

// Foreground returns the mask of strictly positive labels.
func (l *Labels) Foreground() *Mask {
	out := &Mask{Data: make([]bool, len(l.Data)), Shape: append([]int(nil), l.Shape...)}
	for i, v := range l.Data {
		out.Data[i] = v > 0
	}
	return out
}

// SliceZ extracts z-slice zz of a rank-3 mask as a rank-2 mask. The
// returned slice owns its data.
func (m *Mask) SliceZ(zz int) (*Mask, error) {
	if m.Rank() != 3 {
		return nil, fmt.Errorf("%w: rank %d", ErrBadRank, m.Rank())
	}
	if zz < 0 || zz >= m.Shape[0] {
		return nil, fmt.Errorf("%w: z=%d of %d", ErrBadShape, zz, m.Shape[0])
	}
	ny, nx := m.Shape[1], m.Shape[2]
	out := &Mask{Data: make([]bool, ny*nx), Shape: []int{ny, nx}}
	copy(out.Data, m.Data[zz*ny*nx:(zz+1)*ny*nx])
	return out, nil
}

// SetSliceZ writes a rank-2 mask into z-slice zz of a rank-3 mask.
func (m *Mask) SetSliceZ(zz int, sl *Mask) error {
	if m.Rank() != 3 || sl.Rank() != 2 {
		return fmt.Errorf("%w: rank %d into rank %d", ErrBadRank, sl.Rank(), m.Rank())
	}
	ny, nx := m.Shape[1], m.Shape[2]
	if sl.Shape[0] != ny || sl.Shape[1] != nx {
		return fmt.Errorf("%w: slice %v into %v", ErrShapeMismatch, sl.Shape, m.Shape)
	}
	copy(m.Data[zz*ny*nx:(zz+1)*ny*nx], sl.Data)
	return nil
}
