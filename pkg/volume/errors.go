package volume

import "errors"

var (
	// ErrBadRank is returned when an operation receives an array whose
	// rank is not 2 or 3.
	ErrBadRank = errors.New("volume: unsupported rank")

	// ErrBadShape is returned for non-positive extents or out-of-range
	// slice indices.
	ErrBadShape = errors.New("volume: invalid shape")

	// ErrShapeMismatch is returned when two arrays that must agree in
	// shape do not.
	ErrShapeMismatch = errors.New("volume: shape mismatch")
)
