package morphology

import "errors"

var (
	// ErrBadConnectivity is returned when a connectivity outside the
	// supported range is requested.
	ErrBadConnectivity = errors.New("morphology: invalid connectivity")

	// ErrNeed3D is returned by operations defined only on rank-3
	// masks.
	ErrNeed3D = errors.New("morphology: operation requires a 3D mask")

	// ErrNeed2D is returned by operations defined only on rank-2
	// masks.
	ErrNeed2D = errors.New("morphology: operation requires a 2D mask")
)
