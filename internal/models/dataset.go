package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SampleFormat names the on-disk voxel encoding of a raw volume file.
type SampleFormat string

const (
	// Uint8 is one unsigned byte per voxel.
	Uint8 SampleFormat = "uint8"

	// Uint16LE is a little-endian unsigned 16-bit word per voxel.
	Uint16LE SampleFormat = "uint16"

	// Float32LE is a little-endian IEEE-754 float per voxel.
	Float32LE SampleFormat = "float32"
)

// ErrBadDims is returned for a dimension string that does not parse
// as ZxYxX.
var ErrBadDims = errors.New("models: dimensions must be ZxYxX")

// Dataset describes a raw microscopy volume on disk.
type Dataset struct {
	// Path is the raw file location.
	Path string

	// Shape is the voxel extent along (z, y, x).
	Shape [3]int

	// Format is the per-voxel sample encoding.
	Format SampleFormat

	// Spacing is the physical voxel size along (z, y, x) in
	// micrometers.
	Spacing [3]float64
}

// BytesPerSample returns the on-disk size of one voxel.
func (d *Dataset) BytesPerSample() (int, error) {
	switch d.Format {
	case Uint8:
		return 1, nil
	case Uint16LE:
		return 2, nil
	case Float32LE:
		return 4, nil
	default:
		return 0, fmt.Errorf("models: unknown sample format %q", d.Format)
	}
}

// NumVoxels returns the voxel count implied by the shape.
func (d *Dataset) NumVoxels() int {
	return d.Shape[0] * d.Shape[1] * d.Shape[2]
}

// ParseDims parses a ZxYxX dimension string such as "40x512x512".
func ParseDims(s string) ([3]int, error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 3 {
		return [3]int{}, fmt.Errorf("%w: %q", ErrBadDims, s)
	}
	var dims [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v <= 0 {
			return [3]int{}, fmt.Errorf("%w: %q", ErrBadDims, s)
		}
		dims[i] = v
	}
	return dims, nil
}
