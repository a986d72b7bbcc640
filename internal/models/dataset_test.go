package models

import (
	"errors"
	"testing"
)

// TestParseDims parses well-formed and malformed dimension strings.
func TestParseDims(t *testing.T) {
	dims, err := ParseDims("40x512x512")
	if err != nil {
		t.Fatalf("ParseDims failed: %v", err)
	}
	if dims != [3]int{40, 512, 512} {
		t.Errorf("Expected {40 512 512}, got %v", dims)
	}

	for _, bad := range []string{"", "40x512", "40x512x512x3", "axbxc", "0x4x4", "-1x4x4"} {
		if _, err := ParseDims(bad); !errors.Is(err, ErrBadDims) {
			t.Errorf("ParseDims(%q): expected ErrBadDims, got %v", bad, err)
		}
	}
}

// TestBytesPerSample covers the supported sample formats.
func TestBytesPerSample(t *testing.T) {
	cases := []struct {
		format SampleFormat
		want   int
	}{
		{Uint8, 1},
		{Uint16LE, 2},
		{Float32LE, 4},
	}
	for _, c := range cases {
		d := &Dataset{Format: c.format}
		got, err := d.BytesPerSample()
		if err != nil {
			t.Fatalf("BytesPerSample(%s) failed: %v", c.format, err)
		}
		if got != c.want {
			t.Errorf("BytesPerSample(%s) = %d, want %d", c.format, got, c.want)
		}
	}

	if _, err := (&Dataset{Format: "int64"}).BytesPerSample(); err == nil {
		t.Errorf("Expected error for unknown format")
	}
}

// TestNumVoxels multiplies the shape out.
func TestNumVoxels(t *testing.T) {
	d := &Dataset{Shape: [3]int{4, 8, 16}}
	if d.NumVoxels() != 512 {
		t.Errorf("Expected 512 voxels, got %d", d.NumVoxels())
	}
}
