package morphology

import (
	"fmt"

	"microseg3d/pkg/volume"
)

// MedialAxis reduces a 2D mask to its unit-width centerline using
// Zhang-Suen two-subiteration thinning. The skeleton stays connected
// wherever the input is connected, which is the property the thinning
// safe zone depends on.
func MedialAxis(m *volume.Mask) (*volume.Mask, error) {
	if m.Rank() != 2 {
		return nil, fmt.Errorf("%w: rank %d", ErrNeed2D, m.Rank())
	}
	ny, nx := m.Shape[0], m.Shape[1]
	cur := m.Clone()

	at := func(y, x int) bool {
		if y < 0 || y >= ny || x < 0 || x >= nx {
			return false
		}
		return cur.Data[y*nx+x]
	}

	var toClear []int
	for {
		changed := false
		for sub := 0; sub < 2; sub++ {
			toClear = toClear[:0]
			for y := 0; y < ny; y++ {
				for x := 0; x < nx; x++ {
					if !cur.Data[y*nx+x] {
						continue
					}
					// Neighbors P2..P9 clockwise from north.
					p2 := at(y-1, x)
					p3 := at(y-1, x+1)
					p4 := at(y, x+1)
					p5 := at(y+1, x+1)
					p6 := at(y+1, x)
					p7 := at(y+1, x-1)
					p8 := at(y, x-1)
					p9 := at(y-1, x-1)

					b := 0
					for _, p := range []bool{p2, p3, p4, p5, p6, p7, p8, p9} {
						if p {
							b++
						}
					}
					if b < 2 || b > 6 {
						continue
					}

					// Number of 0->1 transitions in the P2..P9 cycle.
					seq := []bool{p2, p3, p4, p5, p6, p7, p8, p9, p2}
					a := 0
					for i := 0; i < 8; i++ {
						if !seq[i] && seq[i+1] {
							a++
						}
					}
					if a != 1 {
						continue
					}

					if sub == 0 {
						if (p2 && p4 && p6) || (p4 && p6 && p8) {
							continue
						}
					} else {
						if (p2 && p4 && p8) || (p2 && p6 && p8) {
							continue
						}
					}
					toClear = append(toClear, y*nx+x)
				}
			}
			for _, idx := range toClear {
				cur.Data[idx] = false
			}
			if len(toClear) > 0 {
				changed = true
			}
		}
		if !changed {
			return cur, nil
		}
	}
}
