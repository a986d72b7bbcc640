package levelset

import (
	"container/heap"
	"errors"
	"fmt"
	"math"

	"microseg3d/pkg/volume"
)

// ErrNoTrialPoints is returned when fast marching is started without
// any seed voxel.
var ErrNoTrialPoints = errors.New("levelset: fast marching needs at least one trial point")

// FastMarch propagates a front from the trial voxels outward over the
// speed map and returns the first-arrival-time volume. The Eikonal
// equation |grad T| = 1/speed is solved with the first-order upwind
// scheme on a min-heap, so times are finalized in increasing order.
// Voxels with non-positive speed are never reached and keep +Inf.
func FastMarch(speed *volume.Volume, trial *volume.Mask) (*volume.Volume, error) {
	if !volume.SameShape(speed.Shape, trial.Shape) {
		return nil, fmt.Errorf("%w: speed %v vs trial %v",
			volume.ErrShapeMismatch, speed.Shape, trial.Shape)
	}
	if !trial.Any() {
		return nil, ErrNoTrialPoints
	}

	rank := speed.Rank()
	str := strides(speed.Shape)

	times := make([]float64, len(speed.Data))
	known := make([]bool, len(speed.Data))
	for i := range times {
		times[i] = math.Inf(1)
	}

	h := &timeHeap{}
	heap.Init(h)
	for i, on := range trial.Data {
		if on {
			times[i] = 0
			heap.Push(h, timeEntry{idx: i, t: 0})
		}
	}

	coord := make([]int, rank)
	axMin := make([]float64, rank)
	for h.Len() > 0 {
		e := heap.Pop(h).(timeEntry)
		if known[e.idx] || e.t > times[e.idx] {
			continue
		}
		known[e.idx] = true

		rem := e.idx
		for a := 0; a < rank; a++ {
			coord[a] = rem / str[a]
			rem %= str[a]
		}

		for a := 0; a < rank; a++ {
			for _, dir := range []int{-1, 1} {
				c := coord[a] + dir
				if c < 0 || c >= speed.Shape[a] {
					continue
				}
				nidx := e.idx + dir*str[a]
				if known[nidx] {
					continue
				}
				t := solveEikonal(times, known, speed, nidx, coord, a, dir, str, axMin)
				if t < times[nidx] {
					times[nidx] = t
					heap.Push(h, timeEntry{idx: nidx, t: t})
				}
			}
		}
	}

	out, err := volume.New(speed.Shape, speed.Meta)
	if err != nil {
		return nil, err
	}
	copy(out.Data, times)
	return out, nil
}

// solveEikonal computes the upwind arrival time at voxel idx from its
// finalized neighbors. The per-axis minima are combined by solving
//
//	sum_a max(T - Ta, 0)^2 = (1/speed)^2
//
// using the largest consistent subset of axes.
func solveEikonal(times []float64, known []bool, speed *volume.Volume, idx int,
	fromCoord []int, fromAxis, fromDir int, str []int, axMin []float64) float64 {

	rank := speed.Rank()
	f := speed.Data[idx]
	if f <= 0 {
		return math.Inf(1)
	}
	inv := 1 / f

	// Coordinate of idx: the popped voxel's coordinate displaced along
	// fromAxis.
	m := 0
	for a := 0; a < rank; a++ {
		c := fromCoord[a]
		if a == fromAxis {
			c += fromDir
		}
		best := math.Inf(1)
		if c > 0 {
			n := idx - str[a]
			if known[n] && times[n] < best {
				best = times[n]
			}
		}
		if c < speed.Shape[a]-1 {
			n := idx + str[a]
			if known[n] && times[n] < best {
				best = times[n]
			}
		}
		if !math.IsInf(best, 1) {
			axMin[m] = best
			m++
		}
	}
	if m == 0 {
		return math.Inf(1)
	}

	// Ascending insertion sort of the few axis minima.
	mins := axMin[:m]
	for i := 1; i < m; i++ {
		x := mins[i]
		j := i - 1
		for j >= 0 && mins[j] > x {
			mins[j+1] = mins[j]
			j--
		}
		mins[j+1] = x
	}

	// Try the largest k whose solution lies above every used value.
	for k := m; k >= 1; k-- {
		var sum, sumSq float64
		for i := 0; i < k; i++ {
			sum += mins[i]
			sumSq += mins[i] * mins[i]
		}
		disc := sum*sum - float64(k)*(sumSq-inv*inv)
		if disc < 0 {
			continue
		}
		t := (sum + math.Sqrt(disc)) / float64(k)
		if t >= mins[k-1] {
			return t
		}
	}
	return mins[0] + inv
}

type timeEntry struct {
	idx int
	t   float64
}

type timeHeap []timeEntry

func (h timeHeap) Len() int            { return len(h) }
func (h timeHeap) Less(i, j int) bool  { return h[i].t < h[j].t }
func (h timeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *timeHeap) Push(x interface{}) { *h = append(*h, x.(timeEntry)) }
func (h *timeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
