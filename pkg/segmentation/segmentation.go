// Package segmentation contains the two level-set segmentation
// drivers. Each consumes a smoothed intensity volume and a seed label
// volume, delegates the PDE evolution to the levelset engine, and
// post-processes the result with the morphology primitives.
package segmentation

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"microseg3d/pkg/levelset"
	"microseg3d/pkg/morphology"
	"microseg3d/pkg/volume"
)

// ChanVeseParams are the caller-tunable knobs of the dense Chan-Vese
// driver. The remaining solver parameters are fixed: Lambda1 =
// Lambda2 = 1, no area or volume term, atan-regularized Heaviside.
type ChanVeseParams struct {
	// Iterations bounds the level set evolution.
	Iterations int

	// MaxRMSError stops the evolution early once the per-iteration
	// RMS level set change falls below it.
	MaxRMSError float64

	// Epsilon is the Heaviside regularization width.
	Epsilon float64

	// CurvatureWeight scales the boundary-length regularizer.
	CurvatureWeight float64

	// SmoothingWeight is the reinitialization smoothing weight.
	SmoothingWeight float64
}

// Post-processing window and structuring element fixed by the driver.
const (
	postHoleMin    = 100
	postHoleMax    = 1500
	postOpenRadius = 4
)

// ChanVese segments a smoothed intensity volume around seed regions
// with a dense Chan-Vese level set. The initial level set is the
// signed distance built from the seed (positive inside, negative
// outside, zero on the outer seed boundary); the evolved set is
// thresholded at zero, holes in [100, 1500] voxels are filled
// volumetrically, and a radius-4 ball opening removes thin spurious
// connections. Encode the returned mask with Bytes(255, 0) for a
// {0, 255} byte volume.
func ChanVese(smooth *volume.Volume, seed *volume.Labels, p ChanVeseParams) (*volume.Mask, error) {
	if !volume.SameShape(smooth.Shape, seed.Shape) {
		return nil, fmt.Errorf("%w: image %v vs seed %v",
			volume.ErrShapeMismatch, smooth.Shape, seed.Shape)
	}
	log := logrus.WithField("driver", "chanvese")

	init, err := initialLevelSet(smooth, seed)
	if err != nil {
		return nil, fmt.Errorf("initial level set: %w", err)
	}

	solver := levelset.ChanVese{
		MaxIterations:         p.Iterations,
		MaxRMSError:           p.MaxRMSError,
		Lambda1:               1,
		Lambda2:               1,
		Epsilon:               p.Epsilon,
		CurvatureWeight:       p.CurvatureWeight,
		AreaWeight:            0,
		ReinitSmoothingWeight: p.SmoothingWeight,
	}
	phi, stats, err := solver.Evolve(init, smooth)
	if err != nil {
		return nil, fmt.Errorf("level set evolution: %w", err)
	}
	log.WithFields(logrus.Fields{
		"iterations": stats.Iterations,
		"rms":        stats.RMSError,
	}).Info("level set evolution finished")

	out := phi.Threshold(0)

	out, err = morphology.FillHoles(out, postHoleMin, postHoleMax, false)
	if err != nil {
		return nil, fmt.Errorf("hole filling: %w", err)
	}
	out, err = morphology.Open(out, morphology.Ball(postOpenRadius))
	if err != nil {
		return nil, fmt.Errorf("opening: %w", err)
	}
	log.WithField("foreground", out.Count()).Info("post-processing finished")
	return out, nil
}

// initialLevelSet builds the narrow-band signed distance around the
// seed regions: distance to the background minus distance to the
// seed, with the outer seed boundary pinned to zero.
func initialLevelSet(smooth *volume.Volume, seed *volume.Labels) (*volume.Volume, error) {
	seedMask := seed.Foreground()

	distInside, err := morphology.DistanceTransform(seedMask)
	if err != nil {
		return nil, err
	}
	distOutside, err := morphology.DistanceTransform(seedMask.Not())
	if err != nil {
		return nil, err
	}
	boundary, err := morphology.OuterBoundaries(seed)
	if err != nil {
		return nil, err
	}

	data := make([]float64, len(smooth.Data))
	for i := range data {
		data[i] = distInside.Data[i] - distOutside.Data[i]
		if boundary.Data[i] {
			data[i] = 0
		}
	}
	return volume.NewLike(data, smooth)
}

// FastMarchingParams are the knobs of the fast-marching driver.
type FastMarchingParams struct {
	// TimeThreshold is the upper arrival-time bound of the final
	// threshold. The default leaves the bound open, so every
	// reachable voxel is foreground.
	TimeThreshold float64
}

// DefaultFastMarchingParams leaves the arrival-time bound open.
func DefaultFastMarchingParams() FastMarchingParams {
	return FastMarchingParams{TimeThreshold: math.Inf(1)}
}

// Sigmoid parameters fixed by the driver: negative slope inverts the
// gradient so the front stalls at edges.
const (
	sigmoidAlpha = -0.5
	sigmoidBeta  = 3.0
)

// FastMarching segments a smoothed intensity volume by propagating a
// front from the seed voxels over an edge-stopping speed map: gradient
// magnitude, sigmoid inversion into [0, 1], fast marching, then an
// arrival-time threshold with lower bound zero. Encode the returned
// mask with Bytes(255, 0) for a {0, 255} byte volume.
func FastMarching(smooth *volume.Volume, seed *volume.Labels, p FastMarchingParams) (*volume.Mask, error) {
	if !volume.SameShape(smooth.Shape, seed.Shape) {
		return nil, fmt.Errorf("%w: image %v vs seed %v",
			volume.ErrShapeMismatch, smooth.Shape, seed.Shape)
	}
	log := logrus.WithField("driver", "fastmarching")

	grad, err := levelset.GradientMagnitude(smooth)
	if err != nil {
		return nil, fmt.Errorf("gradient magnitude: %w", err)
	}
	speed, err := levelset.Sigmoid(grad, sigmoidAlpha, sigmoidBeta, 0, 1)
	if err != nil {
		return nil, fmt.Errorf("sigmoid: %w", err)
	}

	times, err := levelset.FastMarch(speed, seed.Foreground())
	if err != nil {
		return nil, fmt.Errorf("fast marching: %w", err)
	}

	upper := p.TimeThreshold
	if upper == 0 {
		upper = math.Inf(1)
	}
	out := levelset.BinaryThreshold(times, 0, upper)
	log.WithFields(logrus.Fields{
		"trial_points": seed.Foreground().Count(),
		"foreground":   out.Count(),
	}).Info("fast marching finished")
	return out, nil
}
