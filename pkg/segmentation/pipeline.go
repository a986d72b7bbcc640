package segmentation

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"microseg3d/pkg/filter"
	"microseg3d/pkg/seed"
	"microseg3d/pkg/threshold"
	"microseg3d/pkg/volume"
)

// Method names a segmentation driver.
type Method string

const (
	// MethodChanVese runs the dense Chan-Vese driver.
	MethodChanVese Method = "chanvese"

	// MethodFastMarching runs the fast-marching driver.
	MethodFastMarching Method = "fastmarching"
)

// ErrUnknownDriver is returned for a Method neither driver implements.
var ErrUnknownDriver = errors.New("segmentation: unknown driver")

// Params configures the full pipeline from raw intensities to a
// binary mask.
type Params struct {
	// NormalizeLow and NormalizeHigh are the percentile clipping
	// bounds of intensity normalization.
	NormalizeLow, NormalizeHigh float64

	// SmoothSigma is the Gaussian pre-smoothing width in voxels.
	SmoothSigma float64

	// SeedMethod selects the representative z-frame.
	SeedMethod seed.MidFrameMethod

	// SeedHoleMin discards mid-frame components below this size.
	SeedHoleMin int

	// BackgroundSeed adds the z=0 background anchor seed.
	BackgroundSeed bool

	// Method selects the driver.
	Method Method

	// ChanVese holds the Chan-Vese driver parameters.
	ChanVese ChanVeseParams

	// FastMarching holds the fast-marching driver parameters.
	FastMarching FastMarchingParams
}

// Pipeline runs normalization, smoothing, seed construction and one
// segmentation driver as a single staged process.
type Pipeline struct {
	params Params
	log    *logrus.Entry
}

// NewPipeline creates a pipeline with the provided parameters.
func NewPipeline(params Params) *Pipeline {
	return &Pipeline{
		params: params,
		log:    logrus.WithField("component", "pipeline"),
	}
}

// Run segments a raw rank-3 intensity volume and returns the binary
// result.
func (p *Pipeline) Run(raw *volume.Volume) (*volume.Mask, error) {
	if raw.Rank() != 3 {
		return nil, fmt.Errorf("%w: rank %d", volume.ErrBadRank, raw.Rank())
	}

	p.log.WithField("shape", raw.Shape).Info("normalizing intensities")
	norm, err := filter.NormalizeIntensity(raw, p.params.NormalizeLow, p.params.NormalizeHigh)
	if err != nil {
		return nil, fmt.Errorf("normalization: %w", err)
	}

	p.log.WithField("sigma", p.params.SmoothSigma).Info("smoothing")
	smooth, err := filter.GaussianSmooth3D(norm, p.params.SmoothSigma)
	if err != nil {
		return nil, fmt.Errorf("smoothing: %w", err)
	}

	mid, err := seed.MidFrame(smooth, p.params.SeedMethod)
	if err != nil {
		return nil, fmt.Errorf("mid-frame detection: %w", err)
	}
	p.log.WithField("mid_frame", mid).Info("building seed")

	t, err := threshold.Otsu(smooth)
	if err != nil {
		return nil, fmt.Errorf("otsu threshold: %w", err)
	}
	frame, err := smooth.Threshold(t).SliceZ(mid)
	if err != nil {
		return nil, err
	}
	sd, err := seed.FromMidFrame(frame, smooth.Shape, mid, p.params.SeedHoleMin, p.params.BackgroundSeed)
	if err != nil {
		return nil, fmt.Errorf("seed construction: %w", err)
	}

	switch p.params.Method {
	case MethodChanVese:
		return ChanVese(smooth, sd, p.params.ChanVese)
	case MethodFastMarching:
		return FastMarching(smooth, sd, p.params.FastMarching)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, p.params.Method)
	}
}
