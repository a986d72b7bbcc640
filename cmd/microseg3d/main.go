package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/sirupsen/logrus"

	"microseg3d/internal/models"
	"microseg3d/pkg/config"
	"microseg3d/pkg/seed"
	"microseg3d/pkg/segmentation"
	"microseg3d/pkg/volume"
)

func main() {
	// Parse command line arguments
	inputFile := flag.String("input", "", "Raw volume file to segment")
	dims := flag.String("dims", "", "Volume dimensions as ZxYxX, e.g. 40x512x512")
	format := flag.String("format", "uint8", "Sample format: uint8, uint16 or float32")
	outputFile := flag.String("output", "segmentation.raw", "Output mask filename ({0,255} bytes)")
	configPath := flag.String("config", "microseg3d.yaml", "Configuration file")
	method := flag.String("method", "chanvese", "Segmentation driver: chanvese or fastmarching")
	flag.Parse()

	// Validate inputs
	if *inputFile == "" || *dims == "" {
		flag.Usage()
		os.Exit(1)
	}

	shape, err := models.ParseDims(*dims)
	if err != nil {
		log.Fatalf("Invalid dimensions: %v", err)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if !cfg.Output.Verbose {
		logrus.SetLevel(logrus.WarnLevel)
	}

	dataset := &models.Dataset{
		Path:    *inputFile,
		Shape:   shape,
		Format:  models.SampleFormat(*format),
		Spacing: [3]float64{1, 1, 1},
	}

	fmt.Println("Loading raw volume...")
	vol, err := loadRawVolume(dataset)
	if err != nil {
		log.Fatalf("Failed to load volume: %v", err)
	}

	fm := segmentation.DefaultFastMarchingParams()
	if cfg.FastMarching.TimeThreshold > 0 {
		fm.TimeThreshold = cfg.FastMarching.TimeThreshold
	}
	params := segmentation.Params{
		NormalizeLow:   cfg.Preprocess.NormalizeLow,
		NormalizeHigh:  cfg.Preprocess.NormalizeHigh,
		SmoothSigma:    cfg.Preprocess.SmoothSigma,
		SeedMethod:     seed.MidFrameMethod(cfg.Seed.Method),
		SeedHoleMin:    cfg.Seed.HoleMin,
		BackgroundSeed: cfg.Seed.BackgroundSeed,
		Method:         segmentation.Method(*method),
		ChanVese: segmentation.ChanVeseParams{
			Iterations:      cfg.ChanVese.Iterations,
			MaxRMSError:     cfg.ChanVese.MaxRMSError,
			Epsilon:         cfg.ChanVese.Epsilon,
			CurvatureWeight: cfg.ChanVese.CurvatureWeight,
			SmoothingWeight: cfg.ChanVese.SmoothingWeight,
		},
		FastMarching: fm,
	}

	fmt.Printf("Segmenting %s volume with the %s driver...\n", *dims, *method)
	mask, err := segmentation.NewPipeline(params).Run(vol)
	if err != nil {
		log.Fatalf("Segmentation failed: %v", err)
	}

	if err := os.WriteFile(*outputFile, mask.Bytes(255, 0), 0644); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
	fmt.Printf("Segmentation written to %s (%d foreground voxels)\n", *outputFile, mask.Count())
}

// loadRawVolume reads a raw volume file into a float64 volume.
func loadRawVolume(d *models.Dataset) (*volume.Volume, error) {
	bps, err := d.BytesPerSample()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(d.Path)
	if err != nil {
		return nil, err
	}
	n := d.NumVoxels()
	if len(raw) != n*bps {
		return nil, fmt.Errorf("file holds %d bytes, shape %v needs %d", len(raw), d.Shape, n*bps)
	}

	meta := volume.DefaultMeta()
	meta.Spacing = d.Spacing
	vol, err := volume.New([]int{d.Shape[0], d.Shape[1], d.Shape[2]}, meta)
	if err != nil {
		return nil, err
	}
	switch d.Format {
	case models.Uint8:
		for i := 0; i < n; i++ {
			vol.Data[i] = float64(raw[i])
		}
	case models.Uint16LE:
		for i := 0; i < n; i++ {
			vol.Data[i] = float64(binary.LittleEndian.Uint16(raw[2*i:]))
		}
	case models.Float32LE:
		for i := 0; i < n; i++ {
			vol.Data[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:])))
		}
	}
	return vol, nil
}
