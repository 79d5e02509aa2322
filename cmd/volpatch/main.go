package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"volpatch/pkg/config"
	"volpatch/pkg/queue"
	"volpatch/pkg/sample"
	"volpatch/pkg/visualization"
	"volpatch/pkg/volume"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "volpatch.yaml", "Path to YAML configuration file")
	shapeArg := flag.String("shape", "64,64,64", "Spatial extent of the synthetic volume (comma-separated)")
	channels := flag.Int("channels", 1, "Number of channels in the intensity volume")
	patchArg := flag.String("patch", "", "Patch size (comma-separated, overrides config)")
	count := flag.Int("count", 100, "Number of patches to extract")
	fgFraction := flag.Float64("fg", 0.01, "Fraction of label voxels marked as foreground")
	workers := flag.Int("workers", runtime.NumCPU(), "Number of extraction workers")
	seed := flag.Int64("seed", 0, "Random seed for volume synthesis and sampling")
	preview := flag.Bool("preview", false, "Write JPEG previews of extracted patches")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	shape, err := parseDims(*shapeArg)
	if err != nil {
		log.Fatalf("Invalid -shape: %v", err)
	}
	patchSize := cfg.Sampler.PatchSize
	if *patchArg != "" {
		if patchSize, err = parseDims(*patchArg); err != nil {
			log.Fatalf("Invalid -patch: %v", err)
		}
	}
	if len(patchSize) != len(shape) {
		log.Fatalf("Patch size %v does not match volume shape %v", patchSize, shape)
	}

	fmt.Println("================================")
	fmt.Println("VOLPATCH - FOREGROUND-CONSTRAINED PATCH EXTRACTION")
	fmt.Println("================================")
	fmt.Printf("Volume shape: %v with %d channel(s)\n", shape, *channels)
	fmt.Printf("Patch size: %v\n", patchSize)
	fmt.Printf("Foreground fraction: %.4f\n", *fgFraction)
	fmt.Printf("Workers: %d\n", *workers)

	src, err := synthesize(shape, *channels, *fgFraction, *seed)
	if err != nil {
		log.Fatalf("Failed to synthesize sample: %v", err)
	}

	q := queue.New(src, patchSize, queue.Params{
		Workers:        *workers,
		Capacity:       cfg.Queue.Capacity,
		Seed:           *seed,
		MaxAttempts:    cfg.Sampler.MaxAttempts,
		ValidateLabels: cfg.Sampler.ValidateLabels,
	})
	defer q.Close()

	var previewer *visualization.Previewer
	if *preview {
		previewer = visualization.NewPreviewer(cfg.Output.PreviewDir)
	}

	fmt.Printf("\nExtracting %d patches...\n", *count)
	startTime := time.Now()

	fgFractions := make([]float64, 0, *count)
	ctx := context.Background()
	for i := 0; i < *count; i++ {
		patch, err := q.Next(ctx)
		if err != nil {
			log.Fatalf("Extraction failed on patch %d: %v", i, err)
		}

		seg, ok := patch.Image("seg")
		if !ok {
			log.Fatalf("Patch %d is missing its label entry", i)
		}
		fgFractions = append(fgFractions, foregroundFraction(seg.Data))

		if previewer != nil {
			if err := previewer.SavePatch(patch, i); err != nil {
				log.Printf("Warning: failed to save preview for patch %d: %v", i, err)
			}
		}

		if cfg.Output.Verbose && (i+1)%10 == 0 {
			fmt.Printf("\rExtracted %d/%d patches", i+1, *count)
		}
	}
	elapsed := time.Since(startTime)
	fmt.Println()

	fmt.Printf("\nExtraction completed in %.2f seconds (%.1f patches/sec)\n",
		elapsed.Seconds(), float64(*count)/elapsed.Seconds())
	fmt.Printf("Foreground fraction per patch: mean %.4f, stddev %.4f\n",
		stat.Mean(fgFractions, nil), stat.StdDev(fgFractions, nil))
	if previewer != nil {
		fmt.Printf("Previews written to: %s\n", cfg.Output.PreviewDir)
	}
}

// synthesize builds a sample with a random intensity volume and a label
// volume whose voxels are independently foreground with probability fg.
// It retries until the label contains at least one foreground voxel so the
// extraction below terminates.
func synthesize(shape []int, channels int, fg float64, seed int64) (*sample.Sample, error) {
	rng := rand.New(rand.NewSource(seed))

	intensity, err := volume.New(channels, shape...)
	if err != nil {
		return nil, err
	}
	for i := range intensity.Data {
		intensity.Data[i] = rng.Float64()
	}

	label, err := volume.New(1, shape...)
	if err != nil {
		return nil, err
	}
	foreground := 0
	for foreground == 0 {
		for i := range label.Data {
			if rng.Float64() < fg {
				label.Data[i] = 1
				foreground++
			} else {
				label.Data[i] = 0
			}
		}
	}

	s := sample.New()
	s.SetImage("t1", intensity, sample.Intensity)
	s.SetImage("seg", label, sample.Label)
	s.SetAux("synthetic", true)
	return s, nil
}

// foregroundFraction reports the share of positive voxels in a label patch.
func foregroundFraction(v *volume.Volume) float64 {
	positive := 0
	for _, val := range v.Data {
		if val > 0 {
			positive++
		}
	}
	return float64(positive) / float64(len(v.Data))
}

// parseDims parses a comma-separated list of positive integers.
func parseDims(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	dims := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("bad dimension %q: %w", part, err)
		}
		if n < 1 {
			return nil, fmt.Errorf("dimension must be positive, got %d", n)
		}
		dims = append(dims, n)
	}
	return dims, nil
}
