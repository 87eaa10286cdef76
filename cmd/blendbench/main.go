// Command blendbench blends a synthetic multi-camera scene repeatedly and
// prints per-frame latency.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"os"
	"sort"
	"time"

	"multiview-blend/internal/config"
	"multiview-blend/internal/imageio"
	"multiview-blend/internal/logging"
	"multiview-blend/internal/session"
	"multiview-blend/pkg/colorutil"
	"multiview-blend/pkg/geometry"
)

func main() {
	width := flag.Int("w", 1280, "Canvas width")
	height := flag.Int("h", 720, "Canvas height")
	views := flag.Int("views", 4, "Number of camera views")
	overlap := flag.Float64("overlap", 0.2, "Overlap between neighbouring views, as a fraction of a view's width")
	skew := flag.Float64("skew", 0.05, "Keystone of each view footprint, as a fraction of a view's width")
	frames := flag.Int("frames", 30, "Frames to blend")
	workers := flag.Int("workers", 0, "Worker goroutines (0 = one per CPU)")
	out := flag.String("out", "", "Write the last composite to this PNG")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	if *verbose {
		logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	cfg := config.Config{
		ViewCount: *views,
		Canvas:    geometry.NewRect(0, 0, *width, *height),
		Workers:   *workers,
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid scene: %v\n", err)
		os.Exit(1)
	}

	masks := footprintMasks(cfg.Canvas, *views, *overlap, *skew)
	images := gradientViews(cfg.Canvas, *views)

	fmt.Printf("=== Setup: %d views on %dx%d ===\n", *views, *width, *height)
	setupStart := time.Now()
	sess, err := session.New(cfg, masks)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Session setup failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Weight maps built in %v\n", time.Since(setupStart))

	fmt.Printf("\n=== Blending %d frames ===\n", *frames)
	latencies := make([]time.Duration, 0, *frames)
	var last *image.RGBA
	var lastMask *image.Gray
	for f := 0; f < *frames; f++ {
		start := time.Now()
		dst, mask, err := sess.BlendFrame(images)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Frame %d failed: %v\n", f, err)
			os.Exit(1)
		}
		latencies = append(latencies, time.Since(start))
		last, lastMask = dst, mask
	}

	if len(latencies) > 0 {
		printLatencies(latencies)
		fmt.Printf("Valid pixels: %.1f%%\n", 100*validFraction(lastMask))
	}

	if *out != "" && last != nil {
		if err := imageio.SavePNG(*out, last); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save composite: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *out)
	}
}

// footprintMasks covers the canvas with vertical keystoned strips, one per
// view, each widened by overlap on both sides.
func footprintMasks(canvas geometry.Rect, views int, overlap, skew float64) []*image.Gray {
	stripW := float64(canvas.Width) / float64(views)
	h := float64(canvas.Height)
	masks := make([]*image.Gray, views)
	for v := 0; v < views; v++ {
		x0 := float64(v)*stripW - overlap*stripW
		x1 := float64(v+1)*stripW + overlap*stripW
		k := skew * stripW
		quad := []geometry.Point2D{
			{X: x0 + k, Y: 0},
			{X: x1 - k, Y: 0},
			{X: x1, Y: h},
			{X: x0, Y: h},
		}
		masks[v] = image.NewGray(canvas.Image())
		geometry.FillPolygon(masks[v], quad)
	}
	return masks
}

// gradientViews gives each view its palette colour with a vertical
// brightness ramp so seams are visible in the composite.
func gradientViews(canvas geometry.Rect, views int) []image.Image {
	images := make([]image.Image, views)
	for v := 0; v < views; v++ {
		base := colorutil.Palette[v%len(colorutil.Palette)]
		img := image.NewRGBA(canvas.Image())
		for y := 0; y < canvas.Height; y++ {
			f := 0.4 + 0.6*float64(y)/math.Max(1, float64(canvas.Height-1))
			c := color.RGBA{
				R: colorutil.ClampUint8(float64(base.R) * f),
				G: colorutil.ClampUint8(float64(base.G) * f),
				B: colorutil.ClampUint8(float64(base.B) * f),
				A: 255,
			}
			for x := 0; x < canvas.Width; x++ {
				img.SetRGBA(x, y, c)
			}
		}
		images[v] = img
	}
	return images
}

func printLatencies(latencies []time.Duration) {
	sorted := append([]time.Duration(nil), latencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, d := range sorted {
		total += d
	}
	p95 := sorted[int(math.Ceil(0.95*float64(len(sorted))))-1]
	fmt.Printf("Min: %v\n", sorted[0])
	fmt.Printf("Mean: %v\n", total/time.Duration(len(sorted)))
	fmt.Printf("P95: %v\n", p95)
	fmt.Printf("Max: %v\n", sorted[len(sorted)-1])
}

func validFraction(mask *image.Gray) float64 {
	if mask == nil || len(mask.Pix) == 0 {
		return 0
	}
	n := 0
	for _, p := range mask.Pix {
		if p != 0 {
			n++
		}
	}
	return float64(n) / float64(len(mask.Pix))
}
