// Package main provides the multiview-blend command, which blends aligned
// camera views stored on disk into one composite frame.
package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"multiview-blend/internal/config"
	"multiview-blend/internal/imageio"
	"multiview-blend/internal/logging"
	"multiview-blend/internal/session"
	"multiview-blend/internal/version"
	"multiview-blend/internal/weightmap"
	"multiview-blend/pkg/geometry"
)

const appName = "multiview-blend"

func main() {
	configPath := flag.String("config", "", "Session config (JSON)")
	maskList := flag.String("masks", "", "Comma-separated coverage masks, one per view")
	imageList := flag.String("images", "", "Comma-separated warped images, one per view")
	out := flag.String("out", "composite.png", "Composite output path (PNG)")
	validOut := flag.String("valid", "", "Validity mask output path (PNG)")
	roiFlag := flag.String("roi", "", "Destination ROI as x,y,w,h (default: whole canvas)")
	sharpness := flag.Float64("sharpness", 0, "Weight falloff override (0 derives it from the canvas)")
	workers := flag.Int("workers", -1, "Worker goroutines (0 = one per CPU)")
	dumpDir := flag.String("dump-weights", "", "Directory for per-view weight maps (EXR) and refined masks (PNG)")
	verbose := flag.Bool("v", false, "Verbose logging")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if *showVersion {
		fmt.Println(version.String(appName))
		return
	}
	if *maskList == "" || *imageList == "" {
		fmt.Println("Usage: multiview-blend -masks m0.png,m1.png -images v0.png,v1.png [-out composite.png] [-config session.json]")
		os.Exit(1)
	}
	if *verbose {
		logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	maskPaths := splitList(*maskList)
	masks := make([]*image.Gray, len(maskPaths))
	for i, p := range maskPaths {
		m, err := imageio.LoadMask(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load mask %d: %v\n", i, err)
			os.Exit(1)
		}
		masks[i] = m
	}

	cfg, err := buildConfig(*configPath, masks)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if *roiFlag != "" {
		roi, err := geometry.ParseRect(*roiFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -roi: %v\n", err)
			os.Exit(1)
		}
		cfg.ROI = roi
	}
	if *sharpness > 0 {
		cfg.Sharpness = float32(*sharpness)
	}
	if *workers >= 0 {
		cfg.Workers = *workers
	}

	log.Printf("Starting %s: %d views on canvas %v, ROI %v", version.String(appName),
		cfg.ViewCount, cfg.Canvas, cfg.DestinationROI())

	sess, err := session.New(cfg, masks)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Session setup failed: %v\n", err)
		os.Exit(1)
	}

	if *dumpDir != "" {
		if err := dumpWeights(*dumpDir, sess.Weights()); err != nil {
			fmt.Fprintf(os.Stderr, "Weight dump failed: %v\n", err)
			os.Exit(1)
		}
	}

	imagePaths := splitList(*imageList)
	if len(imagePaths) != cfg.ViewCount {
		fmt.Fprintf(os.Stderr, "Got %d images for %d views\n", len(imagePaths), cfg.ViewCount)
		os.Exit(1)
	}
	images := make([]image.Image, len(imagePaths))
	for i, p := range imagePaths {
		img, err := imageio.LoadImage(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load image %d: %v\n", i, err)
			os.Exit(1)
		}
		images[i] = img
	}

	composite, valid, err := sess.BlendFrame(images)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Blend failed: %v\n", err)
		os.Exit(1)
	}

	if err := imageio.SavePNG(*out, composite); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save composite: %v\n", err)
		os.Exit(1)
	}
	log.Printf("Wrote composite %s", *out)

	if *validOut != "" {
		if err := imageio.SavePNG(*validOut, valid); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save validity mask: %v\n", err)
			os.Exit(1)
		}
		log.Printf("Wrote validity mask %s", *validOut)
	}
}

// buildConfig loads the session config, or derives one from the masks when
// no config file is given: one view per mask on a canvas the size of the
// first mask.
func buildConfig(path string, masks []*image.Gray) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	var cfg config.Config
	if len(masks) == 0 {
		return cfg, fmt.Errorf("no masks given")
	}
	b := masks[0].Bounds()
	cfg.ViewCount = len(masks)
	cfg.Canvas = geometry.NewRect(0, 0, b.Dx(), b.Dy())
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func dumpWeights(dir string, set *weightmap.Set) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for v := 0; v < set.ViewCount(); v++ {
		w := set.Weight(v)
		path := filepath.Join(dir, fmt.Sprintf("weight_%02d.exr", v))
		if err := weightmap.WriteEXRFile(path, w); err != nil {
			return err
		}
		if err := imageio.SavePNG(filepath.Join(dir, fmt.Sprintf("refined_%02d.png", v)), set.Mask(v)); err != nil {
			return err
		}
		sum := weightmap.Summarize(w)
		log.Printf("View %d: coverage %.1f%%, mean weight %.3f -> %s",
			v, 100*sum.Coverage, sum.MeanWeight, path)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
