// Package weightmap turns per-view coverage masks into smooth blend weight
// fields.
//
// Each mask is dilated by a 3x3 rectangle, resampled back to its own size and
// intersected with the original to give the refined mask. The weight at a
// covered pixel is its L1 distance to the nearest uncovered pixel scaled by
// the sharpness and truncated at 1, so weights fall off linearly over
// 1/sharpness pixels at the mask edge and are exactly 0 outside it.
package weightmap

import (
	"fmt"
	"image"
	"math"
	"runtime"
	"sync"
	"time"

	"multiview-blend/internal/errs"
	"multiview-blend/internal/logging"
	"multiview-blend/pkg/geometry"
)

// blendStrength is the seam transition width in percent of sqrt(canvas area).
const blendStrength = 5.0

// DefaultSharpness returns 100 / (blendStrength * sqrt(area)) for the canvas,
// so the transition width scales with the canvas rather than its resolution.
func DefaultSharpness(canvas geometry.Rect) float32 {
	blendWidth := math.Sqrt(float64(canvas.Area())) * blendStrength / 100
	if blendWidth == 0 {
		return 0
	}
	return float32(1 / blendWidth)
}

// Builder builds weight maps for a fixed canvas.
type Builder struct {
	canvas    geometry.Rect
	sharpness float32
	workers   int
}

// Option configures a Builder.
type Option func(*Builder)

// WithSharpness overrides the sharpness derived from the canvas area.
func WithSharpness(s float32) Option {
	return func(b *Builder) { b.sharpness = s }
}

// WithWorkers bounds the number of views processed concurrently.
// Zero or negative means runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(b *Builder) { b.workers = n }
}

// NewBuilder returns a Builder for canvas.
func NewBuilder(canvas geometry.Rect, opts ...Option) (*Builder, error) {
	if canvas.Empty() {
		return nil, errs.Precondition("empty canvas %v", canvas)
	}
	b := &Builder{
		canvas:    canvas,
		sharpness: DefaultSharpness(canvas),
	}
	for _, opt := range opts {
		opt(b)
	}
	s := float64(b.sharpness)
	if !(s > 0) || math.IsInf(s, 0) {
		return nil, errs.Precondition("sharpness must be positive and finite, got %v", b.sharpness)
	}
	if b.workers <= 0 {
		b.workers = runtime.NumCPU()
	}
	return b, nil
}

// Sharpness returns the falloff rate in weight per pixel.
func (b *Builder) Sharpness() float32 { return b.sharpness }

// Canvas returns the canvas the builder was created for.
func (b *Builder) Canvas() geometry.Rect { return b.canvas }

// BuildAll builds the weight map and refined mask of views [0, viewCount).
// masks must hold at least viewCount canvas-sized masks; anything else is a
// precondition violation and no partial Set is returned.
func (b *Builder) BuildAll(masks []*image.Gray, viewCount int) (*Set, error) {
	if viewCount <= 0 {
		return nil, errs.Precondition("view count must be positive, got %d", viewCount)
	}
	if len(masks) < viewCount {
		return nil, errs.Precondition("%d masks for %d views", len(masks), viewCount)
	}
	size := b.canvas.Size()
	for v := 0; v < viewCount; v++ {
		if masks[v] == nil {
			return nil, errs.Precondition("view %d: missing mask", v)
		}
		if got := masks[v].Rect.Size(); got != size {
			return nil, errs.Precondition("view %d: mask size %v, canvas size %v", v, got, size)
		}
	}

	start := time.Now()
	weights := make([]*Map, viewCount)
	refined := make([]*image.Gray, viewCount)
	viewErrs := make([]error, viewCount)

	// Views share no mutable state.
	sem := make(chan struct{}, b.workers)
	var wg sync.WaitGroup
	for v := 0; v < viewCount; v++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(v int) {
			defer wg.Done()
			defer func() { <-sem }()
			weights[v], refined[v], viewErrs[v] = b.buildView(masks[v])
		}(v)
	}
	wg.Wait()

	for v, err := range viewErrs {
		if err != nil {
			return nil, fmt.Errorf("view %d: %w", v, err)
		}
	}

	log := logging.Logger()
	for v, w := range weights {
		sum := Summarize(w)
		log.Debug("view weight map",
			"view", v,
			"coverage", sum.Coverage,
			"mean", sum.MeanWeight,
			"max", sum.MaxWeight)
	}
	log.Info("done generating weight maps for blending",
		"views", viewCount,
		"canvas", b.canvas.String(),
		"sharpness", b.sharpness,
		"elapsed", time.Since(start))

	return &Set{canvas: b.canvas, weights: weights, masks: refined}, nil
}

// buildView refines one mask and derives its weight field.
func (b *Builder) buildView(mask *image.Gray) (*Map, *image.Gray, error) {
	refinedPix, weightPix, err := refineAndWeigh(mask, b.sharpness)
	if err != nil {
		return nil, nil, err
	}

	cr := b.canvas.Image()
	refined := &image.Gray{Pix: refinedPix, Stride: b.canvas.Width, Rect: cr}
	weight := &Map{Pix: weightPix, Stride: b.canvas.Width, Rect: cr}
	return weight, refined, nil
}
