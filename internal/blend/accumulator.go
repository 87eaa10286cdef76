// Package blend accumulates weighted per-view images on a shared canvas and
// normalises them into a composite frame with a validity mask.
//
// An Accumulator runs one pass at a time:
//
//	acc.Prepare(roi)      // Uninitialized/Finished -> Prepared
//	acc.Feed(images)      // Prepared/Accumulating  -> Accumulating
//	acc.Finish()          // Accumulating           -> Finished
//
// Colour sums are kept in signed 32-bit fixed-point cells with fracBits
// fractional bits, three per pixel, and weight sums in float32. Each view is expected to be fed at most once per pass;
// feeding a view twice counts it twice and is not detected.
//
// An Accumulator is not safe for concurrent use. Internally Feed and Finish
// split the ROI into disjoint row bands and process them in parallel.
package blend

import (
	"image"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"multiview-blend/internal/errs"
	"multiview-blend/internal/logging"
	"multiview-blend/internal/weightmap"
	"multiview-blend/pkg/colorutil"
	"multiview-blend/pkg/geometry"
)

const (
	// WeightEps is the accumulated weight above which a pixel counts as
	// covered. Anything at or below it is treated as round-off.
	WeightEps = 1e-5

	// fracBits is the number of fractional bits of each colour sum.
	fracBits = 16
	fixedOne = 1 << fracBits

	// MaxViewCount is the largest number of views whose 8-bit channels,
	// scaled by weights of at most 1, always fit the int32 colour sums.
	MaxViewCount = math.MaxInt32 / (math.MaxUint8 << fracBits)
)

// CheckViewCount reports whether n views can be accumulated without risk
// of wrapping the colour sums.
func CheckViewCount(n int) error {
	if n <= 0 {
		return errs.Precondition("view count must be positive, got %d", n)
	}
	if n > MaxViewCount {
		return errs.OverflowRisk("%d views exceed the 32-bit accumulator limit of %d", n, MaxViewCount)
	}
	return nil
}

// Accumulator owns the canvas-sized accumulation buffers of one blending
// pass.
type Accumulator struct {
	weights *weightmap.Set
	canvas  geometry.Rect
	workers int

	state State
	roi   geometry.Rect

	// color holds fixed-point R, G, B sums per canvas pixel, row-major
	// from canvas.X/Y.
	color []int32
	// weight holds the weight sum per canvas pixel.
	weight []float32
}

// Option configures an Accumulator.
type Option func(*Accumulator)

// WithWorkers sets the number of row bands processed concurrently.
// Zero or negative means runtime.NumCPU(); 1 disables parallelism.
func WithWorkers(n int) Option {
	return func(a *Accumulator) { a.workers = n }
}

// New returns an Accumulator blending the views of weights.
func New(weights *weightmap.Set, opts ...Option) (*Accumulator, error) {
	if weights == nil {
		return nil, errs.Precondition("missing weight maps")
	}
	if err := CheckViewCount(weights.ViewCount()); err != nil {
		return nil, err
	}
	a := &Accumulator{
		weights: weights,
		canvas:  weights.Canvas(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.workers <= 0 {
		a.workers = runtime.NumCPU()
	}
	return a, nil
}

// State returns the current lifecycle stage.
func (a *Accumulator) State() State { return a.state }

// ROI returns the destination ROI of the current or last pass.
func (a *Accumulator) ROI() geometry.Rect { return a.roi }

// ViewCount returns the number of views each Feed expects.
func (a *Accumulator) ViewCount() int { return a.weights.ViewCount() }

// Prepare starts a pass over dstROI, which must have positive area and lie
// inside the canvas. The buffers are zeroed. Preparing an unfinished pass
// discards it.
func (a *Accumulator) Prepare(dstROI geometry.Rect) error {
	if dstROI.Area() <= 0 {
		return errs.Precondition("destination ROI %v has no area", dstROI)
	}
	if !dstROI.In(a.canvas) {
		return errs.Precondition("destination ROI %v outside canvas %v", dstROI, a.canvas)
	}

	if a.state == Prepared || a.state == Accumulating {
		logging.Logger().Debug("discarding unfinished blend pass", "state", a.state.String())
	}

	n := a.canvas.Area()
	if len(a.weight) != n {
		a.color = make([]int32, 3*n)
		a.weight = make([]float32, n)
	} else {
		clear(a.color)
		clear(a.weight)
	}
	a.roi = dstROI
	a.state = Prepared
	return nil
}

// Feed adds every view's image, scaled by its weight map, over the ROI.
// images[v] is the warped image of view v. An image with the canvas size is
// anchored at the canvas origin whatever its own origin; any other image is
// read in canvas coordinates and must contain the ROI. Views are expected to
// be opaque; translucent pixels contribute their premultiplied colour.
// All images are validated before anything is accumulated.
func (a *Accumulator) Feed(images []image.Image) error {
	if err := a.checkFeedable(); err != nil {
		return err
	}
	n := a.weights.ViewCount()
	if len(images) < n {
		return errs.Precondition("%d images for %d views", len(images), n)
	}

	offsets := make([]image.Point, n)
	for v := 0; v < n; v++ {
		off, err := a.imageOffset(v, images[v])
		if err != nil {
			return err
		}
		offsets[v] = off
	}

	start := time.Now()
	parallelRows(a.roi.Y, a.roi.Y+a.roi.Height, a.workers, func(y0, y1 int) {
		buf := make([]int16, 3*a.roi.Width)
		for v := 0; v < n; v++ {
			for y := y0; y < y1; y++ {
				a.accumulateRow(v, images[v], offsets[v], y, buf)
			}
		}
	})
	a.state = Accumulating

	logging.Logger().Debug("fed views", "views", n, "roi", a.roi.String(), "elapsed", time.Since(start))
	return nil
}

// FeedView adds a single view. It is equivalent to the matching step of
// Feed and lets callers feed views as they arrive.
func (a *Accumulator) FeedView(view int, img image.Image) error {
	if err := a.checkFeedable(); err != nil {
		return err
	}
	if view < 0 || view >= a.weights.ViewCount() {
		return errs.Precondition("view %d out of range [0,%d)", view, a.weights.ViewCount())
	}
	off, err := a.imageOffset(view, img)
	if err != nil {
		return err
	}

	parallelRows(a.roi.Y, a.roi.Y+a.roi.Height, a.workers, func(y0, y1 int) {
		buf := make([]int16, 3*a.roi.Width)
		for y := y0; y < y1; y++ {
			a.accumulateRow(view, img, off, y, buf)
		}
	})
	a.state = Accumulating
	return nil
}

// PrepareAndFeed runs Prepare followed by Feed.
func (a *Accumulator) PrepareAndFeed(dstROI geometry.Rect, images []image.Image) error {
	if err := a.Prepare(dstROI); err != nil {
		return err
	}
	return a.Feed(images)
}

// AccumulatedWeight returns the weight sum at canvas pixel (x, y) of the
// pass in progress. It is 0 outside the canvas or when no pass is open.
func (a *Accumulator) AccumulatedWeight(x, y int) float32 {
	if (a.state != Prepared && a.state != Accumulating) || !a.canvas.Contains(x, y) {
		return 0
	}
	return a.weight[a.index(x, y)]
}

// Finish normalises the pass into a composite and validity mask, both with
// the ROI as bounds. Pixels whose weight sum exceeds WeightEps get the
// weighted mean colour, alpha 255 and mask 255; the rest stay zero.
// The buffers are stale afterwards until the next Prepare.
func (a *Accumulator) Finish() (*image.RGBA, *image.Gray, error) {
	if a.state != Accumulating {
		return nil, nil, errs.Precondition("finish called in state %s", a.state)
	}

	start := time.Now()
	r := a.roi.Image()
	dst := image.NewRGBA(r)
	mask := image.NewGray(r)

	var valid atomic.Int64
	parallelRows(a.roi.Y, a.roi.Y+a.roi.Height, a.workers, func(y0, y1 int) {
		var n int64
		for y := y0; y < y1; y++ {
			n += int64(a.normalizeRow(dst, mask, y))
		}
		valid.Add(n)
	})
	a.state = Finished

	logging.Logger().Debug("blend finished",
		"roi", a.roi.String(),
		"valid", valid.Load(),
		"elapsed", time.Since(start))
	return dst, mask, nil
}

func (a *Accumulator) checkFeedable() error {
	if a.state != Prepared && a.state != Accumulating {
		return errs.Precondition("feed called in state %s", a.state)
	}
	return nil
}

// imageOffset validates img against the ROI and returns the translation
// from canvas to image coordinates. The anchoring depends on the image
// bounds only, so every ROI reads the same pixels.
func (a *Accumulator) imageOffset(view int, img image.Image) (image.Point, error) {
	if img == nil {
		return image.Point{}, errs.Precondition("view %d: missing image", view)
	}
	b := img.Bounds()
	cr := a.canvas.Image()
	switch {
	case b.Size() == cr.Size():
		return b.Min.Sub(cr.Min), nil
	case a.roi.Image().In(b):
		return image.Point{}, nil
	}
	return image.Point{}, errs.Precondition("view %d: image bounds %v cover neither ROI %v nor canvas %v",
		view, b, a.roi, a.canvas)
}

func (a *Accumulator) index(x, y int) int {
	return (y-a.canvas.Y)*a.canvas.Width + (x - a.canvas.X)
}

// accumulateRow adds row y (canvas coordinates) of one view over the ROI.
func (a *Accumulator) accumulateRow(view int, img image.Image, off image.Point, y int, buf []int16) {
	x0, x1 := a.roi.X, a.roi.X+a.roi.Width
	wrow := a.weights.Weight(view).Row(y, x0, x1)
	readRow(img, x0+off.X, y+off.Y, a.roi.Width, buf)

	base := a.index(x0, y)
	for x, w := range wrow {
		if w == 0 {
			continue
		}
		i := base + x
		c := a.color[3*i : 3*i+3 : 3*i+3]
		c[0] += scale(buf[3*x+0], w)
		c[1] += scale(buf[3*x+1], w)
		c[2] += scale(buf[3*x+2], w)
		a.weight[i] += w
	}
}

// scale returns round(v*w) in fixed point.
func scale(v int16, w float32) int32 {
	return int32(math.Round(float64(v) * float64(w) * fixedOne))
}

// normalizeRow writes row y of the composite and mask and returns the number
// of valid pixels.
func (a *Accumulator) normalizeRow(dst *image.RGBA, mask *image.Gray, y int) int {
	x0 := a.roi.X
	base := a.index(x0, y)
	d := dst.PixOffset(x0, y)
	m := mask.PixOffset(x0, y)

	valid := 0
	for x := 0; x < a.roi.Width; x++ {
		i := base + x
		wsum := a.weight[i]
		if wsum <= WeightEps {
			continue
		}
		c := a.color[3*i : 3*i+3 : 3*i+3]
		ws := float64(wsum) * fixedOne
		p := dst.Pix[d+4*x : d+4*x+4 : d+4*x+4]
		p[0] = colorutil.ClampUint8(float64(c[0]) / ws)
		p[1] = colorutil.ClampUint8(float64(c[1]) / ws)
		p[2] = colorutil.ClampUint8(float64(c[2]) / ws)
		p[3] = 255
		mask.Pix[m+x] = 255
		valid++
	}
	return valid
}
