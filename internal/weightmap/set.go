package weightmap

import (
	"image"

	"multiview-blend/internal/errs"
	"multiview-blend/pkg/geometry"
)

// Set maps each view index to its weight map and refined mask.
// It is read-only once built and may be shared by several accumulators.
type Set struct {
	canvas  geometry.Rect
	weights []*Map
	masks   []*image.Gray
}

// NewSet assembles a Set from precomputed weight maps. Every map must cover
// exactly the canvas and hold weights in [0, 1]. A nil masks slice, or a nil
// entry, is derived from the nonzero weights; a supplied mask must be nonzero
// wherever its weight is.
func NewSet(canvas geometry.Rect, weights []*Map, masks []*image.Gray) (*Set, error) {
	if canvas.Empty() {
		return nil, errs.Precondition("empty canvas %v", canvas)
	}
	if len(weights) == 0 {
		return nil, errs.Precondition("no weight maps")
	}
	if masks == nil {
		masks = make([]*image.Gray, len(weights))
	}
	if len(masks) != len(weights) {
		return nil, errs.Precondition("%d masks for %d weight maps", len(masks), len(weights))
	}

	cr := canvas.Image()
	s := &Set{
		canvas:  canvas,
		weights: make([]*Map, len(weights)),
		masks:   make([]*image.Gray, len(weights)),
	}
	for v, w := range weights {
		if w == nil {
			return nil, errs.Precondition("view %d: missing weight map", v)
		}
		if w.Rect != cr {
			return nil, errs.Precondition("view %d: weight map bounds %v, canvas %v", v, w.Rect, cr)
		}
		m := masks[v]
		if m == nil {
			m = maskFromWeights(w)
		} else if m.Rect != cr {
			return nil, errs.Precondition("view %d: mask bounds %v, canvas %v", v, m.Rect, cr)
		}
		if x, y, ok := findOutOfRange(w); ok {
			return nil, errs.Precondition("view %d: weight %v at (%d,%d) outside [0,1]", v, w.WeightAt(x, y), x, y)
		}
		if x, y, ok := findUnmaskedWeight(w, m); ok {
			return nil, errs.Precondition("view %d: nonzero weight outside mask at (%d,%d)", v, x, y)
		}
		s.weights[v] = w
		s.masks[v] = m
	}
	return s, nil
}

// Canvas returns the canvas rectangle all maps are defined on.
func (s *Set) Canvas() geometry.Rect { return s.canvas }

// ViewCount returns the number of views.
func (s *Set) ViewCount() int { return len(s.weights) }

// Weight returns the weight map of view v, or nil when v is out of range.
func (s *Set) Weight(v int) *Map {
	if v < 0 || v >= len(s.weights) {
		return nil
	}
	return s.weights[v]
}

// Mask returns the refined mask of view v, or nil when v is out of range.
func (s *Set) Mask(v int) *image.Gray {
	if v < 0 || v >= len(s.masks) {
		return nil
	}
	return s.masks[v]
}

func maskFromWeights(w *Map) *image.Gray {
	m := image.NewGray(w.Rect)
	for y := w.Rect.Min.Y; y < w.Rect.Max.Y; y++ {
		row := w.Row(y, w.Rect.Min.X, w.Rect.Max.X)
		off := m.PixOffset(w.Rect.Min.X, y)
		for i, wt := range row {
			if wt > 0 {
				m.Pix[off+i] = 255
			}
		}
	}
	return m
}

func findOutOfRange(w *Map) (int, int, bool) {
	for i, wt := range w.Pix {
		// negated so NaN fails too
		if !(wt >= 0 && wt <= 1) {
			return w.Rect.Min.X + i%w.Stride, w.Rect.Min.Y + i/w.Stride, true
		}
	}
	return 0, 0, false
}

func findUnmaskedWeight(w *Map, m *image.Gray) (int, int, bool) {
	for y := w.Rect.Min.Y; y < w.Rect.Max.Y; y++ {
		row := w.Row(y, w.Rect.Min.X, w.Rect.Max.X)
		off := m.PixOffset(w.Rect.Min.X, y)
		for i, wt := range row {
			if wt != 0 && m.Pix[off+i] == 0 {
				return w.Rect.Min.X + i, y, true
			}
		}
	}
	return 0, 0, false
}
