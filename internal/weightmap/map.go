package weightmap

import (
	"image"
	"image/color"
)

// Map is a per-view blend weight field on the canvas.
type Map struct {
	// Pix holds the weights. The value at (x, y) starts at
	// Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)].
	Pix []float32
	// Stride is the Pix stride between vertically adjacent pixels.
	Stride int
	// Rect is the Map's bounds in canvas coordinates.
	Rect image.Rectangle
}

// NewMap returns a zero-filled Map with the given bounds.
func NewMap(r image.Rectangle) *Map {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		w, h = 0, 0
	}
	return &Map{
		Pix:    make([]float32, w*h),
		Stride: w,
		Rect:   r,
	}
}

// PixOffset returns the index of Pix that corresponds to (x, y).
func (m *Map) PixOffset(x, y int) int {
	return (y-m.Rect.Min.Y)*m.Stride + (x - m.Rect.Min.X)
}

// WeightAt returns the weight at (x, y), or 0 out of bounds.
func (m *Map) WeightAt(x, y int) float32 {
	if !(image.Point{x, y}.In(m.Rect)) {
		return 0
	}
	return m.Pix[m.PixOffset(x, y)]
}

// SetWeight sets the weight at (x, y). Out of bounds writes are ignored.
func (m *Map) SetWeight(x, y int, w float32) {
	if !(image.Point{x, y}.In(m.Rect)) {
		return
	}
	m.Pix[m.PixOffset(x, y)] = w
}

// Row returns the weights of row y for columns [x0, x1).
// The range must lie inside the map.
func (m *Map) Row(y, x0, x1 int) []float32 {
	i := m.PixOffset(x0, y)
	return m.Pix[i : i+(x1-x0)]
}

// Fill sets every weight to w.
func (m *Map) Fill(w float32) {
	for i := range m.Pix {
		m.Pix[i] = w
	}
}

// The weight map is viewed as a Gray16 image, 1.0 mapping to 0xffff.
func (m *Map) ColorModel() color.Model { return color.Gray16Model }

func (m *Map) Bounds() image.Rectangle { return m.Rect }

func (m *Map) At(x, y int) color.Color {
	w := m.WeightAt(x, y)
	if w <= 0 {
		return color.Gray16{}
	}
	if w >= 1 {
		return color.Gray16{Y: 0xffff}
	}
	return color.Gray16{Y: uint16(w*0xffff + 0.5)}
}
