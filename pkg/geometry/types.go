// Package geometry provides the canvas geometry types shared by the blending pipeline.
package geometry

import (
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Rect is an axis-aligned integer rectangle on the shared canvas.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewRect creates a new Rect.
func NewRect(x, y, width, height int) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// FromImage converts an image.Rectangle to a Rect.
func FromImage(r image.Rectangle) Rect {
	return Rect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Image returns the equivalent image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Area returns Width*Height, or 0 for a degenerate rectangle.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

// Empty reports whether the rectangle contains no pixels.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Size returns the width and height as an image.Point.
func (r Rect) Size() image.Point {
	return image.Point{X: r.Width, Y: r.Height}
}

// In reports whether every pixel of r lies inside other.
// An empty r is never considered inside.
func (r Rect) In(other Rect) bool {
	if r.Empty() {
		return false
	}
	return r.X >= other.X && r.Y >= other.Y &&
		r.X+r.Width <= other.X+other.Width &&
		r.Y+r.Height <= other.Y+other.Height
}

// Contains reports whether the pixel (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Intersect returns the largest rectangle contained by both r and other.
// The result is the zero Rect when they do not overlap.
func (r Rect) Intersect(other Rect) Rect {
	ir := r.Image().Intersect(other.Image())
	if ir.Empty() {
		return Rect{}
	}
	return FromImage(ir)
}

// String formats the rectangle as "x,y,w,h", the form accepted by ParseRect.
func (r Rect) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.X, r.Y, r.Width, r.Height)
}

// ParseRect parses "x,y,w,h".
func ParseRect(s string) (Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Rect{}, fmt.Errorf("rect %q: want x,y,w,h", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Rect{}, fmt.Errorf("rect %q: %w", s, err)
		}
		v[i] = n
	}
	return NewRect(v[0], v[1], v[2], v[3]), nil
}
