package geometry

import (
	"image"
	"math"
)

// PointInPolygon tests if a point is inside a polygon using ray casting.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := polygon[i], polygon[j]

		// Check if ray from p going right intersects edge pi-pj
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// BoundingBox returns the smallest integer rectangle holding every vertex.
func BoundingBox(points []Point2D) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	x0, y0 := int(math.Floor(minX)), int(math.Floor(minY))
	x1, y1 := int(math.Ceil(maxX)), int(math.Ceil(maxY))
	return NewRect(x0, y0, x1-x0, y1-y0)
}

// FillPolygon sets every pixel of mask whose centre lies inside polygon to
// 255. Pixels outside the polygon are left untouched.
func FillPolygon(mask *image.Gray, polygon []Point2D) {
	bb := BoundingBox(polygon).Intersect(FromImage(mask.Rect))
	for y := bb.Y; y < bb.Y+bb.Height; y++ {
		for x := bb.X; x < bb.X+bb.Width; x++ {
			if PointInPolygon(Point2D{X: float64(x) + 0.5, Y: float64(y) + 0.5}, polygon) {
				mask.Pix[mask.PixOffset(x, y)] = 255
			}
		}
	}
}
