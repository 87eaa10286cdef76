// Package colorutil provides 8-bit colour helpers shared by the blend engine and its tools.
package colorutil

import (
	"image/color"
	"math"
)

// Common solid colours used by the scenario generators and tests.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Red     = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Green   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Blue    = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Yellow  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// Palette is the order in which synthetic views are coloured.
var Palette = []color.RGBA{Red, Blue, Green, Yellow, Cyan, Magenta, White}

// RGB8 returns the 8-bit red, green and blue channels of c.
// Alpha is ignored: views are treated as opaque.
func RGB8(c color.Color) (r, g, b uint8) {
	if rgba, ok := c.(color.RGBA); ok {
		return rgba.R, rgba.G, rgba.B
	}
	r32, g32, b32, _ := c.RGBA()
	return uint8(r32 >> 8), uint8(g32 >> 8), uint8(b32 >> 8)
}

// ClampUint8 rounds v half away from zero and clamps it to [0, 255].
func ClampUint8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
