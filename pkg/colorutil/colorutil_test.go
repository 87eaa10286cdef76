package colorutil

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRGB8(t *testing.T) {
	r, g, b := RGB8(color.RGBA{R: 10, G: 20, B: 30, A: 255})
	assert.Equal(t, []uint8{10, 20, 30}, []uint8{r, g, b})

	r, g, b = RGB8(color.Gray{Y: 128})
	assert.Equal(t, []uint8{128, 128, 128}, []uint8{r, g, b})

	r, g, b = RGB8(color.NRGBA{R: 255, G: 0, B: 100, A: 255})
	assert.Equal(t, []uint8{255, 0, 100}, []uint8{r, g, b})
}

func TestClampUint8(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{-3, 0},
		{0.49, 0},
		{0.5, 1},
		{127.5, 128},
		{254.6, 255},
		{300, 255},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampUint8(tt.in), "ClampUint8(%v)", tt.in)
	}
}
