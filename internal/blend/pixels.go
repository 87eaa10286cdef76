package blend

import (
	"image"

	"multiview-blend/pkg/colorutil"
)

// readRow widens n pixels of row y starting at column x0 into dst as
// interleaved R, G, B int16 values. dst must hold 3*n values.
func readRow(img image.Image, x0, y, n int, dst []int16) {
	switch src := img.(type) {
	case *image.RGBA:
		i := src.PixOffset(x0, y)
		widen4(src.Pix[i:i+4*n], dst)
	case *image.NRGBA:
		i := src.PixOffset(x0, y)
		widenNRGBA(src.Pix[i:i+4*n], dst)
	case *image.Gray:
		i := src.PixOffset(x0, y)
		for x, v := range src.Pix[i : i+n] {
			dst[3*x+0] = int16(v)
			dst[3*x+1] = int16(v)
			dst[3*x+2] = int16(v)
		}
	default:
		for x := 0; x < n; x++ {
			r, g, b := colorutil.RGB8(img.At(x0+x, y))
			dst[3*x+0] = int16(r)
			dst[3*x+1] = int16(g)
			dst[3*x+2] = int16(b)
		}
	}
}

func widen4(pix []uint8, dst []int16) {
	for x := 0; x*4 < len(pix); x++ {
		dst[3*x+0] = int16(pix[4*x+0])
		dst[3*x+1] = int16(pix[4*x+1])
		dst[3*x+2] = int16(pix[4*x+2])
	}
}

// widenNRGBA premultiplies by alpha the way color.NRGBA.RGBA does, so the
// result matches the generic path bit for bit.
func widenNRGBA(pix []uint8, dst []int16) {
	for x := 0; x*4 < len(pix); x++ {
		a := uint32(pix[4*x+3])
		if a == 0xff {
			dst[3*x+0] = int16(pix[4*x+0])
			dst[3*x+1] = int16(pix[4*x+1])
			dst[3*x+2] = int16(pix[4*x+2])
			continue
		}
		for c := 0; c < 3; c++ {
			v := uint32(pix[4*x+c])
			v |= v << 8
			dst[3*x+c] = int16(v * a / 0xff >> 8)
		}
	}
}
