package blend

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"multiview-blend/internal/weightmap"
	"multiview-blend/pkg/geometry"
)

func solid(r image.Rectangle, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// uniformWeights returns a weight map holding w inside fill and 0 elsewhere.
func uniformWeights(canvas geometry.Rect, fill image.Rectangle, w float32) *weightmap.Map {
	m := weightmap.NewMap(canvas.Image())
	fill = fill.Intersect(canvas.Image())
	for y := fill.Min.Y; y < fill.Max.Y; y++ {
		for x := fill.Min.X; x < fill.Max.X; x++ {
			m.SetWeight(x, y, w)
		}
	}
	return m
}

func newSet(t *testing.T, canvas geometry.Rect, maps ...*weightmap.Map) *weightmap.Set {
	t.Helper()
	s, err := weightmap.NewSet(canvas, maps, nil)
	require.NoError(t, err)
	return s
}

func newAcc(t *testing.T, set *weightmap.Set, opts ...Option) *Accumulator {
	t.Helper()
	a, err := New(set, opts...)
	require.NoError(t, err)
	return a
}

func blendOnce(t *testing.T, a *Accumulator, roi geometry.Rect, images ...image.Image) (*image.RGBA, *image.Gray) {
	t.Helper()
	require.NoError(t, a.Prepare(roi))
	require.NoError(t, a.Feed(images))
	dst, mask, err := a.Finish()
	require.NoError(t, err)
	return dst, mask
}
