package weightmap

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// refineAndWeigh runs the OpenCV side of the builder for one mask and
// returns Go-owned copies of the refined mask and the weight field, both
// tightly packed (stride == width).
func refineAndWeigh(mask *image.Gray, sharpness float32) ([]byte, []float32, error) {
	w, h := mask.Rect.Dx(), mask.Rect.Dy()

	src, err := grayToMat(mask)
	if err != nil {
		return nil, nil, err
	}
	defer src.Close()

	// 3x3 rectangle: the OpenCV default dilation kernel
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{3, 3})
	defer kernel.Close()

	dilated := gocv.NewMat()
	defer dilated.Close()
	gocv.Dilate(src, &dilated, kernel)

	seam := gocv.NewMat()
	defer seam.Close()
	gocv.Resize(dilated, &seam, image.Point{X: w, Y: h}, 0, 0, gocv.InterpolationLinear)

	refined := gocv.NewMat()
	defer refined.Close()
	gocv.BitwiseAnd(seam, src, &refined)

	dist := gocv.NewMat()
	defer dist.Close()
	labels := gocv.NewMat()
	defer labels.Close()
	gocv.DistanceTransform(refined, &dist, &labels, gocv.DistL1, gocv.DistanceMask3, gocv.DistanceLabelCComp)

	dist.MultiplyFloat(sharpness)

	weight := gocv.NewMat()
	defer weight.Close()
	gocv.Threshold(dist, &weight, 1, 1, gocv.ThresholdTrunc)

	refinedPix := refined.ToBytes()
	if len(refinedPix) != w*h {
		return nil, nil, fmt.Errorf("refined mask: got %d bytes, want %d", len(refinedPix), w*h)
	}

	wp, err := weight.DataPtrFloat32()
	if err != nil {
		return nil, nil, fmt.Errorf("weight map: %w", err)
	}
	if len(wp) != w*h {
		return nil, nil, fmt.Errorf("weight map: got %d values, want %d", len(wp), w*h)
	}
	weightPix := make([]float32, len(wp))
	copy(weightPix, wp)

	return refinedPix, weightPix, nil
}

// grayToMat copies a Gray image into a new CV_8UC1 Mat.
func grayToMat(g *image.Gray) (gocv.Mat, error) {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	m := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC1)
	dst, err := m.DataPtrUint8()
	if err != nil {
		m.Close()
		return gocv.Mat{}, fmt.Errorf("mask: %w", err)
	}
	for y := 0; y < h; y++ {
		i := g.PixOffset(g.Rect.Min.X, g.Rect.Min.Y+y)
		copy(dst[y*w:(y+1)*w], g.Pix[i:i+w])
	}
	return m, nil
}
