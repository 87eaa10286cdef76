package weightmap

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/mrjoshuak/go-openexr/exr"
)

// ToEXR copies the weights into an OpenEXR RGBA image anchored at the
// origin, the weight in R, G and B and alpha set to 1.
func ToEXR(m *Map) *exr.RGBAImage {
	w, h := m.Rect.Dx(), m.Rect.Dy()
	img := exr.NewRGBAImage(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := m.Row(m.Rect.Min.Y+y, m.Rect.Min.X, m.Rect.Max.X)
		for x, wt := range row {
			img.SetRGBA(x, y, wt, wt, wt, 1)
		}
	}
	return img
}

// WriteEXR encodes m as a half-float OpenEXR image.
func WriteEXR(w io.WriteSeeker, m *Map) error {
	if err := exr.Encode(w, ToEXR(m)); err != nil {
		return fmt.Errorf("encode weight map: %w", err)
	}
	return nil
}

// WriteEXRFile writes m to path as OpenEXR.
func WriteEXRFile(path string, m *Map) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteEXR(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
