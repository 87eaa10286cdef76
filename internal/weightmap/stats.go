package weightmap

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes a weight map.
type Summary struct {
	// Coverage is the fraction of canvas pixels with nonzero weight.
	Coverage float64
	// MeanWeight is the mean weight over covered pixels.
	MeanWeight float64
	// MaxWeight is the largest weight in the map.
	MaxWeight float64
}

// Summarize computes a Summary. An all-zero map yields the zero Summary.
func Summarize(m *Map) Summary {
	if len(m.Pix) == 0 {
		return Summary{}
	}
	covered := make([]float64, 0, len(m.Pix))
	for _, w := range m.Pix {
		if w > 0 {
			covered = append(covered, float64(w))
		}
	}
	if len(covered) == 0 {
		return Summary{}
	}
	return Summary{
		Coverage:   float64(len(covered)) / float64(len(m.Pix)),
		MeanWeight: stat.Mean(covered, nil),
		MaxWeight:  floats.Max(covered),
	}
}
