package weightmap

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	m := NewMap(image.Rect(0, 0, 4, 1))
	assert.Equal(t, Summary{}, Summarize(m))

	m.SetWeight(0, 0, 0.5)
	m.SetWeight(1, 0, 1)
	sum := Summarize(m)
	assert.InDelta(t, 0.5, sum.Coverage, 1e-9)
	assert.InDelta(t, 0.75, sum.MeanWeight, 1e-9)
	assert.InDelta(t, 1.0, sum.MaxWeight, 1e-9)
}
