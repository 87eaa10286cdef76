package blend

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParallelRowsCoversEveryRowOnce(t *testing.T) {
	tests := []struct {
		y0, y1, workers int
	}{
		{0, 0, 4},
		{0, 5, 4},
		{3, 200, 1},
		{3, 200, 7},
		{-10, 90, 32},
		{0, 64, 4},
	}
	for _, tt := range tests {
		var mu sync.Mutex
		seen := make(map[int]int)
		parallelRows(tt.y0, tt.y1, tt.workers, func(y0, y1 int) {
			mu.Lock()
			defer mu.Unlock()
			for y := y0; y < y1; y++ {
				seen[y]++
			}
		})
		assert.Len(t, seen, tt.y1-tt.y0, "%+v", tt)
		for y := tt.y0; y < tt.y1; y++ {
			assert.Equal(t, 1, seen[y], "row %d of %+v", y, tt)
		}
	}
}
