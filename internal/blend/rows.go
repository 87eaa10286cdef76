package blend

import "sync"

// minRowsPerWorker keeps small ROIs on the calling goroutine.
const minRowsPerWorker = 16

// parallelRows splits rows [y0, y1) into contiguous bands and runs fn on
// each band from its own goroutine. Bands never overlap, so fn may write to
// any buffer cell belonging to its rows without locking.
func parallelRows(y0, y1, workers int, fn func(y0, y1 int)) {
	h := y1 - y0
	if h <= 0 {
		return
	}
	if workers > h/minRowsPerWorker {
		workers = h / minRowsPerWorker
	}
	if workers <= 1 {
		fn(y0, y1)
		return
	}

	rowsPerWorker := (h + workers - 1) / workers

	var wg sync.WaitGroup
	for worker := 0; worker < workers; worker++ {
		startY := y0 + worker*rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > y1 {
			endY = y1
		}
		if startY >= y1 {
			break
		}

		wg.Add(1)
		go func(yStart, yEnd int) {
			defer wg.Done()
			fn(yStart, yEnd)
		}(startY, endY)
	}
	wg.Wait()
}
