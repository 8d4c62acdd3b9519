// Package parallel provides a chunked parallel-for used by row-wise transforms.
package parallel

import (
	"runtime"
	"sync"
)

// DefaultThreshold は並列化を開始する行数の目安
const DefaultThreshold = 4096

// Parallelize splits [0, items) into contiguous chunks, one per CPU core, and
// runs fn(start, end) for each chunk concurrently. fn must only write to rows
// inside its own range.
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > items {
		numWorkers = items
	}
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for start := 0; start < items; start += chunkSize {
		end := start + chunkSize
		if end > items {
			end = items
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn(0, items) on the calling goroutine when
// items does not exceed threshold, otherwise it behaves like Parallelize.
func ParallelizeWithThreshold(items, threshold int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}
