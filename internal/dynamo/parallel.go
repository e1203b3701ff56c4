package dynamo

import (
	"runtime"
	"sync"
)

// Workers normalizes a requested worker count: values below one mean
// "use every CPU".
func Workers(requested int) int {
	if requested < 1 {
		return runtime.GOMAXPROCS(0)
	}
	return requested
}

// ParallelFor splits [0, n) into at most workers contiguous chunks and runs
// fn on each chunk in its own goroutine. Chunk w always covers a range that
// starts after chunk w-1, so callers that merge per-worker results in
// worker order see them in ascending index order. It returns the number of
// chunks actually used.
func ParallelFor(n, workers, minChunk int, fn func(worker, start, end int)) int {
	if minChunk < 1 {
		minChunk = 1
	}
	if n <= minChunk || workers <= 1 {
		fn(0, 0, n)
		return 1
	}

	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers
	used := (n + chunkSize - 1) / chunkSize

	var wg sync.WaitGroup
	wg.Add(used)

	for w := 0; w < used; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}

		go func(id, s, e int) {
			defer wg.Done()
			fn(id, s, e)
		}(w, start, end)
	}

	wg.Wait()
	return used
}
