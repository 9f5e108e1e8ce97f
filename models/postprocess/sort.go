package postprocess

import (
	"cmp"
	"runtime"
	"slices"
	"sync"
)

// ParallelSortThreshold is the candidate count below which sorting always
// runs on the calling goroutine.
const ParallelSortThreshold = 4096

// maxSortWorkers caps the goroutines used by SortByConfidence.
const maxSortWorkers = 8

func byConfidence(a, b Result) int {
	return cmp.Compare(b.Score, a.Score)
}

func byArea(a, b Result) int {
	return cmp.Compare(b.Box.Area(), a.Box.Area())
}

// SortByConfidence orders results by descending Score in place. The sort is
// stable: results with equal scores keep their decode order.
//
// Large inputs are split into contiguous chunks sorted concurrently and then
// merged; the output is identical to the sequential sort.
//
// Arguments:
//   - results: The candidates to sort.
func SortByConfidence(results []Result) {
	workers := min(runtime.GOMAXPROCS(0), maxSortWorkers)
	if len(results) < ParallelSortThreshold || workers < 2 {
		slices.SortStableFunc(results, byConfidence)
		return
	}

	chunk := (len(results) + workers - 1) / workers
	runs := make([][]Result, 0, workers)

	var wg sync.WaitGroup
	for start := 0; start < len(results); start += chunk {
		run := results[start:min(start+chunk, len(results))]
		runs = append(runs, run)

		wg.Add(1)
		go func() {
			defer wg.Done()
			slices.SortStableFunc(run, byConfidence)
		}()
	}
	wg.Wait()

	copy(results, mergeRuns(runs, len(results)))
}

// mergeRuns merges sorted runs into a new slice. On equal scores the earlier
// run wins, which keeps the merge stable.
func mergeRuns(runs [][]Result, n int) []Result {
	merged := make([]Result, 0, n)
	heads := make([]int, len(runs))

	for len(merged) < n {
		best := -1
		for r, run := range runs {
			if heads[r] == len(run) {
				continue
			}
			if best < 0 || byConfidence(run[heads[r]], runs[best][heads[best]]) < 0 {
				best = r
			}
		}
		merged = append(merged, runs[best][heads[best]])
		heads[best]++
	}

	return merged
}

// SortByArea orders results by descending box area in place, stable on ties.
func SortByArea(results []Result) {
	slices.SortStableFunc(results, byArea)
}
