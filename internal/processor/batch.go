package processor

import (
	"sync"

	"github.com/woozymasta/wpcmap/internal/config"

	"github.com/rs/zerolog/log"
)

type job struct {
	index int
	path  string
}

// BatchResult is the outcome of one bulletin of a batch.
type BatchResult struct {
	Path string
	Result
	Err error
}

// ProcessBatch renders every bulletin with up to concurrency workers and
// returns the outcomes in input order. Diagnostics force a single worker
// so the output of different bulletins does not interleave.
func ProcessBatch(paths []string, cfg *config.Config, opts Options, concurrency int) []BatchResult {
	if concurrency <= 0 || opts.Diag != nil {
		concurrency = 1
	}
	concurrency = min(concurrency, max(len(paths), 1))

	jobs := make(chan job, len(paths))
	results := make([]BatchResult, len(paths))

	go func() {
		for i, p := range paths {
			jobs <- job{index: i, path: p}
		}
		close(jobs)
	}()

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res, err := ProcessBulletin(j.path, cfg, opts)
				if err != nil {
					log.Error().Err(err).Str("path", j.path).Msg("Failed to process bulletin")
				}
				results[j.index] = BatchResult{Path: j.path, Result: res, Err: err}
			}
		}()
	}
	wg.Wait()

	return results
}

// Failed counts the batch outcomes with an error.
func Failed(results []BatchResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
