package scanner

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gnana997/propspec/pkg/props"
	"github.com/gnana997/propspec/pkg/util"
)

// ScanFiles extracts props from each file in parallel.
// Results come back in the order of files. Errors on individual files are
// recorded on their FileResult and don't stop the pipeline. onDone, when not
// nil, is called once per file as it completes, from worker goroutines.
func ScanFiles(
	ctx context.Context,
	ext *props.Extractor,
	files []string,
	opts props.Options,
	workers int,
	onDone func(FileResult),
	logger *slog.Logger,
) []FileResult {
	if len(files) == 0 {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	numWorkers := util.GetOptimalPoolSizeWithOverride(workers)
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	results := make([]FileResult, len(files))
	jobs := make(chan int, numWorkers*2)

	// Start workers. Each writes only its own slots of results.
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				path := files[idx]
				res := FileResult{Path: path}
				res.Props, res.Err = ext.ExtractFile(ctx, path, opts)
				if res.Err != nil {
					res.Error = res.Err.Error()
					logger.Debug("extraction failed", "file", path, "error", res.Err)
				}
				results[idx] = res
				if onDone != nil {
					onDone(res)
				}
			}
		}()
	}

	// Submit jobs.
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
