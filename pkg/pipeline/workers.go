// Package pipeline runs the read and apply passes over a set of files: every file gets its
// own scanner and visitor, files are processed by a bounded worker pool, and results are
// merged back in file order.
package pipeline

import (
	"context"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// WorkersEnv overrides the worker count when Options.Workers is not set.
const WorkersEnv = "TRANSLTR_WORKERS"

// runFiles calls process for every path on up to workers goroutines and returns the
// results in path order. Paths not started before ctx is done get ctx.Err().
func runFiles[T any](ctx context.Context, paths []string, workers int, process func(path string) (T, error)) ([]T, []error) {
	results := make([]T, len(paths))
	errs := make([]error, len(paths))
	if len(paths) == 0 {
		return results, errs
	}

	workers = workerCount(workers, len(paths))
	taskCh := make(chan int, len(paths))
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for idx := range taskCh {
				if err := ctx.Err(); err != nil {
					errs[idx] = err
					continue
				}
				results[idx], errs[idx] = process(paths[idx])
			}
		}()
	}

	for i := range paths {
		taskCh <- i
	}
	close(taskCh)
	wg.Wait()
	return results, errs
}

func workerCount(requested, taskCount int) int {
	if taskCount <= 0 {
		return 0
	}

	workers := requested
	if workers <= 0 {
		if raw := strings.TrimSpace(os.Getenv(WorkersEnv)); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				workers = parsed
			}
		}
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers < 1 {
		workers = 1
	}
	if workers > taskCount {
		workers = taskCount
	}
	return workers
}
