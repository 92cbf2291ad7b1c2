package condense

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type batchFunc func(ctx context.Context, items []Item) ([]Result, error)

func splitBatches(items []Item, size int) [][]Item {
	var batches [][]Item
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end])
	}
	return batches
}

// runBatches splits items into batches of opts.BatchSize and hands them to
// up to opts.Concurrency workers pulling from a shared queue. The first
// failing batch cancels the rest. Results come back sorted by Index.
func runBatches(
	ctx context.Context,
	items []Item,
	opts Options,
	fn batchFunc,
) ([]Result, error) {
	if len(items) == 0 {
		return []Result{}, nil
	}

	batches := splitBatches(items, opts.batchSize())
	if len(batches) == 1 {
		return fn(ctx, batches[0])
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type batchResult struct {
		index   int
		results []Result
		err     error
	}

	work := make(chan int)
	out := make(chan batchResult, len(batches))

	var wg sync.WaitGroup
	for i := 0; i < opts.concurrency() && i < len(batches); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case idx, ok := <-work:
					if !ok || ctx.Err() != nil {
						return
					}
					results, err := fn(ctx, batches[idx])
					if err != nil {
						cancel()
					}
					out <- batchResult{index: idx, results: results, err: err}
				}
			}
		}()
	}

	go func() {
		defer close(work)
		for i := range batches {
			select {
			case <-ctx.Done():
				return
			case work <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	var (
		all      []Result
		firstErr error
		done     int
	)
	for r := range out {
		if r.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("batch %d failed: %w", r.index, r.err)
			}
			continue
		}
		all = append(all, r.results...)
		done++
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if done != len(batches) {
		// cancelled from outside before every batch ran
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("only %d of %d batches completed", done, len(batches))
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].Index < all[j].Index
	})
	return all, nil
}
