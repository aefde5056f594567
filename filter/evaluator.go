package filter

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*Evaluator)

// WithWorkers sets the number of concurrent chunks
func WithWorkers(workers int) EvaluatorOption {
	return func(e *Evaluator) {
		if workers > 0 {
			e.workerCount = workers
		}
	}
}

// WithBatchSize sets the list size below which evaluation stays sequential
func WithBatchSize(size int) EvaluatorOption {
	return func(e *Evaluator) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// Evaluator applies compiled filters to lists, chunking large lists across goroutines.
type Evaluator struct {
	workerCount int
	batchSize   int
}

// NewEvaluator creates a new evaluator
func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   100,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Select returns the items matching filter, in their original order. Items
// that fail to evaluate do not match. A nil filter matches everything.
func Select[T any](ctx context.Context, e *Evaluator, filter CompiledFilter, items []T, envOf func(T) Env) ([]T, error) {
	if filter == nil {
		return items, nil
	}
	if len(items) == 0 {
		return []T{}, nil
	}
	if e == nil {
		e = NewEvaluator()
	}

	// For small lists, don't bother with concurrency
	if len(items) < e.batchSize || e.workerCount == 1 {
		return selectSequential(ctx, filter, items, envOf)
	}

	chunkSize := max(len(items)/e.workerCount, e.batchSize)
	chunks := make([][]T, (len(items)+chunkSize-1)/chunkSize)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount)

	for i := range chunks {
		start := i * chunkSize
		end := min(start+chunkSize, len(items))

		g.Go(func() error {
			matches, err := selectSequential(ctx, filter, items[start:end], envOf)
			if err != nil {
				return err
			}
			chunks[i] = matches
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	matches := make([]T, 0, total)
	for _, c := range chunks {
		matches = append(matches, c...)
	}
	return matches, nil
}

func selectSequential[T any](ctx context.Context, filter CompiledFilter, items []T, envOf func(T) Env) ([]T, error) {
	matches := make([]T, 0, len(items)/10)
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if ok, err := filter.Evaluate(envOf(item)); err == nil && ok {
			matches = append(matches, item)
		}
	}
	return matches, nil
}
