// Package parallel provides the data-parallel helpers used by series
// evaluation: contiguous chunking of an index range over an errgroup, and
// chunk-wise reductions.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/cpu"
)

// Range is the half-open index interval [Lo, Hi).
type Range struct {
	Lo, Hi int
}

// Chunks splits [0, n) into at most workers contiguous ranges of at least
// grain indices each. With n <= grain, or a single worker, the whole range
// is one chunk.
func Chunks(n, grain, workers int) []Range {
	if n <= 0 {
		return nil
	}
	grain = max(grain, 1)
	workers = max(workers, 1)
	count := min(workers, max(n/grain, 1))
	out := make([]Range, 0, count)
	size, extra := n/count, n%count
	lo := 0
	for i := 0; i < count; i++ {
		hi := lo + size
		if i < extra {
			hi++
		}
		out = append(out, Range{Lo: lo, Hi: hi})
		lo = hi
	}
	return out
}

// ForEachChunk runs fn over the chunks of [0, n) on an errgroup bounded by
// GOMAXPROCS. A single chunk runs on the calling goroutine. The first error
// cancels the context passed to the other chunks and is returned.
func ForEachChunk(ctx context.Context, n, grain int, fn func(ctx context.Context, r Range) error) error {
	chunks := Chunks(n, grain, runtime.GOMAXPROCS(0))
	return run(ctx, chunks, func(ctx context.Context, _ int, r Range) error { return fn(ctx, r) })
}

func run(ctx context.Context, chunks []Range, fn func(ctx context.Context, i int, r Range) error) error {
	if len(chunks) <= 1 {
		for i, r := range chunks {
			if err := fn(ctx, i, r); err != nil {
				return err
			}
		}
		return ctx.Err()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, r := range chunks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, i, r)
		})
	}
	return g.Wait()
}

// partial is a per-chunk accumulator padded to its own cache line so that
// neighbouring chunks do not false-share.
type partial struct {
	sum float64
	_   cpu.CacheLinePad
}

// Sum returns Σ f(i) for i in [0, n), evaluated chunk-wise in parallel.
func Sum(ctx context.Context, n, grain int, f func(i int) float64) (float64, error) {
	chunks := Chunks(n, grain, runtime.GOMAXPROCS(0))
	partials := make([]partial, len(chunks))
	err := run(ctx, chunks, func(_ context.Context, i int, r Range) error {
		p := &partials[i]
		for j := r.Lo; j < r.Hi; j++ {
			p.sum += f(j)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	var total float64
	for _, p := range partials {
		total += p.sum
	}
	return total, nil
}
