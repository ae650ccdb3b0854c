package blogbook

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Partition splits items into contiguous chunks of at most size elements,
// preserving order. A size below 1 is treated as 1.
func Partition[T any](items []T, size int) [][]T {
	if size < 1 {
		size = 1
	}
	if len(items) == 0 {
		return nil
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}

// Task processes one item. index is the item's position in the full list.
type Task[T any] func(ctx context.Context, index int, item T) error

// RunChunked runs task over items in chunks of at most limit. Chunks run
// strictly one after another; every task of a chunk runs concurrently and
// the chunk waits until all of them settled. Failures and panics are
// recorded at the item's index and never stop siblings or later chunks.
// Items of chunks not started because ctx was cancelled record ctx.Err().
//
// onChunk, when non-nil, is called before each chunk with its 1-based
// number and the chunk count.
func RunChunked[T any](ctx context.Context, items []T, limit int, task Task[T], onChunk func(chunk, total int)) []error {
	errs := make([]error, len(items))
	chunks := Partition(items, limit)

	offset := 0
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			for j := offset; j < len(items); j++ {
				errs[j] = err
			}
			break
		}
		if onChunk != nil {
			onChunk(i+1, len(chunks))
		}

		// Plain Group, not WithContext: a failure must not cancel siblings.
		var g errgroup.Group
		for j, item := range chunk {
			idx := offset + j
			g.Go(func() error {
				errs[idx] = runTask(ctx, task, idx, item)
				return nil
			})
		}
		_ = g.Wait()

		offset += len(chunk)
	}
	return errs
}

func runTask[T any](ctx context.Context, task Task[T], index int, item T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %d panicked: %v", index, r)
		}
	}()
	return task(ctx, index, item)
}
