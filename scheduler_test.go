package blogbook

// Notes:
// - Concurrency inside a chunk is observed with an in-flight counter; the
//   barrier between chunks is observed by recording which chunk each task
//   ran in and checking that no task of chunk N+1 starts before chunk N ends.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestPartition - Contiguous chunking
// ---------------------------------------------------------------------------

func TestPartition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		items []int
		size  int
		want  [][]int
	}{
		{
			name:  "empty",
			items: nil,
			size:  3,
			want:  nil,
		},
		{
			name:  "single item",
			items: []int{1},
			size:  3,
			want:  [][]int{{1}},
		},
		{
			name:  "exact multiple",
			items: []int{1, 2, 3, 4, 5, 6},
			size:  3,
			want:  [][]int{{1, 2, 3}, {4, 5, 6}},
		},
		{
			name:  "one over",
			items: []int{1, 2, 3, 4},
			size:  3,
			want:  [][]int{{1, 2, 3}, {4}},
		},
		{
			name:  "size below one treated as one",
			items: []int{1, 2},
			size:  0,
			want:  [][]int{{1}, {2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Partition(tt.items, tt.size)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Partition(%v, %d) = %v, want %v", tt.items, tt.size, got, tt.want)
			}
		})
	}
}

func TestPartition_AppendDoesNotClobber(t *testing.T) {
	t.Parallel()

	items := []int{1, 2, 3, 4}
	chunks := Partition(items, 2)
	_ = append(chunks[0], 99)
	if items[2] != 3 {
		t.Errorf("appending to a chunk overwrote the next item: %v", items)
	}
}

// ---------------------------------------------------------------------------
// TestRunChunked - Exactly-once execution and isolation
// ---------------------------------------------------------------------------

func TestRunChunked_ExactlyOnce(t *testing.T) {
	t.Parallel()

	const limit = 3
	for _, n := range []int{0, 1, limit, limit + 1} {
		items := make([]int, n)
		for i := range items {
			items[i] = i
		}

		counts := make([]atomic.Int32, n)
		var chunks []int
		errs := RunChunked(context.Background(), items, limit,
			func(_ context.Context, i int, item int) error {
				if i != item {
					t.Errorf("task index %d got item %d", i, item)
				}
				counts[i].Add(1)
				return nil
			},
			func(chunk, total int) { chunks = append(chunks, total) })

		if len(errs) != n {
			t.Fatalf("N=%d: len(errs) = %d", n, len(errs))
		}
		for i := range counts {
			if got := counts[i].Load(); got != 1 {
				t.Errorf("N=%d: item %d ran %d times", n, i, got)
			}
			if errs[i] != nil {
				t.Errorf("N=%d: errs[%d] = %v", n, i, errs[i])
			}
		}
		wantChunks := (n + limit - 1) / limit
		if len(chunks) != wantChunks {
			t.Errorf("N=%d: onChunk called %d times, want %d", n, len(chunks), wantChunks)
		}
	}
}

func TestRunChunked_ChunkBarrier(t *testing.T) {
	t.Parallel()

	const limit = 2
	items := []int{0, 1, 2, 3, 4}

	var (
		mu       sync.Mutex
		current  int
		started  = map[int]int{}
		inFlight atomic.Int32
		peak     atomic.Int32
	)
	RunChunked(context.Background(), items, limit,
		func(_ context.Context, i int, _ int) error {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			mu.Lock()
			started[i] = current
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)
			return nil
		},
		func(chunk, _ int) {
			if n := inFlight.Load(); n != 0 {
				t.Errorf("chunk %d started with %d tasks still running", chunk, n)
			}
			mu.Lock()
			current = chunk
			mu.Unlock()
		})

	if got := peak.Load(); got > limit {
		t.Errorf("peak concurrency = %d, want <= %d", got, limit)
	}
	want := map[int]int{0: 1, 1: 1, 2: 2, 3: 2, 4: 3}
	if !reflect.DeepEqual(started, want) {
		t.Errorf("chunk per item = %v, want %v", started, want)
	}
}

func TestRunChunked_FailureIsolation(t *testing.T) {
	t.Parallel()

	errBad := errors.New("bad document")
	items := []string{"a", "bad", "c", "panic", "e"}
	var ran atomic.Int32

	errs := RunChunked(context.Background(), items, 2,
		func(_ context.Context, _ int, item string) error {
			ran.Add(1)
			switch item {
			case "bad":
				return errBad
			case "panic":
				panic("renderer exploded")
			}
			return nil
		}, nil)

	if got := ran.Load(); got != int32(len(items)) {
		t.Errorf("ran %d tasks, want %d", got, len(items))
	}
	for i, err := range errs {
		switch items[i] {
		case "bad":
			if !errors.Is(err, errBad) {
				t.Errorf("errs[%d] = %v, want %v", i, err, errBad)
			}
		case "panic":
			if err == nil {
				t.Errorf("errs[%d] = nil, want recovered panic", i)
			}
		default:
			if err != nil {
				t.Errorf("errs[%d] = %v, want nil", i, err)
			}
		}
	}
}

func TestRunChunked_CancelBetweenChunks(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	items := []int{0, 1, 2, 3, 4}
	var ran atomic.Int32
	errs := RunChunked(ctx, items, 2,
		func(_ context.Context, i int, _ int) error {
			ran.Add(1)
			if i == 0 {
				cancel()
			}
			return nil
		}, nil)

	if got := ran.Load(); got != 2 {
		t.Errorf("ran %d tasks, want only the first chunk (2)", got)
	}
	for i := 2; i < len(items); i++ {
		if !errors.Is(errs[i], context.Canceled) {
			t.Errorf("errs[%d] = %v, want context.Canceled", i, errs[i])
		}
	}
}
