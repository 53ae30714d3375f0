package parallel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
)

func TestChunks(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		n       int
		grain   int
		workers int
		want    int
	}{
		{"empty", 0, 10, 4, 0},
		{"below grain", 5, 10, 4, 1},
		{"single worker", 1000, 10, 1, 1},
		{"bounded by workers", 1000, 10, 4, 4},
		{"bounded by grain", 35, 10, 8, 3},
		{"zero grain treated as one", 3, 0, 8, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			chunks := Chunks(tt.n, tt.grain, tt.workers)
			if len(chunks) != tt.want {
				t.Fatalf("len(Chunks) = %d, want %d", len(chunks), tt.want)
			}
			next := 0
			for _, r := range chunks {
				if r.Lo != next || r.Hi <= r.Lo {
					t.Fatalf("chunks not contiguous: %v", chunks)
				}
				next = r.Hi
			}
			if tt.n > 0 && next != tt.n {
				t.Fatalf("chunks cover [0,%d), want [0,%d)", next, tt.n)
			}
		})
	}
}

func TestForEachChunkCoversRange(t *testing.T) {
	t.Parallel()
	const n = 10_000
	seen := make([]int32, n)
	err := ForEachChunk(context.Background(), n, 100, func(_ context.Context, r Range) error {
		for i := r.Lo; i < r.Hi; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	for i, c := range seen {
		if c != 1 {
			t.Fatalf("index %d visited %d times", i, c)
		}
	}
}

func TestForEachChunkPropagatesError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	err := ForEachChunk(context.Background(), 1000, 1, func(_ context.Context, r Range) error {
		if r.Lo == 0 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestForEachChunkCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ForEachChunk(ctx, 10, 100, func(context.Context, Range) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestSum(t *testing.T) {
	t.Parallel()
	got, err := Sum(context.Background(), 1001, 16, func(i int) float64 { return float64(i) })
	if err != nil {
		t.Fatal(err)
	}
	if got != 1000*1001/2 {
		t.Errorf("Sum = %g, want %d", got, 1000*1001/2)
	}
}

// TestForEachChunkErrorContention makes every chunk fail at once and checks
// that exactly one of their errors comes back, over many rounds.
func TestForEachChunkErrorContention(t *testing.T) {
	t.Parallel()
	for round := 0; round < 50; round++ {
		var calls atomic.Int64
		err := ForEachChunk(context.Background(), 4096, 1, func(_ context.Context, r Range) error {
			calls.Add(1)
			return fmt.Errorf("chunk %d failed", r.Lo)
		})
		if err == nil {
			t.Fatalf("round %d: expected an error", round)
		}
		if !strings.HasPrefix(err.Error(), "chunk ") {
			t.Errorf("round %d: unexpected error %v", round, err)
		}
		if calls.Load() == 0 {
			t.Fatalf("round %d: no chunk ran", round)
		}
	}
}
