package worker_test

import (
	"context"
	"sort"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/remaimber-it/quizengine/internal/worker"
)

func TestPool_RunsEveryJob(t *testing.T) {
	pool := worker.NewPool[int](context.Background(), 3, 4)

	var running atomic.Int32
	go func() {
		for i := range 10 {
			pool.Submit(strconv.Itoa(i), func(context.Context) int {
				running.Add(1)
				return i * i
			})
		}
		pool.Close()
	}()

	var ids []int
	sum := 0
	for res := range pool.Results() {
		n, err := strconv.Atoi(res.JobID)
		if err != nil {
			t.Fatalf("unexpected job id %q", res.JobID)
		}
		if res.Output != n*n {
			t.Errorf("job %d: expected %d, got %d", n, n*n, res.Output)
		}
		ids = append(ids, n)
		sum += res.Output
	}

	if len(ids) != 10 || running.Load() != 10 {
		t.Fatalf("expected 10 results, got %d (ran %d)", len(ids), running.Load())
	}
	sort.Ints(ids)
	for i, id := range ids {
		if id != i {
			t.Errorf("missing job %d", i)
		}
	}
	if sum != 285 {
		t.Errorf("expected sum 285, got %d", sum)
	}
}

func TestPool_PassesContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := worker.NewPool[error](ctx, 1, 1)
	pool.Submit("only", func(ctx context.Context) error { return ctx.Err() })
	pool.Close()

	res := <-pool.Results()
	if res.Output != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", res.Output)
	}
	if _, ok := <-pool.Results(); ok {
		t.Error("expected results to close")
	}
}

func TestPool_CloseTwice(t *testing.T) {
	pool := worker.NewPool[int](context.Background(), 2, 0)
	pool.Close()
	pool.Close()

	if _, ok := <-pool.Results(); ok {
		t.Error("expected closed results channel")
	}
}
