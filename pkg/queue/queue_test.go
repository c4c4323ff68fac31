package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type recordJob struct {
	Label string `json:"label"`

	calls *atomic.Int32
	done  chan string
	fails int32
}

func (j *recordJob) Handle(context.Context) error {
	n := j.calls.Add(1)
	if n <= j.fails {
		return errors.New("transient failure")
	}

	select {
	case j.done <- j.Label:
	default:
	}
	return nil
}

func waitFor(t *testing.T, ch chan string, want string) {
	t.Helper()
	select {
	case got := <-ch:
		if got != want {
			t.Fatalf("processed job %q, want %q", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("job %q was not processed in time", want)
	}
}

func TestDispatchAndProcess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan string, 1)

	m := NewManager(NewMemoryDriver())
	m.Register("record", func() Job {
		return &recordJob{calls: &calls, done: done}
	})
	m.Start(ctx, 2)

	if err := m.Dispatch("record", &recordJob{Label: "first"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	waitFor(t, done, "first")
	if got := calls.Load(); got != 1 {
		t.Fatalf("job ran %d times, want 1", got)
	}
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan string, 1)

	m := NewManager(NewMemoryDriver())
	m.Register("flaky", func() Job {
		return &recordJob{calls: &calls, done: done, fails: 1}
	})
	m.Start(ctx, 1)

	if err := m.Dispatch("flaky", &recordJob{Label: "retried"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	waitFor(t, done, "retried")
	if got := calls.Load(); got != 2 {
		t.Fatalf("job ran %d times, want 2", got)
	}
	if failed := m.FailedJobs(); len(failed) != 0 {
		t.Fatalf("failed jobs = %d, want 0", len(failed))
	}
}

func TestExhaustedRetriesLandInFailedBuffer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32

	m := NewManager(NewMemoryDriver())
	m.SetMaxRetry(1)
	m.Register("doomed", func() Job {
		return &recordJob{calls: &calls, done: make(chan string, 1), fails: 99}
	})
	m.Start(ctx, 1)

	if err := m.Dispatch("doomed", &recordJob{Label: "never"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if len(m.FailedJobs()) == 1 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	failed := m.FailedJobs()
	if len(failed) != 1 {
		t.Fatalf("failed jobs = %d, want 1", len(failed))
	}
	if failed[0].Type != "doomed" {
		t.Fatalf("failed job type = %q, want %q", failed[0].Type, "doomed")
	}
	if failed[0].Attempts != 1 {
		t.Fatalf("failed job attempts = %d, want 1", failed[0].Attempts)
	}
}

// A job waiting out its backoff must not occupy the worker: with a single
// worker, a job dispatched after a failing one completes while the first is
// still delayed.
func TestRetryDoesNotBlockWorker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var flakyCalls, quickCalls atomic.Int32
	done := make(chan string, 2)

	m := NewManager(NewMemoryDriver())
	m.Register("flaky", func() Job {
		return &recordJob{calls: &flakyCalls, done: done, fails: 1}
	})
	m.Register("quick", func() Job {
		return &recordJob{calls: &quickCalls, done: done}
	})
	m.Start(ctx, 1)

	if err := m.Dispatch("flaky", &recordJob{Label: "slow"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if err := m.Dispatch("quick", &recordJob{Label: "fast"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	// The quick job finishes first: the flaky one is parked in the delayed
	// queue for its one-second backoff, not holding the worker.
	waitFor(t, done, "fast")
	waitFor(t, done, "slow")
	if got := flakyCalls.Load(); got != 2 {
		t.Fatalf("flaky job ran %d times, want 2", got)
	}
}

func TestMemoryDriverPushDelayed(t *testing.T) {
	d := NewMemoryDriver()
	if err := d.PushDelayed([]byte("later"), 50*time.Millisecond); err != nil {
		t.Fatalf("push delayed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	payload, err := d.Pop(ctx)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if string(payload) != "later" {
		t.Fatalf("payload = %q, want %q", payload, "later")
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("payload arrived after %v, want >= 50ms", elapsed)
	}
}

func TestUnregisteredTypeIsDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan string, 1)

	m := NewManager(NewMemoryDriver())
	m.Register("record", func() Job {
		return &recordJob{calls: &calls, done: done}
	})
	m.Start(ctx, 1)

	if err := m.Dispatch("unknown", &recordJob{Label: "lost"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if err := m.Dispatch("record", &recordJob{Label: "kept"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	// The unknown-type envelope is logged and skipped; the next job still
	// flows through the same worker.
	waitFor(t, done, "kept")
}
