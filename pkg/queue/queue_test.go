package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"volpatch/pkg/sample"
	"volpatch/pkg/sampler"
	"volpatch/pkg/volume"
)

func testSample(t *testing.T) *sample.Sample {
	t.Helper()
	label, err := volume.New(1, 16, 16)
	if err != nil {
		t.Fatalf("Failed to create volume: %v", err)
	}
	label.Set(1, 0, 8, 8)

	intensity, err := volume.New(1, 16, 16)
	if err != nil {
		t.Fatalf("Failed to create volume: %v", err)
	}

	s := sample.New()
	s.SetImage("t1", intensity, sample.Intensity)
	s.SetImage("seg", label, sample.Label)
	return s
}

// TestQueueProducesValidPatches verifies that concurrent workers deliver
// patches satisfying the foreground and shape guarantees
func TestQueueProducesValidPatches(t *testing.T) {
	q := New(testSample(t), []int{6, 6}, Params{Workers: 4, Seed: 1, MaxAttempts: 100000})
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for i := 0; i < 32; i++ {
		patch, err := q.Next(ctx)
		if err != nil {
			t.Fatalf("Next failed on patch %d: %v", i, err)
		}
		seg, ok := patch.Image("seg")
		if !ok {
			t.Fatal("Expected seg entry in patch")
		}
		if seg.Data.Sum() <= 0 {
			t.Errorf("Patch %d: expected foreground in label crop, sum %f", i, seg.Data.Sum())
		}
		if seg.Data.Shape[0] != 6 || seg.Data.Shape[1] != 6 {
			t.Errorf("Patch %d: expected shape [6 6], got %v", i, seg.Data.Shape)
		}
	}
}

// TestQueueSurfacesWorkerErrors verifies that a sample without a label
// reaches the consumer as ErrNoLabel
func TestQueueSurfacesWorkerErrors(t *testing.T) {
	s := sample.New()
	intensity, err := volume.New(1, 8, 8)
	if err != nil {
		t.Fatalf("Failed to create volume: %v", err)
	}
	s.SetImage("t1", intensity, sample.Intensity)

	q := New(s, []int{4, 4}, Params{Workers: 2, MaxAttempts: 100})
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := q.Next(ctx); !errors.Is(err, sampler.ErrNoLabel) {
		t.Fatalf("Expected ErrNoLabel from queue, got %v", err)
	}
}

// TestQueueFailsFastAfterWorkersExit verifies that a drained queue whose
// workers all stopped on errors reports ErrClosed instead of blocking
func TestQueueFailsFastAfterWorkersExit(t *testing.T) {
	// All-background label with an attempt cap: the worker fails quickly,
	// and after it exits no more patches can arrive.
	s := sample.New()
	label, err := volume.New(1, 8, 8)
	if err != nil {
		t.Fatalf("Failed to create volume: %v", err)
	}
	s.SetImage("seg", label, sample.Label)

	q := New(s, []int{4, 4}, Params{Workers: 1, MaxAttempts: 10})
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Drain the single error result, then expect fast failure.
	if _, err := q.Next(ctx); !errors.Is(err, sampler.ErrNoForeground) {
		t.Fatalf("Expected ErrNoForeground, got %v", err)
	}
	if _, err := q.Next(ctx); !errors.Is(err, ErrClosed) {
		t.Fatalf("Expected ErrClosed after workers exited, got %v", err)
	}
}

// TestQueueNextHonorsContext verifies cancellation while waiting on an
// empty queue
func TestQueueNextHonorsContext(t *testing.T) {
	// A bare queue with no workers never produces, so Next must return
	// with the context's error.
	q := &Queue{
		results: make(chan result),
		done:    make(chan struct{}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := q.Next(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected context deadline, got %v", err)
	}
}

// TestQueueNextAfterClose verifies that Next drains to ErrClosed once the
// queue is closed
func TestQueueNextAfterClose(t *testing.T) {
	q := New(testSample(t), []int{4, 4}, Params{Workers: 2, Seed: 5, MaxAttempts: 100000})
	q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Buffered patches may still come out; the queue must settle on
	// ErrClosed within the buffer's worth of draws.
	for i := 0; i < 100; i++ {
		_, err := q.Next(ctx)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrClosed) {
			t.Fatalf("Expected ErrClosed from closed queue, got %v", err)
		}
		return
	}
	t.Fatal("Expected ErrClosed after draining the closed queue")
}

// TestQueueCloseIdempotent verifies that Close can be called repeatedly
func TestQueueCloseIdempotent(t *testing.T) {
	q := New(testSample(t), []int{4, 4}, Params{Workers: 2, Seed: 3, MaxAttempts: 100000})
	q.Close()
	q.Close()
}
