// Package queue fans patch extraction out over worker goroutines, feeding a
// buffered channel of ready patches that a training loop can pull from.
// Each worker owns its own sampler and random source; the source sample is
// shared read-only, so no locking is needed around the data itself.
package queue

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"volpatch/pkg/sample"
	"volpatch/pkg/sampler"
)

// ErrClosed is returned by Next once the queue is closed, or once every
// worker has exited on an error, and no buffered patches remain.
var ErrClosed = errors.New("queue: no more patches")

// Params configures a Queue.
type Params struct {
	// Workers is the number of extraction goroutines. Defaults to the
	// number of CPUs.
	Workers int

	// Capacity is the patch channel buffer size. Defaults to twice the
	// worker count.
	Capacity int

	// Seed seeds worker i with Seed+i, keeping runs reproducible per
	// worker while decorrelating the workers from each other.
	Seed int64

	// MaxAttempts caps each extraction, as in sampler.Params. Strongly
	// recommended here: a worker stuck in an unbounded search cannot be
	// interrupted by Close.
	MaxAttempts int

	// ValidateLabels enables the sampler's non-negativity check.
	ValidateLabels bool
}

type result struct {
	patch *sample.Sample
	err   error
}

// Queue produces foreground-containing patches concurrently. Workers stop
// on the first error they hit; the error is delivered through Next.
type Queue struct {
	results chan result
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// New starts the workers extracting patches of the given spatial size from
// src. The caller must Close the queue when finished.
func New(src *sample.Sample, size []int, p Params) *Queue {
	workers := p.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	capacity := p.Capacity
	if capacity < 1 {
		capacity = 2 * workers
	}

	q := &Queue{
		results: make(chan result, capacity),
		done:    make(chan struct{}),
	}

	size = append([]int(nil), size...)
	for i := 0; i < workers; i++ {
		ls := sampler.NewLabelSampler(sampler.Params{
			Generator:      sampler.NewUniform(p.Seed + int64(i)),
			MaxAttempts:    p.MaxAttempts,
			ValidateLabels: p.ValidateLabels,
		})
		q.wg.Add(1)
		go q.work(ls, src, size)
	}

	// Close the patch channel once every worker has exited so that a
	// drained queue fails fast instead of blocking on the caller's context.
	go func() {
		q.wg.Wait()
		close(q.results)
	}()
	return q
}

func (q *Queue) work(ls *sampler.LabelSampler, src *sample.Sample, size []int) {
	defer q.wg.Done()
	for {
		select {
		case <-q.done:
			return
		default:
		}

		patch, err := ls.ExtractPatch(src, size)
		select {
		case q.results <- result{patch: patch, err: err}:
			if err != nil {
				return
			}
		case <-q.done:
			return
		}
	}
}

// Next returns the next extracted patch, blocking until one is ready, the
// context is cancelled, or a worker reports an error. Once the queue is
// closed and its buffer drained, Next returns ErrClosed.
func (q *Queue) Next(ctx context.Context) (*sample.Sample, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r, ok := <-q.results:
		if !ok {
			return nil, ErrClosed
		}
		return r.patch, r.err
	}
}

// Close stops the workers and waits for them to exit. Patches still in the
// buffer remain consumable; after they drain, Next reports ErrClosed.
// Close is idempotent.
func (q *Queue) Close() {
	q.once.Do(func() {
		close(q.done)
	})
	q.wg.Wait()
}
