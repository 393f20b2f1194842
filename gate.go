package md2img

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// Gate sizing constants.
const (
	// MinConcurrency ensures at least one render can run.
	MinConcurrency = 1

	// MaxConcurrency caps concurrent browsers to limit memory (~200MB each).
	MaxConcurrency = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2

	// DefaultQueueTimeout bounds how long a queued render waits for a slot.
	DefaultQueueTimeout = 30 * time.Second

	// DefaultMaxQueue is the queue depth of a renderer's own gate.
	DefaultMaxQueue = 32
)

// GateOptions configures a Gate.
type GateOptions struct {
	Size         int           // concurrent renders; <= 0 resolves from GOMAXPROCS
	MaxQueue     int           // renders allowed to wait; 0 rejects when full
	QueueTimeout time.Duration // longest wait for a slot; <= 0 uses DefaultQueueTimeout
}

// Gate bounds the number of browser sessions alive at once.
// Safe for concurrent use.
type Gate struct {
	sem          *semaphore.Weighted
	size         int
	maxQueue     int64
	queueTimeout time.Duration

	waiting  atomic.Int64
	inFlight atomic.Int64
}

// NewGate creates a Gate from options.
func NewGate(opts GateOptions) *Gate {
	size := ResolveConcurrency(opts.Size)
	timeout := opts.QueueTimeout
	if timeout <= 0 {
		timeout = DefaultQueueTimeout
	}
	maxQueue := opts.MaxQueue
	if maxQueue < 0 {
		maxQueue = 0
	}
	return &Gate{
		sem:          semaphore.NewWeighted(int64(size)),
		size:         size,
		maxQueue:     int64(maxQueue),
		queueTimeout: timeout,
	}
}

// Acquire reserves a render slot. The returned release must be called
// exactly once; extra calls are ignored.
// Returns ErrOverloaded when no slot is free and the queue is full, or when
// the queue wait exceeds the configured timeout.
func (g *Gate) Acquire(ctx context.Context) (release func(), err error) {
	if g.sem.TryAcquire(1) {
		return g.releaser(), nil
	}

	if g.waiting.Add(1) > g.maxQueue {
		g.waiting.Add(-1)
		return nil, fmt.Errorf("%w: %d renders in flight", ErrOverloaded, g.size)
	}
	defer g.waiting.Add(-1)

	waitCtx, cancel := context.WithTimeout(ctx, g.queueTimeout)
	defer cancel()

	if err := g.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: no slot within %s", ErrOverloaded, g.queueTimeout)
	}
	return g.releaser(), nil
}

func (g *Gate) releaser() func() {
	g.inFlight.Add(1)
	var released atomic.Bool
	return func() {
		if released.CompareAndSwap(false, true) {
			g.inFlight.Add(-1)
			g.sem.Release(1)
		}
	}
}

// Size returns the concurrency ceiling.
func (g *Gate) Size() int {
	return g.size
}

// InFlight returns the number of renders holding a slot.
func (g *Gate) InFlight() int {
	return int(g.inFlight.Load())
}

// Waiting returns the number of renders queued for a slot.
func (g *Gate) Waiting() int {
	return int(g.waiting.Load())
}

// ResolveConcurrency determines the concurrency ceiling.
// Priority: explicit value > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolveConcurrency(n int) int {
	if n > 0 {
		return n
	}

	// GOMAXPROCS is container-aware once automaxprocs has run
	available := runtime.GOMAXPROCS(0)
	n = available / cpuDivisor

	if n < MinConcurrency {
		return MinConcurrency
	}
	if n > MaxConcurrency {
		return MaxConcurrency
	}
	return n
}
