package gopool

import (
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/ethereum/go-ethereum/log"
)

const (
	expiryDuration   = 10 * time.Second
	minNumberPerTask = 5
)

// Pool runs background tasks on a bounded set of goroutines.
type Pool struct {
	pool *ants.Pool
}

// New creates a pool of size goroutines; size <= 0 picks one per CPU.
// Submissions never block: a full pool rejects the task.
func New(size int) (*Pool, error) {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p, err := ants.NewPool(size,
		ants.WithExpiryDuration(expiryDuration),
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(v interface{}) {
			log.Error("Background task panicked", "err", v)
		}),
	)
	if err != nil {
		return nil, err
	}
	return &Pool{pool: p}, nil
}

// Submit submits a task to pool. It fails with ants.ErrPoolOverload when
// every worker is busy.
func (p *Pool) Submit(task func()) error {
	return p.pool.Submit(task)
}

// Running returns the number of the currently running goroutines.
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Cap returns the capacity of this pool.
func (p *Pool) Cap() int {
	return p.pool.Cap()
}

// Free returns the available goroutines to work.
func (p *Pool) Free() int {
	return p.pool.Free()
}

// Release closes the pool.
func (p *Pool) Release() {
	p.pool.Release()
}

// Reboot reopens a released pool.
func (p *Pool) Reboot() {
	p.pool.Reboot()
}

// Threads returns how many goroutines should share tasks units of work.
func Threads(tasks int) int {
	threads := tasks / minNumberPerTask
	if threads > runtime.NumCPU() {
		threads = runtime.NumCPU()
	} else if threads == 0 {
		threads = 1
	}
	return threads
}
