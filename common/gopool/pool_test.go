package gopool

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsTasks(t *testing.T) {
	p, err := New(4)
	require.NoError(t, err)
	defer p.Release()
	assert.Equal(t, 4, p.Cap())

	var (
		wg    sync.WaitGroup
		count atomic.Int32
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(func() {
			defer wg.Done()
			count.Add(1)
		}))
	}
	wg.Wait()
	assert.Equal(t, int32(4), count.Load())
}

func TestPoolRejectsWhenFull(t *testing.T) {
	p, err := New(1)
	require.NoError(t, err)
	defer p.Release()

	block := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.Submit(func() {
		close(started)
		<-block
	}))
	<-started
	assert.Error(t, p.Submit(func() {}))
	close(block)
}

func TestThreads(t *testing.T) {
	assert.Equal(t, 1, Threads(0))
	assert.Equal(t, 1, Threads(4))
	assert.Equal(t, runtime.NumCPU(), Threads(1<<20))
}
