package node

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/lwproc/lwproc/gen"
)

func TestConcurrentContext(t *testing.T) {
	var wg sync.WaitGroup
	var sum atomic.Int64

	c := Concurrent()
	require.Same(t, c, Concurrent())
	for i := 1; i <= 100; i++ {
		i := i
		wg.Add(1)
		require.True(t, c.Dispatch(func() {
			defer wg.Done()
			sum.Add(int64(i))
		}))
	}
	wg.Wait()
	require.Equal(t, int64(5050), sum.Load())
}

func TestSerialOrder(t *testing.T) {
	s := NewSerial()
	var result []int
	done := make(chan struct{})

	const n = 10000
	for i := 0; i < n; i++ {
		i := i
		require.True(t, s.Dispatch(func() {
			result = append(result, i)
			if len(result) == n {
				close(done)
			}
		}))
	}
	waitFor(t, done)
	for i, v := range result {
		require.Equal(t, i, v)
	}
	require.Equal(t, int64(0), s.Len())
}

func TestSerialNoOverlap(t *testing.T) {
	s := NewSerial()
	var running atomic.Int32
	var wg sync.WaitGroup

	const producers = 8
	wg.Add(producers * 1000)
	for p := 0; p < producers; p++ {
		go func() {
			for i := 0; i < 1000; i++ {
				s.Dispatch(func() {
					defer wg.Done()
					if running.Inc() != 1 {
						t.Error("tasks overlap")
					}
					running.Dec()
				})
			}
		}()
	}
	wg.Wait()
}

func TestSerialClose(t *testing.T) {
	s := NewSerial()
	done := make(chan struct{})
	require.True(t, s.Dispatch(func() { close(done) }))
	s.Close()
	require.False(t, s.Dispatch(func() { t.Error("must not run") }))
	waitFor(t, done)
}

func TestPool(t *testing.T) {
	p, err := NewPool(3)
	require.NoError(t, err)
	require.Equal(t, 3, p.Size())

	var count atomic.Int32
	for i := 0; i < 300; i++ {
		require.True(t, p.Dispatch(func() { count.Inc() }))
	}

	// Close waits for the dispatched tasks
	require.NoError(t, p.Close())
	require.Equal(t, int32(300), count.Load())
	require.False(t, p.Dispatch(func() { t.Error("must not run") }))
	require.NoError(t, p.Close())
}

func TestPoolFullQueue(t *testing.T) {
	p, err := NewPool(1)
	require.NoError(t, err)

	var count atomic.Int32
	total := 2*gen.DefaultPoolQueueSize + 10
	done := make(chan struct{})
	// the only worker dispatches into its own queue until it is full
	require.True(t, p.Dispatch(func() {
		for i := 0; i < total; i++ {
			p.Dispatch(func() { count.Inc() })
		}
		close(done)
	}))
	waitFor(t, done)
	require.Greater(t, p.Overflowed(), uint64(0))

	require.NoError(t, p.Close())
	require.Equal(t, int32(total), count.Load())
}

func TestPoolIncorrectSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := NewPool(size)
		require.True(t, gen.ErrIncorrect.Equal(err), "unexpected error %v", err)
	}
}
