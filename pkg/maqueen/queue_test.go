package maqueen

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueueDrain(t *testing.T) {
	var q CommandQueue
	a, b := Frame{0x0B, 1, 1}, Frame{0x00, 1, 2, 1, 2}
	q.Enqueue(a)
	q.Enqueue(b)
	a[1] = 9
	require.Equal(t, 2, q.Len())
	require.Equal(t, []Frame{{0x0B, 1, 1}, b}, q.Drain())
	require.Zero(t, q.Len())
	require.Empty(t, q.Drain())

	q.Enqueue(a)
	require.Equal(t, []Frame{a}, q.Drain())
}

func TestQueueConcurrentEnqueue(t *testing.T) {
	var q CommandQueue
	var wg sync.WaitGroup
	var drained []Frame
	done := make(chan struct{})
	go func() {
		defer close(done)
		for len(drained) < 400 {
			drained = append(drained, q.Drain()...)
		}
	}()
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n byte) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Enqueue(Frame{n, byte(j)})
			}
		}(byte(i))
	}
	wg.Wait()
	<-done
	last := map[byte]int{}
	for _, f := range drained {
		prev, ok := last[f[0]]
		if ok {
			require.Equal(t, prev+1, int(f[1]))
		}
		last[f[0]] = int(f[1])
	}
}
