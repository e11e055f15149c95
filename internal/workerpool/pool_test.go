package workerpool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolSubmitReturnsExactlyOneResult(t *testing.T) {
	p := New(4, 8, func(n int) int { return n * 2 })
	defer p.Close()

	var wg sync.WaitGroup
	results := make([]int, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = p.Submit(i)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		require.Equal(t, i*2, got)
	}
}

func TestPoolQueueDepthNeverNegative(t *testing.T) {
	p := New(1, 4, func(n int) int { return n })
	defer p.Close()

	require.GreaterOrEqual(t, p.QueueDepth(), 0)
	p.Submit(1)
	require.GreaterOrEqual(t, p.QueueDepth(), 0)
}
