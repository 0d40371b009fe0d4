package concurrent

import (
	"sort"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPool(t *testing.T) {
	const n = 200
	workers := NewWorkerPool[int, int](8, n)
	for i := 0; i < n; i++ {
		workers.AddJob(i)
	}
	workers.Close()

	var calls atomic.Int64
	workers.Start(func(job int) int {
		calls.Add(1)
		return job * job
	})
	workers.Wait()

	got := make([]int, 0, n)
	for r := range workers.CollectResults() {
		got = append(got, r)
	}
	sort.Ints(got)

	assert.Equal(t, int64(n), calls.Load())
	assert.Len(t, got, n)
	for i := 0; i < n; i++ {
		assert.Equal(t, i*i, got[i])
	}
}

func TestWorkerPoolNoJobs(t *testing.T) {
	workers := NewWorkerPool[int, int](0, 0)
	workers.Close()
	workers.Start(func(job int) int { return job })
	workers.Wait()

	_, open := <-workers.CollectResults()
	assert.False(t, open)
}
