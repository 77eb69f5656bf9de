package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_RunsJobsInOrder(t *testing.T) {
	d := newDispatcher("test", 16, time.Second)
	defer d.Close()

	var mu sync.Mutex
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		d.Enqueue(func(ctx context.Context) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}
	d.Flush()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestDispatcher_FlushWaitsForPendingJobs(t *testing.T) {
	d := newDispatcher("test", 16, time.Second)
	defer d.Close()

	done := false
	d.Enqueue(func(ctx context.Context) {
		time.Sleep(20 * time.Millisecond)
		done = true
	})
	d.Flush()

	assert.True(t, done)
}

func TestDispatcher_CloseDrainsQueue(t *testing.T) {
	d := newDispatcher("test", 16, time.Second)

	var mu sync.Mutex
	ran := 0
	for i := 0; i < 3; i++ {
		d.Enqueue(func(ctx context.Context) {
			mu.Lock()
			ran++
			mu.Unlock()
		})
	}
	d.Close()

	assert.Equal(t, 3, ran)
}
