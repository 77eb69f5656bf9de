package service

import (
	"context"
	"sync"
	"time"

	"github.com/freshveg/basket-agent/pkg/logger"
)

// dispatcher runs the background confirmation phase of mutations on a
// single worker, strictly in enqueue order. Serializing the dispatches
// for one collection means its writes can never overlap or reorder;
// combined with full-snapshot payloads this makes late completions
// harmless.
type dispatcher struct {
	name    string
	jobs    chan func(context.Context)
	timeout time.Duration
	wg      sync.WaitGroup
}

func newDispatcher(name string, buffer int, timeout time.Duration) *dispatcher {
	d := &dispatcher{
		name:    name,
		jobs:    make(chan func(context.Context), buffer),
		timeout: timeout,
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *dispatcher) run() {
	defer d.wg.Done()
	for job := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		job(ctx)
		cancel()
	}
	logger.Debug("Dispatcher drained", map[string]interface{}{
		"dispatcher": d.name,
	})
}

// Enqueue schedules a dispatch job. Blocks only when the buffer is
// full, which backpressures a runaway mutation burst.
func (d *dispatcher) Enqueue(job func(context.Context)) {
	d.jobs <- job
}

// Flush blocks until every job enqueued before the call has completed.
func (d *dispatcher) Flush() {
	done := make(chan struct{})
	d.jobs <- func(context.Context) {
		close(done)
	}
	<-done
}

// Close drains outstanding jobs and stops the worker.
func (d *dispatcher) Close() {
	close(d.jobs)
	d.wg.Wait()
}
