/*
 * MIT License
 *
 * Copyright (c) 2022-2025  Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package component provides scheduled components: units of work bound to a
// single logical execution context. Every task queued to a component runs
// after the previously queued one completed, in submission order, while many
// components share the goroutines of one worker pool.
package component

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/atomic"

	gerrors "github.com/tochemey/nodehost/errors"
	"github.com/tochemey/nodehost/future"
	"github.com/tochemey/nodehost/internal/queue"
	"github.com/tochemey/nodehost/internal/types"
	"github.com/tochemey/nodehost/internal/workerpool"
	"github.com/tochemey/nodehost/log"
)

const (
	idle int32 = iota
	busy
)

// ID identifies a component within a host
type ID string

// String implements fmt.Stringer
func (id ID) String() string {
	return string(id)
}

// Task is a unit of work run on a component
type Task func(ctx context.Context) error

type request struct {
	ctx     context.Context
	task    Task
	promise *future.Promise[types.Unit]
}

// Component serializes the execution of the tasks queued to it.
// At most one task of a component runs at a time.
type Component struct {
	id         ID
	pool       *workerpool.WorkerPool
	logger     log.Logger
	inbox      *queue.MPSC[*request]
	processing atomic.Int32
	stopped    atomic.Bool
	processed  atomic.Int64
}

// Option configures a Component
type Option func(*Component)

// WithLogger sets the component logger
func WithLogger(logger log.Logger) Option {
	return func(c *Component) {
		c.logger = logger
	}
}

// New creates a Component running its tasks on pool
func New(id ID, pool *workerpool.WorkerPool, opts ...Option) *Component {
	c := &Component{
		id:     id,
		pool:   pool,
		logger: log.DefaultLogger,
		inbox:  queue.NewMPSC[*request](),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.processing.Store(idle)
	return c
}

// ID returns the component identifier
func (c *Component) ID() ID {
	return c.id
}

// QueueTask enqueues task and returns a Future completed with the task outcome.
// The task receives ctx as is, a cancelled ctx does not prevent it from running.
// A panicking task fails the Future with a PanicError.
func (c *Component) QueueTask(ctx context.Context, task Task) future.Future[types.Unit] {
	if c.stopped.Load() {
		return future.Completed(types.Unit{}, fmt.Errorf("component %s: %w", c.id, gerrors.ErrComponentStopped))
	}

	promise := future.NewPromise[types.Unit]()
	c.inbox.Push(&request{ctx: ctx, task: task, promise: promise})
	c.schedule()
	return promise.Future()
}

// QueueAction enqueues a fire-and-forget action. Failures are logged.
func (c *Component) QueueAction(action func()) {
	f := c.QueueTask(context.Background(), func(context.Context) error {
		action()
		return nil
	})

	if f.IsCompleted() {
		if _, err := f.Await(context.Background()); err != nil {
			c.logger.Warnf("action dropped on component %s: %v", c.id, err)
		}
	}
}

// Stop rejects any further task. Tasks already queued still run.
func (c *Component) Stop() {
	c.stopped.Store(true)
}

// Stopped reports whether the component rejects new tasks
func (c *Component) Stopped() bool {
	return c.stopped.Load()
}

// Pending returns the number of queued tasks not yet run
func (c *Component) Pending() int {
	return c.inbox.Len()
}

// Processed returns the number of tasks run so far
func (c *Component) Processed() int64 {
	return c.processed.Load()
}

// schedule wakes up the receive loop when the component is idle
func (c *Component) schedule() {
	if !c.processing.CompareAndSwap(idle, busy) {
		return
	}

	if err := c.pool.SubmitWork(c.receiveLoop); err != nil {
		c.logger.Errorf("component %s cannot be scheduled: %v", c.id, err)
		c.drain(fmt.Errorf("component %s: %w", c.id, err))
	}
}

// receiveLoop runs every queued task then gives the worker back to the pool
func (c *Component) receiveLoop() {
	for {
		for {
			req, ok := c.inbox.Pop()
			if !ok {
				break
			}
			c.run(req)
		}

		if !c.processing.CompareAndSwap(busy, idle) {
			return
		}

		// a producer may have pushed after the last Pop but before the flag flipped
		if !c.inbox.IsEmpty() && c.processing.CompareAndSwap(idle, busy) {
			continue
		}
		return
	}
}

// drain fails every queued task with err. The caller owns the busy flag.
func (c *Component) drain(err error) {
	for {
		for {
			req, ok := c.inbox.Pop()
			if !ok {
				break
			}
			req.promise.Failure(err)
		}

		c.processing.Store(idle)
		if !c.inbox.IsEmpty() && c.processing.CompareAndSwap(idle, busy) {
			continue
		}
		return
	}
}

func (c *Component) run(req *request) {
	defer c.processed.Inc()
	defer func() {
		if r := recover(); r != nil {
			err := gerrors.Recovered(r)
			pc, fn, line, _ := runtime.Caller(2)
			c.logger.Errorf("task panicked on component %s at %s[%s:%d]: %v", c.id, runtime.FuncForPC(pc).Name(), fn, line, err)
			req.promise.Failure(err)
		}
	}()

	if err := req.task(req.ctx); err != nil {
		req.promise.Failure(err)
		return
	}
	req.promise.Success(types.Unit{})
}
