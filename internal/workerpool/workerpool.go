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

// Package workerpool provides the shared pool of goroutines on which every
// scheduled component of the host runs its work.
package workerpool

import (
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/atomic"

	gerrors "github.com/tochemey/nodehost/errors"
	"github.com/tochemey/nodehost/internal/ticker"
)

const (
	maxShards = 128
	// idle workers kept per shard regardless of their age
	minIdleWorkers = 8
)

// WorkerPool runs submitted work on reusable goroutines spread across shards.
// Workers are spawned on demand, so a task blocking its worker never starves
// other submissions. Idle workers exit after passivateAfter.
type WorkerPool struct {
	passivateAfter time.Duration
	numShards      int
	shards         []*shard

	mu      sync.RWMutex
	started atomic.Bool
	stopped atomic.Bool
	spawned atomic.Int64

	cleaner *ticker.Ticker
	doneCh  chan struct{}
}

type worker struct {
	workCh   chan func()
	lastUsed atomic.Int64
}

type shard struct {
	pool    *WorkerPool
	mu      sync.Mutex
	idle    []*worker
	stopped bool
}

// New creates a new worker pool with the given options
func New(opts ...Option) *WorkerPool {
	pool := &WorkerPool{
		passivateAfter: time.Second,
		numShards:      1,
	}

	for _, opt := range opts {
		opt.Apply(pool)
	}

	switch {
	case pool.numShards < 1:
		pool.numShards = 1
	case pool.numShards > maxShards:
		pool.numShards = maxShards
	}

	if pool.passivateAfter <= 0 {
		pool.passivateAfter = time.Second
	}

	return pool
}

// Start prepares the shards and starts the idle workers cleanup.
// It is safe to call Start multiple times.
func (pool *WorkerPool) Start() {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	if pool.started.Load() {
		return
	}

	pool.shards = make([]*shard, pool.numShards)
	for i := range pool.shards {
		pool.shards[i] = &shard{pool: pool, idle: make([]*worker, 0, 64)}
	}

	pool.cleaner = ticker.New(pool.passivateAfter)
	pool.doneCh = make(chan struct{})
	pool.cleaner.Start()
	pool.started.Store(true)
	go pool.cleanup()
}

// Stop closes idle workers and rejects further submissions.
// Busy workers exit as soon as their current task returns.
func (pool *WorkerPool) Stop() {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	if !pool.started.Load() || pool.stopped.Swap(true) {
		return
	}

	close(pool.doneCh)
	pool.cleaner.Stop()

	for _, s := range pool.shards {
		s.mu.Lock()
		s.stopped = true
		for i, w := range s.idle {
			close(w.workCh)
			s.idle[i] = nil
		}
		s.idle = s.idle[:0]
		s.mu.Unlock()
	}
}

// SubmitWork hands task to an idle worker or spawns a new one.
// It returns ErrWorkerPoolNotStarted when the pool is not running.
func (pool *WorkerPool) SubmitWork(task func()) error {
	pool.mu.RLock()
	if !pool.started.Load() || pool.stopped.Load() {
		pool.mu.RUnlock()
		return gerrors.ErrWorkerPoolNotStarted
	}
	s := pool.shards[rand.IntN(pool.numShards)]
	pool.mu.RUnlock()

	if !s.dispatch(task) {
		return gerrors.ErrWorkerPoolNotStarted
	}
	return nil
}

// SpawnedWorkers returns the number of live workers
func (pool *WorkerPool) SpawnedWorkers() int {
	return int(pool.spawned.Load())
}

// Running reports whether the pool accepts work
func (pool *WorkerPool) Running() bool {
	return pool.started.Load() && !pool.stopped.Load()
}

func (s *shard) dispatch(task func()) bool {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return false
	}

	if n := len(s.idle); n > 0 {
		w := s.idle[n-1]
		s.idle[n-1] = nil
		s.idle = s.idle[:n-1]
		s.mu.Unlock()
		w.workCh <- task
		return true
	}
	s.mu.Unlock()

	w := &worker{workCh: make(chan func(), 1)}
	w.workCh <- task
	s.pool.spawned.Inc()
	go s.run(w)
	return true
}

func (s *shard) run(w *worker) {
	defer s.pool.spawned.Dec()
	for task := range w.workCh {
		task()
		if !s.release(w) {
			return
		}
	}
}

// release puts w back on the idle stack. It returns false when the shard is stopped.
func (s *shard) release(w *worker) bool {
	w.lastUsed.Store(time.Now().UnixNano())
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.idle = append(s.idle, w)
	return true
}

// cleanup closes the workers that stayed idle longer than passivateAfter.
// The idle stack is ordered by last use, oldest first.
func (pool *WorkerPool) cleanup() {
	for {
		select {
		case <-pool.doneCh:
			return
		case <-pool.cleaner.C:
		}

		cutoff := time.Now().Add(-pool.passivateAfter).UnixNano()
		for _, s := range pool.shards {
			s.mu.Lock()
			if s.stopped || len(s.idle) <= minIdleWorkers {
				s.mu.Unlock()
				continue
			}

			expired := 0
			for expired < len(s.idle)-minIdleWorkers && s.idle[expired].lastUsed.Load() < cutoff {
				expired++
			}

			stale := make([]*worker, expired)
			copy(stale, s.idle[:expired])
			s.idle = append(s.idle[:0], s.idle[expired:]...)
			s.mu.Unlock()

			for _, w := range stale {
				close(w.workCh)
			}
		}
	}
}
