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

// Package reminder provides the local reminder service of a host: named
// callbacks fired periodically, serialized on the reminder component.
package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/reugn/go-quartz/job"
	quartzlogger "github.com/reugn/go-quartz/logger"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/atomic"

	"github.com/tochemey/nodehost/component"
	gerrors "github.com/tochemey/nodehost/errors"
	"github.com/tochemey/nodehost/internal/workerpool"
	"github.com/tochemey/nodehost/log"
)

// ComponentID is the identifier of the component owned by the local reminder service
const ComponentID component.ID = "reminder/local"

// Callback is run every time a reminder fires
type Callback func(ctx context.Context) error

type reminder struct {
	name     string
	period   time.Duration
	callback Callback
}

// LocalService fires the registered reminders on its own component so that
// reminder callbacks never run concurrently with each other.
type LocalService struct {
	mu        sync.Mutex
	scheduler quartz.Scheduler
	component *component.Component
	logger    log.Logger
	started   *atomic.Bool
	reminders map[string]*reminder
	fired     *atomic.Int64
}

// NewLocalService creates a LocalService running its callbacks on pool
func NewLocalService(pool *workerpool.WorkerPool, logger log.Logger) *LocalService {
	scheduler, _ := quartz.NewStdScheduler(quartz.WithLogger(quartzlogger.NewSimpleLogger(nil, quartzlogger.LevelOff)))
	return &LocalService{
		scheduler: scheduler,
		component: component.New(ComponentID, pool, component.WithLogger(logger)),
		logger:    logger,
		started:   atomic.NewBool(false),
		reminders: make(map[string]*reminder),
		fired:     atomic.NewInt64(0),
	}
}

// Component returns the component the reminder callbacks run on
func (x *LocalService) Component() *component.Component {
	return x.component
}

// Start starts the scheduler and schedules every registered reminder
func (x *LocalService) Start(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.started.Load() {
		return nil
	}

	x.logger.Info("starting local reminder service...")
	x.scheduler.Start(context.WithoutCancel(ctx))
	x.started.Store(x.scheduler.IsStarted())

	for _, r := range x.reminders {
		if err := x.schedule(r); err != nil {
			return err
		}
	}

	x.logger.Infof("local reminder service started with %d reminder(s)", len(x.reminders))
	return nil
}

// Stop clears the scheduled reminders and stops the scheduler.
// It waits for running jobs until ctx is done.
func (x *LocalService) Stop(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.started.Load() {
		return nil
	}

	x.logger.Info("stopping local reminder service...")
	if err := x.scheduler.Clear(); err != nil {
		x.logger.Warnf("failed to clear reminders: %v", err)
	}

	x.scheduler.Stop()
	x.started.Store(false)
	x.scheduler.Wait(ctx)
	x.logger.Info("local reminder service stopped")
	return nil
}

// Register adds a reminder firing callback every period.
// Registering an existing name replaces the previous reminder.
func (x *LocalService) Register(name string, period time.Duration, callback Callback) error {
	if period <= 0 {
		return fmt.Errorf("reminder %s: %w", name, gerrors.ErrInvalidTimeout)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	r := &reminder{name: name, period: period, callback: callback}
	if _, ok := x.reminders[name]; ok && x.started.Load() {
		if err := x.scheduler.DeleteJob(quartz.NewJobKey(name)); err != nil {
			return err
		}
	}

	x.reminders[name] = r
	if x.started.Load() {
		return x.schedule(r)
	}
	return nil
}

// Unregister removes the named reminder
func (x *LocalService) Unregister(name string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.reminders[name]; !ok {
		return nil
	}

	delete(x.reminders, name)
	if x.started.Load() {
		return x.scheduler.DeleteJob(quartz.NewJobKey(name))
	}
	return nil
}

// Reminders returns the names of the registered reminders
func (x *LocalService) Reminders() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	names := make([]string, 0, len(x.reminders))
	for name := range x.reminders {
		names = append(names, name)
	}
	return names
}

// Fired returns how many times reminders fired successfully
func (x *LocalService) Fired() int64 {
	return x.fired.Load()
}

// Started reports whether the scheduler runs
func (x *LocalService) Started() bool {
	return x.started.Load()
}

// schedule must be called with the lock held
func (x *LocalService) schedule(r *reminder) error {
	if !x.started.Load() {
		return gerrors.ErrSchedulerNotStarted
	}

	fire := job.NewFunctionJob[bool](func(ctx context.Context) (bool, error) {
		_, err := x.component.QueueTask(ctx, func(ctx context.Context) error {
			return r.callback(ctx)
		}).Await(ctx)
		if err != nil {
			x.logger.Warnf("reminder %s failed: %v", r.name, err)
			return false, err
		}
		x.fired.Inc()
		return true, nil
	})

	detail := quartz.NewJobDetail(fire, quartz.NewJobKey(r.name))
	return x.scheduler.ScheduleJob(detail, quartz.NewSimpleTrigger(r.period))
}
