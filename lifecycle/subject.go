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

package lifecycle

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	goset "github.com/deckarep/golang-set/v2"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	gerrors "github.com/tochemey/nodehost/errors"
	"github.com/tochemey/nodehost/log"
)

// Subject is the lifecycle registry and its orchestrator.
//
// Subscribe is expected to be called while the host is composed. It must not
// race with OnStart or OnStop: the registered participants are snapshotted when
// a sequence begins and later subscriptions only affect the next sequence.
type Subject struct {
	mu           sync.Mutex
	name         string
	logger       log.Logger
	participants map[Stage][]*participant
	stages       goset.Set[Stage]
	observers    []Observer

	started        bool
	highestStarted Stage
}

// Option configures a Subject
type Option func(*Subject)

// WithLogger sets the Subject logger
func WithLogger(logger log.Logger) Option {
	return func(s *Subject) {
		s.logger = logger
	}
}

// WithObserver adds an observer notified at the end of every stage
func WithObserver(observer Observer) Option {
	return func(s *Subject) {
		s.observers = append(s.observers, observer)
	}
}

// NewSubject creates an empty lifecycle Subject. name is only used in log entries.
func NewSubject(name string, opts ...Option) *Subject {
	s := &Subject{
		name:         name,
		logger:       log.DefaultLogger,
		participants: make(map[Stage][]*participant),
		stages:       goset.NewThreadUnsafeSet[Stage](),
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers a participant at stage. Either callback may be nil.
// A participant providing only a stop callback is still stopped at its stage.
func (s *Subject) Subscribe(name string, stage Stage, onStart, onStop Callback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages.Add(stage)
	s.participants[stage] = append(s.participants[stage], &participant{
		name:    name,
		stage:   stage,
		onStart: onStart,
		onStop:  onStop,
	})
}

// AddObserver adds an observer notified at the end of every stage
func (s *Subject) AddObserver(observer Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, observer)
	s.mu.Unlock()
}

// Stages returns the subscribed stages in ascending order
func (s *Subject) Stages() []Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	stages := s.stages.ToSlice()
	slices.Sort(stages)
	return stages
}

// HighestStarted returns the highest stage OnStart entered
func (s *Subject) HighestStarted() (Stage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highestStarted, s.started
}

// OnStart runs the start callbacks stage by stage in ascending order.
// Every participant of a stage runs concurrently and all of them complete before
// the next stage begins. The first failing stage ends the sequence with a
// StageError aggregating every failure of that stage. Started stages are not
// rolled back, OnStop is responsible for it.
func (s *Subject) OnStart(ctx context.Context) error {
	stages, participants, observers := s.snapshot()
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return gerrors.NewStageError(stage.String(), fmt.Errorf("lifecycle start cancelled: %w", err))
		}

		s.markStarted(stage)

		started := time.Now()
		err := s.runStage(ctx, stage, participants[stage], PhaseStart)
		elapsed := time.Since(started)
		notify(observers, stage, PhaseStart, elapsed, err)

		if err != nil {
			s.logger.Errorf("lifecycle start failed in stage %s after %s: %v", stage, elapsed, err)
			return gerrors.NewStageError(stage.String(), err)
		}

		s.logger.Debugf("(%s) lifecycle stage %s started in %s", s.name, stage, elapsed)
	}
	return nil
}

// OnStop runs the stop callbacks stage by stage in descending order, starting at
// the highest stage OnStart entered, or at the highest subscribed stage when
// OnStart never ran. Stop is best effort: failures are logged, collected and
// returned once every stage has been stopped.
func (s *Subject) OnStop(ctx context.Context) error {
	stages, participants, observers := s.snapshot()
	highest, started := s.HighestStarted()

	var errs error
	for _, stage := range slices.Backward(stages) {
		if started && stage > highest {
			continue
		}

		begin := time.Now()
		err := s.runStage(ctx, stage, participants[stage], PhaseStop)
		elapsed := time.Since(begin)
		notify(observers, stage, PhaseStop, elapsed, err)

		if err != nil {
			s.logger.Warnf("(%s) lifecycle stop failed in stage %s: %v", s.name, stage, err)
			errs = multierr.Append(errs, err)
			continue
		}

		s.logger.Debugf("(%s) lifecycle stage %s stopped in %s", s.name, stage, elapsed)
	}
	return errs
}

// runStage fans out the callbacks of the given phase and fans their outcome in.
// All failures are aggregated.
func (s *Subject) runStage(ctx context.Context, stage Stage, participants []*participant, phase Phase) error {
	errs := make([]error, len(participants))
	var group errgroup.Group
	for i, p := range participants {
		callback := p.onStart
		if phase == PhaseStop {
			callback = p.onStop
		}

		if callback == nil {
			continue
		}

		group.Go(func() error {
			begin := time.Now()
			err := invoke(ctx, callback)
			if err != nil {
				errs[i] = fmt.Errorf("%s %s: %w", p.name, phase, err)
				return nil
			}

			s.logger.Debugf("(%s) %s %s at stage %s took %d ms", s.name, p.name, phase, stage, time.Since(begin).Milliseconds())
			return nil
		})
	}

	_ = group.Wait()
	return multierr.Combine(errs...)
}

func (s *Subject) snapshot() ([]Stage, map[Stage][]*participant, []Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stages := s.stages.ToSlice()
	slices.Sort(stages)

	participants := make(map[Stage][]*participant, len(s.participants))
	for stage, list := range s.participants {
		participants[stage] = slices.Clone(list)
	}
	return stages, participants, slices.Clone(s.observers)
}

func (s *Subject) markStarted(stage Stage) {
	s.mu.Lock()
	s.started = true
	s.highestStarted = stage
	s.mu.Unlock()
}

// invoke runs callback converting a panic into a PanicError
func invoke(ctx context.Context, callback Callback) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = gerrors.Recovered(r)
		}
	}()
	return callback(ctx)
}

func notify(observers []Observer, stage Stage, phase Phase, elapsed time.Duration, err error) {
	for _, observer := range observers {
		observer.ObserveStage(stage, phase, elapsed, err)
	}
}
