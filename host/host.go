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

// Package host provides the runtime host of a cluster node.
//
// A Host composes the collaborators of a node (messaging, directory, activation
// catalog, membership, reminders, statistics, watchdog and extension services)
// and drives them through the staged lifecycle defined by the lifecycle package.
// It owns the host state machine:
//
//	Creating -> Created -> Starting -> Running -> ShuttingDown | Stopping -> Terminated
//
// Start and stop sequences run on the lifecycle component of the host so that
// they never interleave. Concurrent stop requests collapse into the first one and
// every caller observes the same termination outcome.
package host

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/tochemey/nodehost/component"
	gerrors "github.com/tochemey/nodehost/errors"
	"github.com/tochemey/nodehost/extension"
	"github.com/tochemey/nodehost/future"
	"github.com/tochemey/nodehost/internal/eventstream"
	"github.com/tochemey/nodehost/internal/ticker"
	"github.com/tochemey/nodehost/internal/types"
	"github.com/tochemey/nodehost/internal/validation"
	"github.com/tochemey/nodehost/internal/workerpool"
	"github.com/tochemey/nodehost/lifecycle"
	"github.com/tochemey/nodehost/log"
	"github.com/tochemey/nodehost/membership"
)

// DefaultAddress is the address advertised by a host created without WithAddress
const DefaultAddress = "127.0.0.1:11111"

// Host is the runtime host of a cluster node
type Host struct {
	name        string
	address     string
	incarnation string
	logger      log.Logger

	initTimeout         time.Duration
	stopTimeout         time.Duration
	outboundFlushWindow time.Duration
	stopPollInterval    time.Duration
	reverseStopOrder    bool

	messageCenter MessageCenter
	directory     Directory
	catalog       Catalog
	oracle        membership.Oracle
	ring          membership.Listener
	loadPublisher LoadPublisher
	statistics    Statistics
	watchdog      Watchdog
	reminders     ReminderService
	participants  []lifecycle.Participant
	shutdownHooks []ShutdownHook

	pool               *workerpool.WorkerPool
	ownsPool           *atomic.Bool
	components         *component.Catalog
	lifecycleComponent *component.Component
	fallbackComponent  *component.Component

	state            *stateHolder
	subject          *lifecycle.Subject
	eventStream      *eventstream.Broker
	terminated       *future.Promise[types.Unit]
	startRequested   *atomic.Bool
	forcedTeardown   *atomic.Bool
	remindersRunning *atomic.Bool

	servicesMu         sync.RWMutex
	pending            []extension.Service
	discover           func() []extension.Service
	services           []*managedService
	registrationClosed bool
}

// enforce compilation error
var _ extension.Provider = (*Host)(nil)

// New creates a Host in the Created state
func New(name string, opts ...Option) (*Host, error) {
	if name == "" {
		return nil, gerrors.ErrNameRequired
	}

	h := &Host{
		name:                name,
		address:             DefaultAddress,
		incarnation:         uuid.NewString(),
		logger:              log.DefaultLogger,
		initTimeout:         DefaultInitTimeout,
		stopTimeout:         DefaultStopTimeout,
		outboundFlushWindow: DefaultOutboundFlushWindow,
		stopPollInterval:    DefaultStopPollInterval,
		ownsPool:            atomic.NewBool(false),
		components:          component.NewCatalog(),
		eventStream:         eventstream.New(),
		terminated:          future.NewPromise[types.Unit](),
		startRequested:      atomic.NewBool(false),
		forcedTeardown:      atomic.NewBool(false),
		remindersRunning:    atomic.NewBool(false),
	}

	for _, opt := range opts {
		opt.Apply(h)
	}

	if err := validation.
		New(validation.FailFast()).
		AddValidator(validation.NewIDValidator(name, gerrors.ErrInvalidHostName)).
		AddValidator(validation.NewTCPAddressValidator(h.address)).
		AddValidator(validation.NewPositiveDurationValidator("init timeout", h.initTimeout, gerrors.ErrInvalidTimeout)).
		AddValidator(validation.NewPositiveDurationValidator("stop timeout", h.stopTimeout, gerrors.ErrInvalidTimeout)).
		AddValidator(validation.NewPositiveDurationValidator("stop poll interval", h.stopPollInterval, gerrors.ErrInvalidTimeout)).
		AddAssertion(h.outboundFlushWindow >= 0, "the outbound flush window must not be negative").
		AddAssertion(h.logger != nil, "the logger is required").
		Validate(); err != nil {
		return nil, err
	}

	if h.pool == nil {
		h.pool = workerpool.New()
	}

	h.lifecycleComponent = component.New(lifecycleComponentID, h.pool, component.WithLogger(h.logger))
	h.fallbackComponent = component.New(fallbackComponentID, h.pool, component.WithLogger(h.logger))
	h.state = newStateHolder(h.onTransition)

	h.subject = lifecycle.NewSubject(name, lifecycle.WithLogger(h.logger))
	if observer, ok := h.statistics.(lifecycle.Observer); ok {
		h.subject.AddObserver(observer)
	}

	if tracker, ok := h.statistics.(stateTracker); ok {
		tracker.TrackState(func() int64 { return int64(h.state.Load()) })
	}

	h.Participate(h.subject)
	for _, collaborator := range h.collaborators() {
		if participant, ok := collaborator.(lifecycle.Participant); ok {
			participant.Participate(h.subject)
		}
	}

	for _, participant := range h.participants {
		if participant != nil {
			participant.Participate(h.subject)
		}
	}

	h.state.tryTransition(Creating, Created)
	h.logger.Infof("host %s created at %s, incarnation %s", h.name, h.address, h.incarnation)
	return h, nil
}

// Name returns the host name
func (h *Host) Name() string {
	return h.name
}

// HostName implements extension.Provider
func (h *Host) HostName() string {
	return h.name
}

// Address returns the address the host advertises
func (h *Host) Address() string {
	return h.address
}

// Incarnation returns the identifier of this run of the host
func (h *Host) Incarnation() string {
	return h.incarnation
}

// Logger returns the host logger
func (h *Host) Logger() log.Logger {
	return h.logger
}

// State returns the current state of the host
func (h *Host) State() State {
	return h.state.Load()
}

// Component returns a component registered with the host
func (h *Host) Component(id component.ID) (*component.Component, error) {
	return h.components.Get(id)
}

// Lifecycle returns the lifecycle subject of the host.
// Participants must subscribe before the host starts.
func (h *Host) Lifecycle() *lifecycle.Subject {
	return h.subject
}

// Terminated returns a Future completed once the host terminated.
// It fails with the aggregated stop failures when the stop did not complete cleanly.
func (h *Host) Terminated() future.Future[types.Unit] {
	return h.terminated.Future()
}

// Events returns a subscriber receiving a *StatusChanged for every state transition
func (h *Host) Events() *eventstream.Subscriber {
	sub := h.eventStream.AddSubscriber()
	h.eventStream.Subscribe(sub, StatusTopic)
	return sub
}

// RemoveEvents stops delivering events to sub
func (h *Host) RemoveEvents(sub *eventstream.Subscriber) {
	h.eventStream.RemoveSubscriber(sub)
}

// StartAsync runs the start sequence of the host and waits for its completion.
// When a stage fails the host is left in the state it reached, Created or
// Starting, and the error is returned. Such a host can be released with Abort.
func (h *Host) StartAsync(ctx context.Context) error {
	if !h.startRequested.CompareAndSwap(false, true) {
		return gerrors.ErrHostAlreadyStarted
	}

	if state := h.state.Load(); state != Created {
		return gerrors.NewInvalidStateError("StartAsync", state.String(), Created.String())
	}

	if !h.pool.Running() {
		h.pool.Start()
		h.ownsPool.Store(true)
	}

	if err := h.components.Register(h.lifecycleComponent); err != nil {
		return err
	}

	h.logger.Infof("starting host %s at %s", h.name, h.address)
	begin := time.Now()
	if _, err := h.lifecycleComponent.QueueTask(ctx, h.subject.OnStart).Await(context.Background()); err != nil {
		h.logger.Errorf("host %s failed to start: %v", h.name, err)
		return err
	}

	h.logger.Infof("host %s started in %s", h.name, time.Since(begin))
	return nil
}

// StopAsync stops the host. A ctx that is not done gives the host a graceful
// stop, bounded by the deadline of ctx. A done ctx forces the teardown.
//
// Concurrent and repeated calls collapse into the first one: they wait for the
// host to terminate and return the outcome of the first stop.
func (h *Host) StopAsync(ctx context.Context) error {
	graceful := ctx.Err() == nil
	decision, state := h.state.beginStop(graceful)
	switch decision {
	case stopInProgress:
		h.logger.Debugf("host %s stop already in progress, state %s", h.name, state)
		return h.awaitTermination()
	case stopInvalid:
		return gerrors.NewInvalidStateError("StopAsync", state.String(), Running.String())
	default:
		return h.stop(ctx, graceful)
	}
}

// Stop stops the host without grace
func (h *Host) Stop() error {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return h.StopAsync(ctx)
}

// Shutdown stops the host gracefully within the stop timeout
func (h *Host) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), h.stopTimeout)
	defer cancel()
	return h.StopAsync(ctx)
}

// Abort releases a host whose start failed. The host moves to Stopping and the
// stages it entered are stopped without grace. A start that failed before the
// host left Created is released as well.
func (h *Host) Abort(ctx context.Context) error {
	if h.startRequested.Load() && h.state.tryTransition(Created, Stopping) {
		h.forcedTeardown.Store(true)
		if _, entered := h.subject.HighestStarted(); !entered {
			h.finalize(false, nil)
			return nil
		}
		return h.stop(ctx, false)
	}

	if !h.state.tryTransition(Starting, Stopping) {
		state := h.state.Load()
		if state.IsStopping() {
			return h.awaitTermination()
		}
		return gerrors.NewInvalidStateError("Abort", state.String(), Starting.String())
	}

	h.forcedTeardown.Store(true)
	return h.stop(ctx, false)
}

// stop runs the stop sequence on the lifecycle component then terminates the host
func (h *Host) stop(ctx context.Context, graceful bool) (err error) {
	if graceful {
		h.logger.Infof("host %s stopping gracefully", h.name)
	} else {
		h.logger.Warnf("host %s stopping non-gracefully", h.name)
	}

	defer func() {
		h.finalize(graceful, err)
	}()

	_, err = h.lifecycleComponent.QueueTask(ctx, h.subject.OnStop).Await(context.Background())
	return err
}

// finalize guarantees the host ends Terminated and completes the termination signal
func (h *Host) finalize(graceful bool, err error) {
	h.state.terminate()

	switch {
	case err != nil:
		h.logger.Errorf("host %s stopped with failures: %v", h.name, err)
	case graceful:
		h.logger.Infof("host %s stopped gracefully", h.name)
	default:
		h.logger.Warnf("host %s stopped non-gracefully", h.name)
	}

	h.components.StopAll()
	h.fallbackComponent.Stop()
	h.lifecycleComponent.Stop()
	_ = h.logger.Flush()

	h.terminated.Complete(types.Unit{}, err)
	if h.ownsPool.Load() {
		h.pool.Stop()
	}
}

// awaitTermination polls the state until the host terminated then returns the
// outcome of the stop that terminated it.
func (h *Host) awaitTermination() error {
	clock := ticker.New(h.stopPollInterval)
	clock.Start()
	defer clock.Stop()

	for h.state.Load() != Terminated {
		h.logger.Debugf("host %s shutdown in progress", h.name)
		<-clock.C
	}

	_, err := h.terminated.Future().Await(context.Background())
	return err
}

// onTransition publishes and reports every state change
func (h *Host) onTransition(from, to State) {
	h.logger.Infof("host %s moved from %s to %s", h.name, from, to)
	h.eventStream.Publish(StatusTopic, &StatusChanged{
		Host:        h.name,
		Incarnation: h.incarnation,
		From:        from,
		To:          to,
		At:          time.Now().UTC(),
	})

	if reporter, ok := h.oracle.(statusReporter); ok {
		if status := toMembershipStatus(to); status != membership.StatusNone {
			reporter.SetStatus(h.address, status)
		}
	}
}

// String implements fmt.Stringer
func (h *Host) String() string {
	return fmt.Sprintf("%s@%s", h.name, h.address)
}

// collaborators returns the configured collaborators. Those implementing
// lifecycle.Participant subscribe their own stages.
func (h *Host) collaborators() []any {
	candidates := []any{
		h.messageCenter,
		h.directory,
		h.catalog,
		h.loadPublisher,
		h.statistics,
		h.watchdog,
		h.reminders,
	}

	collaborators := make([]any, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate != nil {
			collaborators = append(collaborators, candidate)
		}
	}
	return collaborators
}

func toMembershipStatus(state State) membership.Status {
	switch state {
	case Created:
		return membership.StatusCreated
	case Starting:
		return membership.StatusJoining
	case Running:
		return membership.StatusActive
	case ShuttingDown:
		return membership.StatusShuttingDown
	case Stopping:
		return membership.StatusStopping
	case Terminated:
		return membership.StatusDead
	default:
		return membership.StatusNone
	}
}
