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

package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flowchartsman/retry"

	"github.com/tochemey/nodehost/component"
	"github.com/tochemey/nodehost/future"
	"github.com/tochemey/nodehost/internal/chain"
	"github.com/tochemey/nodehost/lifecycle"
	"github.com/tochemey/nodehost/membership"
)

// Participate subscribes the host own start and stop steps
func (h *Host) Participate(subject *lifecycle.Subject) {
	subject.Subscribe("host.runtime", lifecycle.StageRuntimeInitialize, h.onRuntimeInitializeStart, h.onRuntimeInitializeStop)
	subject.Subscribe("host.runtime-services", lifecycle.StageRuntimeServices, h.onRuntimeServicesStart, h.onRuntimeServicesStop)
	subject.Subscribe("host.grain-services", lifecycle.StageRuntimeGrainServices, h.onRuntimeGrainServicesStart, nil)
	subject.Subscribe("host.become-active", lifecycle.StageBecomeActive, h.onBecomeActiveStart, h.onBecomeActiveStop)
	subject.Subscribe("host.active", lifecycle.StageActive, h.onActiveStart, h.onActiveStop)
	if len(h.shutdownHooks) > 0 {
		subject.Subscribe("host.shutdown-hooks", lifecycle.StageLast, nil, h.onShutdownHooks)
	}
}

func (h *Host) onRuntimeInitializeStart(context.Context) error {
	return h.state.transitionOrFail("start", Created, Starting)
}

// onRuntimeInitializeStop releases the runtime. It never skips a step.
func (h *Host) onRuntimeInitializeStop(ctx context.Context) error {
	err := chain.New(chain.WithRunAll(), chain.WithContext(ctx)).
		AddRunnerIf(h.watchdog != nil, func() error {
			h.watchdog.Stop()
			return nil
		}).
		AddContextRunner(h.releaseReminders).
		AddContextRunnerIf(h.messageCenter != nil, func(ctx context.Context) error {
			if err := h.messageCenter.Stop(ctx); err != nil {
				return fmt.Errorf("failed to stop the message center: %w", err)
			}
			return nil
		}).
		AddRunnerIf(h.statistics != nil, func() error {
			h.statistics.Stop()
			return nil
		}).
		Run()

	if err != nil {
		h.logger.Errorf("host %s released its runtime with failures: %v", h.name, err)
	}

	h.state.terminate()
	return nil
}

func (h *Host) onRuntimeServicesStart(ctx context.Context) error {
	if h.directory != nil {
		if err := h.timed("start of the directory", h.directory.Start); err != nil {
			return err
		}

		if c := h.directory.Component(); c != nil {
			if err := h.components.Register(c); err != nil {
				return err
			}
		}
	}

	if h.loadPublisher != nil {
		if c := h.loadPublisher.Component(); c != nil {
			if err := h.components.Register(c); err != nil {
				return err
			}
		}
	}

	if owner, ok := h.reminders.(ComponentOwner); ok && owner.Component() != nil {
		if err := h.components.Register(owner.Component()); err != nil {
			return err
		}
	}

	if err := h.components.Register(h.fallbackComponent); err != nil {
		return err
	}

	if h.oracle != nil {
		for _, listener := range h.listeners() {
			h.oracle.Subscribe(listener)
		}
	}
	return nil
}

func (h *Host) onRuntimeServicesStop(ctx context.Context) error {
	if h.oracle != nil {
		for _, listener := range h.listeners() {
			h.oracle.Unsubscribe(listener)
		}
	}

	if h.forcedTeardown.Load() || ctx.Err() != nil {
		return nil
	}

	if h.messageCenter != nil {
		h.messageCenter.BlockApplicationMessages()
	}
	return nil
}

func (h *Host) onRuntimeGrainServicesStart(ctx context.Context) error {
	if err := h.timed("init of the extension services", func() error { return h.initServices(ctx) }); err != nil {
		return err
	}

	if h.statistics != nil {
		if err := h.timed("start of the statistics", h.statistics.Start); err != nil {
			return err
		}
	}

	if h.loadPublisher != nil {
		err := h.timed("start of the load publisher", func() error {
			f := h.componentOf(h.loadPublisher).QueueTask(ctx, h.loadPublisher.Start)
			_, err := future.AwaitTimeout(ctx, f, h.initTimeout, "start of the load publisher")
			return err
		})
		if err != nil {
			return err
		}
	}

	if h.watchdog != nil {
		_ = h.timed("start of the watchdog", func() error {
			h.watchdog.Start()
			return nil
		})
	}
	return nil
}

func (h *Host) onBecomeActiveStart(context.Context) error {
	return h.state.transitionOrFail("start", Starting, Running)
}

// onBecomeActiveStop drains the host when grace is given.
// Any failure of the drain engages the forced teardown of the following stages.
func (h *Host) onBecomeActiveStop(ctx context.Context) error {
	if h.forcedTeardown.Load() {
		return nil
	}

	if ctx.Err() == nil {
		if err := h.drain(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			h.logger.Errorf("host %s failed to drain, forcing teardown: %v", h.name, err)
			h.forcedTeardown.Store(true)
		}
	}

	if h.messageCenter != nil {
		if err := h.messageCenter.StopAcceptingClientMessages(ctx); err != nil {
			h.logger.Errorf("host %s failed to stop accepting client messages: %v", h.name, err)
		}
	}
	return nil
}

// drain stops the directory, deactivates every local activation then waits
// for the outbound queue to flush.
func (h *Host) drain(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("drain panicked: %v", r)
		}
	}()

	if h.directory != nil {
		f := h.componentOf(h.directory).QueueTask(ctx, func(context.Context) error { return h.directory.Stop() })
		if _, err := future.AwaitCancellation(ctx, f, "stop of the directory"); err != nil {
			return fmt.Errorf("failed to stop the directory: %w", err)
		}
	}

	if h.catalog != nil {
		if err := h.catalog.DeactivateAllActivations(ctx); err != nil {
			h.logger.Errorf("host %s failed to deactivate its activations: %v", h.name, err)
		}
	}

	h.awaitOutboundFlush(ctx)
	return nil
}

// awaitOutboundFlush waits until the outbound queue is empty, the flush window
// elapsed or ctx is done, whichever comes first.
func (h *Host) awaitOutboundFlush(ctx context.Context) {
	if h.messageCenter == nil || h.outboundFlushWindow <= 0 {
		return
	}

	deadline := time.NewTimer(h.outboundFlushWindow)
	defer deadline.Stop()
	poll := time.NewTicker(outboundPollInterval(h.outboundFlushWindow))
	defer poll.Stop()

	for h.messageCenter.OutboundQueueLen() > 0 {
		select {
		case <-poll.C:
		case <-deadline.C:
			h.logger.Warnf("host %s outbound queue not flushed after %s, %d messages pending", h.name, h.outboundFlushWindow, h.messageCenter.OutboundQueueLen())
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *Host) onActiveStart(ctx context.Context) error {
	if h.reminders != nil {
		err := h.timed("start of the reminder service", func() error {
			f := h.componentOf(h.reminders).QueueTask(ctx, h.reminders.Start)
			_, err := future.AwaitTimeout(ctx, f, h.initTimeout, "start of the reminder service")
			return err
		})
		if err != nil {
			return err
		}
		h.remindersRunning.Store(true)
	}

	return h.timed("start of the extension services", func() error { return h.startServices(ctx) })
}

// onActiveStop tells the cluster the host is leaving and stops the services.
// It does nothing on a forced teardown.
func (h *Host) onActiveStop(ctx context.Context) error {
	if h.forcedTeardown.Load() || ctx.Err() != nil {
		return nil
	}

	if h.messageCenter != nil {
		if gateway := h.messageCenter.Gateway(); gateway != nil {
			h.sendDepartureNotice(ctx, gateway)
		}
	}

	if h.remindersRunning.CompareAndSwap(true, false) {
		f := h.componentOf(h.reminders).QueueTask(ctx, h.reminders.Stop)
		if _, err := future.AwaitTimeout(ctx, f, h.initTimeout, "stop of the reminder service"); err != nil {
			h.logger.Errorf("host %s failed to stop the reminder service: %v", h.name, err)
		}
	}

	h.stopServices(ctx)
	return nil
}

// releaseReminders stops a reminder service the graceful sequence did not stop.
// The stop is given initTimeout even when ctx is done.
func (h *Host) releaseReminders(ctx context.Context) error {
	if !h.remindersRunning.CompareAndSwap(true, false) {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.initTimeout)
	defer cancel()
	f := h.componentOf(h.reminders).QueueTask(ctx, h.reminders.Stop)
	if _, err := future.AwaitTimeout(ctx, f, h.initTimeout, "release of the reminder service"); err != nil {
		return fmt.Errorf("failed to release the reminder service: %w", err)
	}
	return nil
}

// sendDepartureNotice asks peers and clients to stop sending to this host.
// It is retried and its failure is only logged.
func (h *Host) sendDepartureNotice(ctx context.Context, gateway Gateway) {
	retrier := retry.NewRetrier(departureNoticeRetries, departureNoticeBackoff, h.initTimeout)
	err := retrier.RunContext(ctx, func(ctx context.Context) error {
		f := h.fallbackComponent.QueueTask(ctx, gateway.SendStopSendMessages)
		_, err := future.AwaitCancellation(ctx, f, "departure notice")
		return err
	})
	if err != nil {
		h.logger.Errorf("host %s failed to send its departure notice: %v", h.name, err)
	}
}

// onShutdownHooks runs the shutdown hooks. Only a failure that is not skipped
// engages the forced teardown.
func (h *Host) onShutdownHooks(ctx context.Context) error {
	fatal, skipped := h.runShutdownHooks(ctx)
	if skipped != nil {
		h.logger.Warnf("host %s skipped failing shutdown hooks: %v", h.name, skipped)
	}
	if fatal != nil {
		h.logger.Errorf("host %s shutdown hooks failed, forcing teardown: %v", h.name, fatal)
		h.forcedTeardown.Store(true)
	}
	return nil
}

// listeners returns the collaborators listening to the status oracle
func (h *Host) listeners() []membership.Listener {
	listeners := make([]membership.Listener, 0, 3)
	if h.directory != nil {
		listeners = append(listeners, h.directory)
	}
	if h.ring != nil {
		listeners = append(listeners, h.ring)
	}
	if h.loadPublisher != nil {
		listeners = append(listeners, h.loadPublisher)
	}
	return listeners
}

// componentOf returns the component owned by collaborator, or the fallback
// component when it owns none.
func (h *Host) componentOf(collaborator any) *component.Component {
	if owner, ok := collaborator.(ComponentOwner); ok {
		if c := owner.Component(); c != nil {
			return c
		}
	}
	return h.fallbackComponent
}

// timed runs step and logs how long it took
func (h *Host) timed(step string, fn func() error) error {
	begin := time.Now()
	err := fn()
	elapsed := time.Since(begin)
	if err != nil {
		h.logger.Errorf("%s failed after %d ms: %v", step, elapsed.Milliseconds(), err)
		return err
	}
	h.logger.Infof("%s took %d ms", step, elapsed.Milliseconds())
	return nil
}

func outboundPollInterval(window time.Duration) time.Duration {
	interval := window / 20
	if interval < time.Millisecond {
		return time.Millisecond
	}
	if interval > 100*time.Millisecond {
		return 100 * time.Millisecond
	}
	return interval
}

var _ lifecycle.Participant = (*Host)(nil)
