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
	"time"

	"github.com/tochemey/nodehost/extension"
	"github.com/tochemey/nodehost/internal/workerpool"
	"github.com/tochemey/nodehost/lifecycle"
	"github.com/tochemey/nodehost/log"
	"github.com/tochemey/nodehost/membership"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(host *Host)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Host)

// Apply applies the Host's option
func (f OptionFunc) Apply(host *Host) {
	f(host)
}

// WithLogger sets the host logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(h *Host) {
		h.logger = logger
	})
}

// WithAddress sets the address the host advertises to the cluster
func WithAddress(address string) Option {
	return OptionFunc(func(h *Host) {
		h.address = address
	})
}

// WithInitTimeout bounds the init, start and stop of every sub-resource
func WithInitTimeout(timeout time.Duration) Option {
	return OptionFunc(func(h *Host) {
		h.initTimeout = timeout
	})
}

// WithStopTimeout sets the grace given to Shutdown
func WithStopTimeout(timeout time.Duration) Option {
	return OptionFunc(func(h *Host) {
		h.stopTimeout = timeout
	})
}

// WithOutboundFlushWindow sets how long a graceful stop waits for the outbound queue to drain
func WithOutboundFlushWindow(window time.Duration) Option {
	return OptionFunc(func(h *Host) {
		h.outboundFlushWindow = window
	})
}

// WithStopPollInterval sets how often a collapsed stop request checks whether the host terminated
func WithStopPollInterval(interval time.Duration) Option {
	return OptionFunc(func(h *Host) {
		h.stopPollInterval = interval
	})
}

// WithMessageCenter sets the messaging boundary of the host
func WithMessageCenter(messageCenter MessageCenter) Option {
	return OptionFunc(func(h *Host) {
		h.messageCenter = messageCenter
	})
}

// WithDirectory sets the actor directory
func WithDirectory(directory Directory) Option {
	return OptionFunc(func(h *Host) {
		h.directory = directory
	})
}

// WithCatalog sets the registry of local activations
func WithCatalog(catalog Catalog) Option {
	return OptionFunc(func(h *Host) {
		h.catalog = catalog
	})
}

// WithStatusOracle sets the membership status oracle.
// When the oracle also accepts status reports the host feeds it with its own status.
func WithStatusOracle(oracle membership.Oracle) Option {
	return OptionFunc(func(h *Host) {
		h.oracle = oracle
	})
}

// WithRing sets the consistent ring listening to membership changes
func WithRing(ring membership.Listener) Option {
	return OptionFunc(func(h *Host) {
		h.ring = ring
	})
}

// WithLoadPublisher sets the load publisher
func WithLoadPublisher(publisher LoadPublisher) Option {
	return OptionFunc(func(h *Host) {
		h.loadPublisher = publisher
	})
}

// WithStatistics sets the statistics collector.
// A collector implementing lifecycle.Observer also records the stage durations.
func WithStatistics(statistics Statistics) Option {
	return OptionFunc(func(h *Host) {
		h.statistics = statistics
	})
}

// WithWatchdog sets the platform watchdog
func WithWatchdog(watchdog Watchdog) Option {
	return OptionFunc(func(h *Host) {
		h.watchdog = watchdog
	})
}

// WithReminderService sets the reminder service
func WithReminderService(reminders ReminderService) Option {
	return OptionFunc(func(h *Host) {
		h.reminders = reminders
	})
}

// WithServices registers extension services
func WithServices(services ...extension.Service) Option {
	return OptionFunc(func(h *Host) {
		h.pending = append(h.pending, services...)
	})
}

// WithServiceDiscovery sets a function listing extension services.
// It is evaluated once, when the host initializes its services.
func WithServiceDiscovery(discover func() []extension.Service) Option {
	return OptionFunc(func(h *Host) {
		h.discover = discover
	})
}

// WithParticipants adds lifecycle participants subscribing their own stages
func WithParticipants(participants ...lifecycle.Participant) Option {
	return OptionFunc(func(h *Host) {
		h.participants = append(h.participants, participants...)
	})
}

// WithShutdownHooks sets the shutdown hooks run before any other stop step
func WithShutdownHooks(hooks ...ShutdownHook) Option {
	return OptionFunc(func(h *Host) {
		h.shutdownHooks = append(h.shutdownHooks, hooks...)
	})
}

// WithWorkerPool sets the worker pool backing the host components.
// A pool not running when the host starts is started and stopped by the host.
func WithWorkerPool(pool *workerpool.WorkerPool) Option {
	return OptionFunc(func(h *Host) {
		h.pool = pool
	})
}

// WithReverseServiceStopOrder stops the extension services in reverse registration order
func WithReverseServiceStopOrder(reverse bool) Option {
	return OptionFunc(func(h *Host) {
		h.reverseStopOrder = reverse
	})
}
