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

import "time"

const (
	// DefaultInitTimeout bounds the init, start and stop of every sub-resource
	DefaultInitTimeout = time.Minute
	// DefaultStopTimeout bounds a graceful shutdown
	DefaultStopTimeout = time.Minute
	// DefaultOutboundFlushWindow is how long a graceful stop waits for queued outbound messages
	DefaultOutboundFlushWindow = 5 * time.Second
	// DefaultStopPollInterval is how often a collapsed stop request checks for termination
	DefaultStopPollInterval = time.Second
	// DefaultWatchdogInterval is the tick interval of the watchdog built from configuration
	DefaultWatchdogInterval = 5 * time.Second

	// DefaultShutdownRecoveryMaxRetries defines the default number of retries for shutdown hooks
	DefaultShutdownRecoveryMaxRetries = 3
	// DefaultShutdownHookRecoveryRetryInterval defines the default delay between shutdown hook retries
	DefaultShutdownHookRecoveryRetryInterval = time.Second

	// departureNoticeRetries is the number of attempts of the best-effort departure notice
	departureNoticeRetries = 3
	// departureNoticeBackoff is the initial delay between departure notice attempts
	departureNoticeBackoff = 100 * time.Millisecond

	// StatusTopic is the event stream topic on which status transitions are published
	StatusTopic = "host.status"

	lifecycleComponentID = "host/lifecycle"
	fallbackComponentID  = "host/fallback"
)
