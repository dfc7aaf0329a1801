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
	"fmt"
	"time"

	"github.com/flowchartsman/retry"
	"go.uber.org/multierr"

	gerrors "github.com/tochemey/nodehost/errors"
)

// ShutdownHook is a piece of user logic run when the host stops, before any
// other stop step. Hooks run in registration order.
type ShutdownHook interface {
	// Execute runs the hook. ctx is already cancelled on a forced stop.
	Execute(ctx context.Context, host *Host) error
	// Recovery tells how a failure of the hook is handled.
	// A nil recovery fails the hook chain on the first error.
	Recovery() *ShutdownHookRecovery
}

// RecoveryStrategy tells how the failure of a shutdown hook is handled
type RecoveryStrategy int

const (
	// ShouldFail stops the execution of the remaining hooks
	ShouldFail RecoveryStrategy = iota
	// ShouldRetryAndFail retries the hook and stops the remaining hooks when every attempt failed
	ShouldRetryAndFail
	// ShouldSkip reports the failure and runs the remaining hooks
	ShouldSkip
	// ShouldRetryAndSkip retries the hook and runs the remaining hooks whatever the outcome
	ShouldRetryAndSkip
)

// RecoveryOption configures a ShutdownHookRecovery
type RecoveryOption func(*ShutdownHookRecovery)

// WithShutdownHookRetry sets the number of attempts and the delay between them
func WithShutdownHookRetry(retries int, interval time.Duration) RecoveryOption {
	return func(r *ShutdownHookRecovery) {
		r.retries = retries
		r.interval = interval
	}
}

// WithShutdownHookRecoveryStrategy sets the recovery strategy
func WithShutdownHookRecoveryStrategy(strategy RecoveryStrategy) RecoveryOption {
	return func(r *ShutdownHookRecovery) {
		r.strategy = strategy
	}
}

// ShutdownHookRecovery is the failure policy of a shutdown hook
type ShutdownHookRecovery struct {
	retries  int
	interval time.Duration
	strategy RecoveryStrategy
}

// NewShutdownHookRecovery creates a ShutdownHookRecovery.
// It defaults to ShouldFail with DefaultShutdownRecoveryMaxRetries attempts.
func NewShutdownHookRecovery(opts ...RecoveryOption) *ShutdownHookRecovery {
	recovery := &ShutdownHookRecovery{
		retries:  DefaultShutdownRecoveryMaxRetries,
		interval: DefaultShutdownHookRecoveryRetryInterval,
		strategy: ShouldFail,
	}

	for _, opt := range opts {
		opt(recovery)
	}
	return recovery
}

// Retry returns the number of attempts and the delay between them
func (r *ShutdownHookRecovery) Retry() (int, time.Duration) {
	return r.retries, r.interval
}

// Strategy returns the recovery strategy
func (r *ShutdownHookRecovery) Strategy() RecoveryStrategy {
	return r.strategy
}

// runShutdownHooks runs the hooks in order and applies their recovery policy.
// A panicking hook is treated as a failing one. fatal carries the failure that
// stopped the run. skipped carries the failures the recovery policy let through.
func (h *Host) runShutdownHooks(ctx context.Context) (fatal, skipped error) {
	for index, hook := range h.shutdownHooks {
		if hook == nil {
			continue
		}

		err := h.executeHook(ctx, hook)
		if err == nil {
			continue
		}

		err = fmt.Errorf("shutdown hook #%d: %w", index, err)
		recovery := hook.Recovery()
		if recovery == nil {
			return gerrors.NewErrShutdownHookFailed(err), skipped
		}

		switch recovery.Strategy() {
		case ShouldFail:
			return gerrors.NewErrShutdownHookFailed(err), skipped
		case ShouldRetryAndFail:
			if retryErr := h.executeHookWithRetry(ctx, hook, recovery); retryErr != nil {
				return gerrors.NewErrShutdownHookFailed(retryErr), skipped
			}
		case ShouldSkip:
			skipped = multierr.Append(skipped, gerrors.NewErrShutdownHookFailed(err))
		case ShouldRetryAndSkip:
			if retryErr := h.executeHookWithRetry(ctx, hook, recovery); retryErr != nil {
				skipped = multierr.Append(skipped, gerrors.NewErrShutdownHookFailed(retryErr))
			}
		}
	}
	return nil, skipped
}

func (h *Host) executeHook(ctx context.Context, hook ShutdownHook) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = gerrors.Recovered(r)
		}
	}()
	return hook.Execute(ctx, h)
}

func (h *Host) executeHookWithRetry(ctx context.Context, hook ShutdownHook, recovery *ShutdownHookRecovery) error {
	retries, delay := recovery.Retry()
	retrier := retry.NewRetrier(retries, delay, delay)
	return retrier.RunContext(ctx, func(ctx context.Context) error {
		return h.executeHook(ctx, hook)
	})
}
