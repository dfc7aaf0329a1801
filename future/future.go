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

package future

import (
	"context"
	"fmt"
	"sync"
	"time"

	gerrors "github.com/tochemey/nodehost/errors"
	"github.com/tochemey/nodehost/internal/types"
)

// Future represents a value which may or may not currently be available,
// but will be available at some point in the future, or an error if that value
// could not be made available.
//
// A Future is completed exactly once. Any number of goroutines may await it
// concurrently; they all observe the same outcome.
type Future[T any] interface {
	// Await blocks until the Future is completed or ctx is done and returns either
	// the result or an error. A Future that is already completed always returns its
	// outcome, even when ctx is already cancelled.
	Await(ctx context.Context) (T, error)
	// Done returns a channel that is closed once the Future is completed.
	Done() <-chan types.Unit
	// IsCompleted reports whether the Future has been completed.
	IsCompleted() bool
}

// Promise is the write side of a Future. The first completion wins; subsequent
// calls to Success or Failure are no-ops and return false.
type Promise[T any] struct {
	future *future[T]
}

// NewPromise creates a Promise with an uncompleted Future.
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{future: newFuture[T]()}
}

// Success completes the underlying Future with a given value.
func (p *Promise[T]) Success(value T) bool {
	return p.future.complete(value, nil)
}

// Failure fails the underlying Future with a given error.
func (p *Promise[T]) Failure(err error) bool {
	var zero T
	return p.future.complete(zero, err)
}

// Complete completes the underlying Future with the given value and error.
func (p *Promise[T]) Complete(value T, err error) bool {
	return p.future.complete(value, err)
}

// Future returns the underlying Future.
func (p *Promise[T]) Future() Future[T] {
	return p.future
}

// New creates a Future that runs the given task in a separate goroutine.
// A panicking task fails the Future with a PanicError.
//
// Example:
//
//	f := future.New(func() (int, error) { return compute(), nil })
//	value, err := f.Await(ctx)
func New[T any](task func() (T, error)) Future[T] {
	promise := NewPromise[T]()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				promise.Failure(gerrors.Recovered(r))
			}
		}()
		promise.Complete(task())
	}()
	return promise.Future()
}

// Completed returns a Future already completed with the given outcome.
func Completed[T any](value T, err error) Future[T] {
	promise := NewPromise[T]()
	promise.Complete(value, err)
	return promise.Future()
}

// AwaitTimeout races f against timeout and ctx, whichever resolves first wins.
// On timeout a TimeoutError naming the operation is returned. The work behind f is
// not cancelled, it is only abandoned.
func AwaitTimeout[T any](ctx context.Context, f Future[T], timeout time.Duration, operation string) (T, error) {
	var zero T
	if f.IsCompleted() {
		return f.Await(ctx)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.Done():
		return f.Await(ctx)
	case <-timer.C:
		return zero, gerrors.NewTimeoutError(operation, timeout)
	case <-ctx.Done():
		return zero, fmt.Errorf("%s failed because the task was cancelled: %w", operation, ctx.Err())
	}
}

// AwaitCancellation waits for f until ctx is done. On cancellation the returned error
// names the operation and wraps the context error.
func AwaitCancellation[T any](ctx context.Context, f Future[T], operation string) (T, error) {
	var zero T
	if f.IsCompleted() {
		return f.Await(ctx)
	}

	select {
	case <-f.Done():
		return f.Await(ctx)
	case <-ctx.Done():
		return zero, fmt.Errorf("%s failed because the task was cancelled: %w", operation, ctx.Err())
	}
}

// future implements the Future interface.
type future[T any] struct {
	once  sync.Once
	done  chan types.Unit
	value T
	err   error
}

// Verify future satisfies the Future interface.
var _ Future[any] = (*future[any])(nil)

func newFuture[T any]() *future[T] {
	return &future[T]{done: make(chan types.Unit)}
}

func (x *future[T]) complete(value T, err error) bool {
	completed := false
	x.once.Do(func() {
		x.value = value
		x.err = err
		close(x.done)
		completed = true
	})
	return completed
}

// Await blocks until the Future is completed or ctx is done.
func (x *future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-x.done:
		return x.value, x.err
	default:
	}

	select {
	case <-x.done:
		return x.value, x.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done returns a channel closed on completion
func (x *future[T]) Done() <-chan types.Unit {
	return x.done
}

// IsCompleted reports whether the Future is completed
func (x *future[T]) IsCompleted() bool {
	select {
	case <-x.done:
		return true
	default:
		return false
	}
}
