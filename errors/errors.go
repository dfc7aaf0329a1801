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

package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNameRequired is returned when a host is created without a name.
	ErrNameRequired = errors.New("host name is required")

	// ErrInvalidHostName is returned when the host name contains invalid characters.
	// A valid name must consist of only alphanumeric characters ([a-zA-Z0-9]), with optional
	// hyphens or underscores that are not leading.
	ErrInvalidHostName = errors.New("invalid host name, must contain only word characters (i.e. [a-zA-Z0-9] plus non-leading '-' or '_')")

	// ErrInvalidHostState is returned when an API is called while the host is in a state
	// that does not permit it. It is fatal to the call, not to the host.
	ErrInvalidHostState = errors.New("invalid host state")

	// ErrHostNotRunning is returned when a stop is requested on a host that never reached Running.
	ErrHostNotRunning = errors.New("host is not running")

	// ErrHostAlreadyStarted is returned when StartAsync is called more than once.
	ErrHostAlreadyStarted = errors.New("host has already been started")

	// ErrRegistrationClosed is returned when a service is registered once the host has
	// consumed its registration list. The registration has no effect.
	ErrRegistrationClosed = errors.New("service registration is closed")

	// ErrDuplicateService is returned when two extension services share the same identifier.
	ErrDuplicateService = errors.New("extension service already registered")

	// ErrInvalidServiceID is returned when an extension service identifier is empty or malformed.
	ErrInvalidServiceID = errors.New("invalid extension service id")

	// ErrStageStartFailed is returned when at least one participant of a lifecycle stage failed to start.
	ErrStageStartFailed = errors.New("lifecycle stage failed to start")

	// ErrTimeout is returned when an operation exceeded its deadline.
	ErrTimeout = errors.New("operation timed out")

	// ErrInvalidTimeout is returned when a timeout value is less than or equal to zero.
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrComponentStopped is returned when a task is queued on a stopped component.
	ErrComponentStopped = errors.New("component is stopped")

	// ErrComponentNotFound is returned when a component identifier is unknown to the catalog.
	ErrComponentNotFound = errors.New("component not found")

	// ErrComponentExists is returned when a component identifier is already registered in the catalog.
	ErrComponentExists = errors.New("component already registered")

	// ErrWorkerPoolNotStarted is returned when a task is submitted to a worker pool that is not running.
	ErrWorkerPoolNotStarted = errors.New("worker pool is not started")

	// ErrShutdownHookFailed is returned when a coordinated shutdown hook failed after its recovery policy.
	ErrShutdownHookFailed = errors.New("shutdown hook failed")

	// ErrSchedulerNotStarted is returned when a reminder is registered on a scheduler that is not running.
	ErrSchedulerNotStarted = errors.New("reminder scheduler has not started")
)

// InvalidStateError reports an operation attempted in a host state that does not allow it.
type InvalidStateError struct {
	// Op is the rejected operation
	Op string
	// State is the host state at the time of the call
	State string
	// Expected is the state the operation requires
	Expected string
}

// enforce compilation error
var _ error = (*InvalidStateError)(nil)

// NewInvalidStateError creates an instance of InvalidStateError
func NewInvalidStateError(op, state, expected string) *InvalidStateError {
	return &InvalidStateError{Op: op, State: state, Expected: expected}
}

// Error implements the standard error interface
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: host must be in the %s state, it is in the %s state", e.Op, e.Expected, e.State)
}

// Is makes errors.Is(err, ErrInvalidHostState) hold
func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidHostState
}

// TimeoutError reports an operation that did not complete within its deadline.
// The operation itself is not cancelled, it keeps running in the background.
type TimeoutError struct {
	Operation string
	Timeout   time.Duration
}

// enforce compilation error
var _ error = (*TimeoutError)(nil)

// NewTimeoutError creates an instance of TimeoutError
func NewTimeoutError(operation string, timeout time.Duration) *TimeoutError {
	return &TimeoutError{Operation: operation, Timeout: timeout}
}

// Error implements the standard error interface
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s failed due to timeout %s", e.Operation, e.Timeout)
}

// Is makes errors.Is(err, ErrTimeout) hold
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// StageError wraps the aggregated failures of one lifecycle stage.
type StageError struct {
	Stage string
	err   error
}

// enforce compilation error
var _ error = (*StageError)(nil)

// NewStageError creates an instance of StageError
func NewStageError(stage string, err error) *StageError {
	return &StageError{Stage: stage, err: err}
}

// Error implements the standard error interface
func (e *StageError) Error() string {
	return fmt.Sprintf("lifecycle start failed in stage %s: %v", e.Stage, e.err)
}

func (e *StageError) Unwrap() error {
	return e.err
}

// Is makes errors.Is(err, ErrStageStartFailed) hold
func (e *StageError) Is(target error) bool {
	return target == ErrStageStartFailed
}

// PanicError defines the panic error
// wrapping the underlying error
type PanicError struct {
	err error
}

// enforce compilation error
var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError
func NewPanicError(err error) *PanicError {
	return &PanicError{err}
}

// Error implements the standard error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}

func (e *PanicError) Unwrap() error {
	return e.err
}

// NewErrShutdownHookFailed wraps a hook failure with ErrShutdownHookFailed.
func NewErrShutdownHookFailed(err error) error {
	return errors.Join(ErrShutdownHookFailed, err)
}

// Recovered converts a recovered panic value into a *PanicError.
func Recovered(r any) *PanicError {
	if err, ok := r.(error); ok {
		var pe *PanicError
		if errors.As(err, &pe) {
			return pe
		}
		return NewPanicError(err)
	}
	return NewPanicError(fmt.Errorf("%#v", r))
}
