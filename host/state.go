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
	"sync"

	gerrors "github.com/tochemey/nodehost/errors"
)

// State is the coarse lifecycle state of a host
type State int32

const (
	// Creating is the state of a host being constructed
	Creating State = iota
	// Created is the state of a constructed host not yet started
	Created
	// Starting is the state of a host running its start sequence.
	// A host whose start failed stays in this state.
	Starting
	// Running is the state of a fully started host
	Running
	// ShuttingDown is the state of a host stopping gracefully
	ShuttingDown
	// Stopping is the state of a host stopping without grace
	Stopping
	// Terminated is the final state of a host
	Terminated
)

// String implements fmt.Stringer
func (s State) String() string {
	switch s {
	case Creating:
		return "Creating"
	case Created:
		return "Created"
	case Starting:
		return "Starting"
	case Running:
		return "Running"
	case ShuttingDown:
		return "ShuttingDown"
	case Stopping:
		return "Stopping"
	case Terminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// IsStopping reports whether a stop sequence has begun or completed
func (s State) IsStopping() bool {
	return s == ShuttingDown || s == Stopping || s == Terminated
}

// rank orders the states. ShuttingDown and Stopping are alternatives of the same step.
func (s State) rank() int {
	switch s {
	case Stopping:
		return int(ShuttingDown)
	case Terminated:
		return int(Terminated) - 1
	default:
		return int(s)
	}
}

type stopDecision int

const (
	stopProceed stopDecision = iota
	stopInProgress
	stopInvalid
)

// stateHolder centralizes every state change of a host behind one mutex.
// The mutex is never held while calling out. Transitions are queued under the
// mutex and handed to the hook in the order they happened. The hook must not
// change the state.
type stateHolder struct {
	mu           sync.Mutex
	state        State
	pending      []transition
	publishMu    sync.Mutex
	onTransition func(from, to State)
}

type transition struct {
	from State
	to   State
}

func newStateHolder(onTransition func(from, to State)) *stateHolder {
	return &stateHolder{state: Creating, onTransition: onTransition}
}

// Load returns the current state
func (x *stateHolder) Load() State {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.state
}

// tryTransition moves from to to when the current state is from.
// Transitions never move backward.
func (x *stateHolder) tryTransition(from, to State) bool {
	x.mu.Lock()
	if x.state != from || to.rank() <= from.rank() {
		x.mu.Unlock()
		return false
	}
	x.state = to
	x.pending = append(x.pending, transition{from: from, to: to})
	x.mu.Unlock()

	x.publish()
	return true
}

// publish hands the queued transitions to the hook. A caller returns once its
// own transition has been handed over, whichever caller drained it.
func (x *stateHolder) publish() {
	x.publishMu.Lock()
	defer x.publishMu.Unlock()

	for {
		x.mu.Lock()
		batch := x.pending
		x.pending = nil
		x.mu.Unlock()

		if len(batch) == 0 {
			return
		}

		if x.onTransition == nil {
			continue
		}

		for _, t := range batch {
			x.onTransition(t.from, t.to)
		}
	}
}

// transitionOrFail is tryTransition returning an InvalidStateError naming op
func (x *stateHolder) transitionOrFail(op string, from, to State) error {
	if x.tryTransition(from, to) {
		return nil
	}
	return gerrors.NewInvalidStateError(op, x.Load().String(), from.String())
}

// terminate moves a stopping host to Terminated. It returns false when the host
// is not stopping or is already terminated.
func (x *stateHolder) terminate() bool {
	current := x.Load()
	if current != ShuttingDown && current != Stopping {
		return false
	}
	return x.tryTransition(current, Terminated)
}

// beginStop decides, atomically, what a stop request does.
// A running host moves to ShuttingDown when graceful and to Stopping otherwise.
func (x *stateHolder) beginStop(graceful bool) (stopDecision, State) {
	x.mu.Lock()
	current := x.state
	switch {
	case current.IsStopping():
		x.mu.Unlock()
		return stopInProgress, current
	case current != Running:
		x.mu.Unlock()
		return stopInvalid, current
	}

	next := Stopping
	if graceful {
		next = ShuttingDown
	}
	x.state = next
	x.pending = append(x.pending, transition{from: current, to: next})
	x.mu.Unlock()

	x.publish()
	return stopProceed, next
}
