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

// Package membership defines the status oracle through which the host and its
// collaborators learn about the membership status of the hosts of a cluster.
package membership

import (
	"slices"
	"sync"

	"github.com/tochemey/nodehost/log"
)

// Listener is notified of every status change observed by an Oracle
type Listener interface {
	OnStatusChange(address string, status Status)
}

// Oracle tracks the status of the hosts of a cluster and notifies its subscribers
type Oracle interface {
	// Subscribe adds listener. It returns false when listener is already subscribed.
	// Listeners are compared by identity, pass pointers.
	Subscribe(listener Listener) bool
	// Unsubscribe removes listener. It returns false when listener was not subscribed.
	Unsubscribe(listener Listener) bool
	// Status returns the last known status of address
	Status(address string) Status
}

// LocalOracle is an Oracle fed by the process itself.
// It suits single host deployments and tests.
type LocalOracle struct {
	mu        sync.RWMutex
	logger    log.Logger
	statuses  map[string]Status
	listeners []Listener
}

var _ Oracle = (*LocalOracle)(nil)

// NewLocalOracle creates a LocalOracle
func NewLocalOracle(logger log.Logger) *LocalOracle {
	return &LocalOracle{
		logger:   logger,
		statuses: make(map[string]Status),
	}
}

// Subscribe implements Oracle
func (o *LocalOracle) Subscribe(listener Listener) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if slices.Contains(o.listeners, listener) {
		return false
	}
	o.listeners = append(o.listeners, listener)
	return true
}

// Unsubscribe implements Oracle
func (o *LocalOracle) Unsubscribe(listener Listener) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	index := slices.Index(o.listeners, listener)
	if index < 0 {
		return false
	}
	o.listeners = slices.Delete(o.listeners, index, index+1)
	return true
}

// Status implements Oracle
func (o *LocalOracle) Status(address string) Status {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.statuses[address]
}

// Listeners returns the number of subscribed listeners
func (o *LocalOracle) Listeners() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.listeners)
}

// SetStatus records the status of address and notifies every listener when it changed.
// A listener panic is logged and does not prevent the other listeners from being notified.
func (o *LocalOracle) SetStatus(address string, status Status) {
	o.mu.Lock()
	if o.statuses[address] == status {
		o.mu.Unlock()
		return
	}
	o.statuses[address] = status
	listeners := slices.Clone(o.listeners)
	o.mu.Unlock()

	o.logger.Debugf("host %s is now %s", address, status)
	for _, listener := range listeners {
		o.notify(listener, address, status)
	}
}

func (o *LocalOracle) notify(listener Listener, address string, status Status) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Errorf("status listener %T panicked: %v", listener, r)
		}
	}()
	listener.OnStatusChange(address, status)
}
