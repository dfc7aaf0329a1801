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

package inproc

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tochemey/nodehost/component"
	"github.com/tochemey/nodehost/host"
	"github.com/tochemey/nodehost/internal/workerpool"
	"github.com/tochemey/nodehost/log"
	"github.com/tochemey/nodehost/membership"
)

// DirectoryComponentID is the identifier of the component owned by the Directory
const DirectoryComponentID component.ID = "directory/local"

var (
	// ErrDirectoryNotRunning is returned when the directory is used before it started or after it stopped
	ErrDirectoryNotRunning = errors.New("directory is not running")
	// ErrActorNotFound is returned when the directory has no entry for an actor
	ErrActorNotFound = errors.New("actor not found")
)

// Directory is an in-process actor directory mapping actors to the address of
// the host they are activated on. Entries of hosts leaving the cluster are
// dropped when the status oracle reports it.
type Directory struct {
	mu        sync.RWMutex
	logger    log.Logger
	component *component.Component
	entries   map[string]string
	running   bool
}

// enforce compilation error
var _ host.Directory = (*Directory)(nil)

// NewDirectory creates a Directory owning a component scheduled on pool
func NewDirectory(pool *workerpool.WorkerPool, logger log.Logger) *Directory {
	return &Directory{
		logger:    logger,
		component: component.New(DirectoryComponentID, pool, component.WithLogger(logger)),
		entries:   make(map[string]string),
	}
}

// Component implements host.Directory
func (d *Directory) Component() *component.Component {
	return d.component
}

// Start implements host.Directory
func (d *Directory) Start() error {
	d.mu.Lock()
	d.running = true
	d.mu.Unlock()
	d.logger.Info("directory started")
	return nil
}

// Stop implements host.Directory. Every entry is dropped.
func (d *Directory) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return nil
	}

	d.running = false
	count := len(d.entries)
	clear(d.entries)
	d.logger.Infof("directory stopped, %d entries dropped", count)
	return nil
}

// Running reports whether the directory accepts registrations
func (d *Directory) Running() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

// Register records that actor is activated on address
func (d *Directory) Register(actor, address string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return ErrDirectoryNotRunning
	}
	d.entries[actor] = address
	return nil
}

// Unregister removes the entry of actor
func (d *Directory) Unregister(actor string) {
	d.mu.Lock()
	delete(d.entries, actor)
	d.mu.Unlock()
}

// Lookup returns the address actor is activated on
func (d *Directory) Lookup(actor string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.running {
		return "", ErrDirectoryNotRunning
	}

	address, ok := d.entries[actor]
	if !ok {
		return "", fmt.Errorf("%s: %w", actor, ErrActorNotFound)
	}
	return address, nil
}

// Len returns the number of entries
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// OnStatusChange implements membership.Listener.
// Entries pointing at a terminating host are dropped on the directory component.
func (d *Directory) OnStatusChange(address string, status membership.Status) {
	if !status.IsTerminating() {
		return
	}

	d.component.QueueAction(func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		removed := 0
		for actor, entry := range d.entries {
			if entry == address {
				delete(d.entries, actor)
				removed++
			}
		}

		if removed > 0 {
			d.logger.Infof("directory dropped %d entries of host %s (%s)", removed, address, status)
		}
	})
}
