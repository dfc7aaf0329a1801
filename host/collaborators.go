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

	"github.com/tochemey/nodehost/component"
	"github.com/tochemey/nodehost/membership"
)

// MessageCenter is the messaging boundary of the host. Every method must be
// idempotent and safe to call after a partial failure.
type MessageCenter interface {
	// BlockApplicationMessages rejects inbound application messages.
	// Internal control traffic keeps flowing.
	BlockApplicationMessages()
	// StopAcceptingClientMessages closes the client gateway and asks connected
	// clients to reconnect elsewhere.
	StopAcceptingClientMessages(ctx context.Context) error
	// Stop stops the messaging subsystem
	Stop(ctx context.Context) error
	// Gateway returns the client gateway, nil when the host has none
	Gateway() Gateway
	// OutboundQueueLen returns the number of messages not yet handed to the transport
	OutboundQueueLen() int
}

// Gateway is the client facing gateway of the host
type Gateway interface {
	// SendStopSendMessages notifies peers and clients to stop sending to this host
	SendStopSendMessages(ctx context.Context) error
}

// Directory is the actor directory of the host
type Directory interface {
	membership.Listener
	Start() error
	// Stop stops the directory. It runs on the directory component.
	Stop() error
	// Component returns the component the directory runs on
	Component() *component.Component
}

// Catalog is the registry of the actors activated on the host
type Catalog interface {
	// DeactivateAllActivations deactivates every local actor.
	// Deactivations still running when ctx is done are abandoned.
	DeactivateAllActivations(ctx context.Context) error
}

// LoadPublisher publishes the host load to the cluster
type LoadPublisher interface {
	membership.Listener
	Start(ctx context.Context) error
	Component() *component.Component
}

// Statistics is the statistics collector of the host
type Statistics interface {
	Start() error
	Stop()
}

// Watchdog watches the process for stalls
type Watchdog interface {
	Start()
	Stop()
}

// ReminderService is the timer service of the host.
// When it also implements ComponentOwner its calls run on its own component,
// otherwise they run on the host fallback component.
type ReminderService interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// ComponentOwner is implemented by collaborators owning a component
type ComponentOwner interface {
	Component() *component.Component
}

// stateTracker is implemented by statistics collectors reporting the host state
type stateTracker interface {
	TrackState(state func() int64)
}

// statusReporter is implemented by status oracles the host feeds with its own status
type statusReporter interface {
	SetStatus(address string, status membership.Status)
}
