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

// Package extension defines the contract of the services plugged into a host.
//
// An extension service is discovered or registered while the host is composed.
// The host gives it a scheduled component of its own, initializes it before the
// host becomes active, starts it once the host is active, and stops it while
// shutting down. Every call is bounded by a timeout.
package extension

import (
	"context"

	"github.com/tochemey/nodehost/component"
	"github.com/tochemey/nodehost/log"
)

// Service is a pluggable service managed by the host lifecycle.
type Service interface {
	// ID returns the unique identifier of the service.
	//
	// The identifier must:
	//   - Be no more than 255 characters long.
	//   - Start with an alphanumeric character [a-zA-Z0-9].
	//   - Contain only alphanumeric characters, hyphens (-), or underscores (_) thereafter.
	ID() string
	// Init is called once on the service component before the host becomes active.
	Init(ctx context.Context, provider Provider) error
	// Start is called on the service component once the host is active.
	Start(ctx context.Context) error
	// Stop is called on the service component while the host shuts down.
	// A cancelled ctx means no grace is given.
	Stop(ctx context.Context) error
}

// Provider exposes the host facilities a service may need during Init
type Provider interface {
	// HostName returns the name of the host
	HostName() string
	// Address returns the host address
	Address() string
	// Logger returns the host logger
	Logger() log.Logger
	// Service returns another registered service
	Service(id string) (Service, bool)
	// Component returns a component registered with the host
	Component(id component.ID) (*component.Component, error)
}

// ComponentID returns the identifier of the component owned by the service with the given id
func ComponentID(id string) component.ID {
	return component.ID("service/" + id)
}
