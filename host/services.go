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
	"slices"
	"time"

	goset "github.com/deckarep/golang-set/v2"

	"github.com/tochemey/nodehost/component"
	gerrors "github.com/tochemey/nodehost/errors"
	"github.com/tochemey/nodehost/extension"
	"github.com/tochemey/nodehost/future"
	"github.com/tochemey/nodehost/internal/validation"
)

// managedService is an extension service bound to its own component
type managedService struct {
	service   extension.Service
	component *component.Component
}

// RegisterService adds an extension service to the host.
// Services registered once the host has initialized its services are ignored
// and ErrRegistrationClosed is returned.
func (h *Host) RegisterService(service extension.Service) error {
	h.servicesMu.Lock()
	defer h.servicesMu.Unlock()
	if h.registrationClosed {
		h.logger.Warnf("host %s ignores late registration of service %s", h.name, service.ID())
		return gerrors.ErrRegistrationClosed
	}
	h.pending = append(h.pending, service)
	return nil
}

// Services returns the extension services managed by the host, in registration order
func (h *Host) Services() []extension.Service {
	h.servicesMu.RLock()
	defer h.servicesMu.RUnlock()
	services := make([]extension.Service, 0, len(h.services))
	for _, managed := range h.services {
		services = append(services, managed.service)
	}
	return services
}

// Service returns the extension service with the given id
func (h *Host) Service(id string) (extension.Service, bool) {
	h.servicesMu.RLock()
	defer h.servicesMu.RUnlock()
	for _, managed := range h.services {
		if managed.service.ID() == id {
			return managed.service, true
		}
	}
	return nil, false
}

// closeRegistration consumes the registered and discovered services and binds
// each of them to a component. Registration is closed whatever the outcome.
func (h *Host) closeRegistration() ([]*managedService, error) {
	h.servicesMu.Lock()
	defer h.servicesMu.Unlock()
	h.registrationClosed = true

	candidates := slices.Clone(h.pending)
	h.pending = nil
	if h.discover != nil {
		candidates = append(candidates, h.discover()...)
	}

	ids := goset.NewThreadUnsafeSet[string]()
	managed := make([]*managedService, 0, len(candidates))
	for _, service := range candidates {
		if service == nil {
			continue
		}

		id := service.ID()
		if err := validation.NewIDValidator(id, gerrors.ErrInvalidServiceID).Validate(); err != nil {
			return nil, err
		}

		if !ids.Add(id) {
			return nil, fmt.Errorf("service %s: %w", id, gerrors.ErrDuplicateService)
		}

		c := component.New(extension.ComponentID(id), h.pool, component.WithLogger(h.logger))
		if err := h.components.Register(c); err != nil {
			return nil, err
		}
		managed = append(managed, &managedService{service: service, component: c})
	}

	h.services = managed
	return managed, nil
}

// initServices initializes every service on its component.
// A service failing or exceeding initTimeout fails the start of the host.
func (h *Host) initServices(ctx context.Context) error {
	services, err := h.closeRegistration()
	if err != nil {
		return err
	}

	for _, managed := range services {
		service := managed.service
		err := h.timed(fmt.Sprintf("init of service %s", service.ID()), func() error {
			task := func(ctx context.Context) error { return service.Init(ctx, h) }
			_, err := future.AwaitTimeout(ctx, managed.component.QueueTask(ctx, task), h.initTimeout, fmt.Sprintf("init of service %s", service.ID()))
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// startServices starts every service on its component in registration order.
// A service failing or exceeding initTimeout fails the start of the host.
func (h *Host) startServices(ctx context.Context) error {
	h.servicesMu.RLock()
	services := slices.Clone(h.services)
	h.servicesMu.RUnlock()

	for _, managed := range services {
		service := managed.service
		err := h.timed(fmt.Sprintf("start of service %s", service.ID()), func() error {
			_, err := future.AwaitTimeout(ctx, managed.component.QueueTask(ctx, service.Start), h.initTimeout, fmt.Sprintf("start of service %s", service.ID()))
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// stopServices stops every service on its component. Failures and timeouts are
// logged and the next service is stopped.
func (h *Host) stopServices(ctx context.Context) {
	h.servicesMu.RLock()
	services := slices.Clone(h.services)
	h.servicesMu.RUnlock()

	if h.reverseStopOrder {
		slices.Reverse(services)
	}

	for _, managed := range services {
		service := managed.service
		begin := time.Now()
		operation := fmt.Sprintf("stop of service %s", service.ID())
		if _, err := future.AwaitTimeout(ctx, managed.component.QueueTask(ctx, service.Stop), h.initTimeout, operation); err != nil {
			h.logger.Errorf("%s failed: %v", operation, err)
			continue
		}
		h.logger.Debugf("%s took %d ms", operation, time.Since(begin).Milliseconds())
	}
}
