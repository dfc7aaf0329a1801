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

// Package statistics collects the OpenTelemetry metrics of a host lifecycle.
package statistics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"

	imetric "github.com/tochemey/nodehost/internal/metric"
	"github.com/tochemey/nodehost/lifecycle"
	"github.com/tochemey/nodehost/log"
)

// Manager records stage durations and reports the host uptime and state.
// It observes the lifecycle of the host it is attached to.
type Manager struct {
	mu           sync.Mutex
	logger       log.Logger
	meter        otelmetric.Meter
	instruments  *imetric.HostMetric
	registration otelmetric.Registration
	startedAt    *atomic.Time
	state        func() int64
	hostName     string
}

var _ lifecycle.Observer = (*Manager)(nil)

// Option configures a Manager
type Option func(*Manager)

// WithMeterProvider sets the meter provider. The global provider is used by default.
func WithMeterProvider(provider otelmetric.MeterProvider) Option {
	return func(m *Manager) {
		m.meter = imetric.NewProviderFrom(provider).Meter()
	}
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager and its instruments
func NewManager(hostName string, opts ...Option) (*Manager, error) {
	m := &Manager{
		logger:    log.DefaultLogger,
		meter:     imetric.NewProvider().Meter(),
		startedAt: atomic.NewTime(time.Time{}),
		state:     func() int64 { return 0 },
		hostName:  hostName,
	}

	for _, opt := range opts {
		opt(m)
	}

	instruments, err := imetric.NewHostMetric(m.meter)
	if err != nil {
		return nil, err
	}
	m.instruments = instruments
	return m, nil
}

// TrackState sets the function reporting the host state ordinal.
// It must be called before Start.
func (m *Manager) TrackState(state func() int64) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
}

// Start registers the observable instruments callback
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.registration != nil {
		return nil
	}

	m.startedAt.Store(time.Now())
	state := m.state
	attrs := otelmetric.WithAttributes(attribute.String("host.name", m.hostName))
	registration, err := m.meter.RegisterCallback(func(_ context.Context, observer otelmetric.Observer) error {
		observer.ObserveInt64(m.instruments.Uptime(), int64(time.Since(m.startedAt.Load()).Seconds()), attrs)
		observer.ObserveInt64(m.instruments.State(), state(), attrs)
		return nil
	}, m.instruments.Uptime(), m.instruments.State())
	if err != nil {
		return err
	}

	m.registration = registration
	m.logger.Debugf("statistics collector of host %s started", m.hostName)
	return nil
}

// Stop unregisters the observable instruments callback
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.registration == nil {
		return
	}

	if err := m.registration.Unregister(); err != nil {
		m.logger.Warnf("failed to unregister host metrics: %v", err)
	}
	m.registration = nil
	m.logger.Debugf("statistics collector of host %s stopped", m.hostName)
}

// ObserveStage records the duration of a lifecycle stage
func (m *Manager) ObserveStage(stage lifecycle.Stage, phase lifecycle.Phase, elapsed time.Duration, err error) {
	m.instruments.StageDuration().Record(
		context.Background(),
		float64(elapsed)/float64(time.Millisecond),
		otelmetric.WithAttributes(
			attribute.String("host.name", m.hostName),
			attribute.String("stage", stage.String()),
			attribute.String("phase", phase.String()),
			attribute.Bool("failed", err != nil),
		),
	)
}
