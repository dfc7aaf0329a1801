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

// Package inproc provides in-process implementations of the host
// collaborators. They back the host binary and the host tests, and serve as
// reference implementations for networked ones.
package inproc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/tochemey/nodehost/host"
	"github.com/tochemey/nodehost/internal/queue"
	"github.com/tochemey/nodehost/internal/ticker"
	"github.com/tochemey/nodehost/lifecycle"
	"github.com/tochemey/nodehost/log"
	"github.com/tochemey/nodehost/watchdog"
)

var (
	// ErrApplicationMessagesBlocked is returned when an application message reaches a host that no longer accepts them
	ErrApplicationMessagesBlocked = errors.New("application messages are blocked")
	// ErrMessageCenterStopped is returned when a message is sent through a stopped message center
	ErrMessageCenterStopped = errors.New("message center is stopped")
)

// DefaultDrainInterval is how often the outbound queue is handed to the transport
const DefaultDrainInterval = 10 * time.Millisecond

// Kind tells application messages from system messages
type Kind int

const (
	// Application messages are blocked once the host starts shutting down
	Application Kind = iota
	// System messages keep flowing until the message center stops
	System
)

// Message is an envelope routed by the MessageCenter
type Message struct {
	Kind    Kind
	Target  string
	Payload any
}

// Transport hands outbound messages to the network
type Transport func(ctx context.Context, message *Message) error

// Handler receives the inbound messages accepted by the MessageCenter
type Handler func(message *Message)

// MessageCenter is an in-process host.MessageCenter.
// Outbound messages are queued and handed to the transport by a drain loop
// started at the RuntimeInitialize stage.
type MessageCenter struct {
	logger        log.Logger
	transport     Transport
	handler       Handler
	drainInterval time.Duration
	gateway       *Gateway

	outbound  *queue.MPSC[*Message]
	blocked   *atomic.Bool
	stopped   *atomic.Bool
	delivered *atomic.Int64
	dropped   *atomic.Int64
	lastDrain *atomic.Time

	mu      sync.Mutex
	stopSig chan struct{}
	doneSig chan struct{}
}

// enforce compilation error
var (
	_ host.MessageCenter              = (*MessageCenter)(nil)
	_ lifecycle.Participant           = (*MessageCenter)(nil)
	_ watchdog.HealthCheckParticipant = (*MessageCenter)(nil)
)

// MessageCenterOption configures a MessageCenter
type MessageCenterOption func(*MessageCenter)

// WithTransport sets the transport of outbound messages
func WithTransport(transport Transport) MessageCenterOption {
	return func(m *MessageCenter) {
		m.transport = transport
	}
}

// WithHandler sets the handler of inbound messages
func WithHandler(handler Handler) MessageCenterOption {
	return func(m *MessageCenter) {
		m.handler = handler
	}
}

// WithDrainInterval sets how often the outbound queue is drained
func WithDrainInterval(interval time.Duration) MessageCenterOption {
	return func(m *MessageCenter) {
		m.drainInterval = interval
	}
}

// WithGateway sets the client gateway
func WithGateway(gateway *Gateway) MessageCenterOption {
	return func(m *MessageCenter) {
		m.gateway = gateway
	}
}

// NewMessageCenter creates a MessageCenter
func NewMessageCenter(logger log.Logger, opts ...MessageCenterOption) *MessageCenter {
	m := &MessageCenter{
		logger:        logger,
		transport:     func(context.Context, *Message) error { return nil },
		handler:       func(*Message) {},
		drainInterval: DefaultDrainInterval,
		outbound:      queue.NewMPSC[*Message](),
		blocked:       atomic.NewBool(false),
		stopped:       atomic.NewBool(false),
		delivered:     atomic.NewInt64(0),
		dropped:       atomic.NewInt64(0),
		lastDrain:     atomic.NewTime(time.Time{}),
	}

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Participate starts the drain loop when the runtime initializes
func (m *MessageCenter) Participate(subject *lifecycle.Subject) {
	subject.Subscribe("inproc.message-center", lifecycle.StageRuntimeInitialize, func(context.Context) error {
		m.Start()
		return nil
	}, nil)
}

// Start starts the drain loop. It is a no-op when already started.
func (m *MessageCenter) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopSig != nil || m.stopped.Load() {
		return
	}

	m.stopSig = make(chan struct{})
	m.doneSig = make(chan struct{})
	clock := ticker.New(m.drainInterval)
	clock.Start()
	go m.drainLoop(clock, m.stopSig, m.doneSig)
}

// Send queues an outbound message
func (m *MessageCenter) Send(message *Message) error {
	if m.stopped.Load() {
		return ErrMessageCenterStopped
	}
	m.outbound.Push(message)
	return nil
}

// Receive delivers an inbound message to the handler.
// Application messages are rejected once they are blocked.
func (m *MessageCenter) Receive(message *Message) error {
	if m.stopped.Load() {
		return ErrMessageCenterStopped
	}

	if message.Kind == Application && m.blocked.Load() {
		return ErrApplicationMessagesBlocked
	}

	m.handler(message)
	return nil
}

// BlockApplicationMessages implements host.MessageCenter
func (m *MessageCenter) BlockApplicationMessages() {
	if m.blocked.CompareAndSwap(false, true) {
		m.logger.Info("application messages are now blocked")
	}
}

// ApplicationMessagesBlocked reports whether application messages are rejected
func (m *MessageCenter) ApplicationMessagesBlocked() bool {
	return m.blocked.Load()
}

// StopAcceptingClientMessages implements host.MessageCenter
func (m *MessageCenter) StopAcceptingClientMessages(ctx context.Context) error {
	if m.gateway == nil {
		return nil
	}
	return m.gateway.Close(ctx)
}

// Gateway implements host.MessageCenter
func (m *MessageCenter) Gateway() host.Gateway {
	if m.gateway == nil {
		return nil
	}
	return m.gateway
}

// OutboundQueueLen implements host.MessageCenter
func (m *MessageCenter) OutboundQueueLen() int {
	return m.outbound.Len()
}

// Delivered returns the number of messages handed to the transport
func (m *MessageCenter) Delivered() int64 {
	return m.delivered.Load()
}

// Dropped returns the number of messages the transport rejected or that were
// still queued when the message center stopped
func (m *MessageCenter) Dropped() int64 {
	return m.dropped.Load()
}

// Stop implements host.MessageCenter. Messages still queued are dropped.
func (m *MessageCenter) Stop(context.Context) error {
	if !m.stopped.CompareAndSwap(false, true) {
		return nil
	}

	m.mu.Lock()
	stopSig, doneSig := m.stopSig, m.doneSig
	m.mu.Unlock()

	if stopSig != nil {
		close(stopSig)
		<-doneSig
	}

	var pending int64
	for {
		if _, ok := m.outbound.Pop(); !ok {
			break
		}
		pending++
	}

	if pending > 0 {
		m.dropped.Add(pending)
		m.logger.Warnf("message center stopped with %d outbound messages dropped", pending)
	}
	return nil
}

// CheckHealth reports the message center unhealthy when outbound messages are
// pending and the drain loop did not run since lastCheck
func (m *MessageCenter) CheckHealth(lastCheck time.Time) (bool, string) {
	if m.stopped.Load() {
		return true, ""
	}

	if pending := m.OutboundQueueLen(); pending > 0 && m.lastDrain.Load().Before(lastCheck) {
		return false, fmt.Sprintf("outbound queue stalled with %d messages", pending)
	}
	return true, ""
}

func (m *MessageCenter) drainLoop(clock *ticker.Ticker, stopSig, doneSig chan struct{}) {
	defer close(doneSig)
	defer clock.Stop()
	for {
		select {
		case <-clock.C:
			m.drain()
		case <-stopSig:
			return
		}
	}
}

func (m *MessageCenter) drain() {
	m.lastDrain.Store(time.Now())
	for {
		message, ok := m.outbound.Pop()
		if !ok {
			return
		}

		if err := m.transport(context.Background(), message); err != nil {
			m.dropped.Inc()
			m.logger.Warnf("failed to deliver message to %s: %v", message.Target, fmt.Errorf("transport: %w", err))
			continue
		}
		m.delivered.Inc()
	}
}
