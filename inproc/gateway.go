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
	"context"
	"errors"
	"sync"

	goset "github.com/deckarep/golang-set/v2"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/tochemey/nodehost/host"
	"github.com/tochemey/nodehost/log"
)

// ErrGatewayClosed is returned when a client connects to a closed gateway
var ErrGatewayClosed = errors.New("gateway is closed")

// Notifier is called for every connected client when the gateway sends a notice
type Notifier func(ctx context.Context, client string, notice Notice) error

// Notice is a message the gateway sends to its clients
type Notice int

const (
	// StopSending asks a client to stop sending to this host
	StopSending Notice = iota
	// Reconnect asks a client to reconnect to another host
	Reconnect
)

// String implements fmt.Stringer
func (n Notice) String() string {
	switch n {
	case StopSending:
		return "StopSending"
	case Reconnect:
		return "Reconnect"
	default:
		return "Unknown"
	}
}

// Gateway is an in-process client gateway
type Gateway struct {
	mu       sync.Mutex
	logger   log.Logger
	notifier Notifier
	clients  goset.Set[string]
	closed   *atomic.Bool
	notices  *atomic.Int64
}

// enforce compilation error
var _ host.Gateway = (*Gateway)(nil)

// NewGateway creates a Gateway. A nil notifier only records the notices.
func NewGateway(logger log.Logger, notifier Notifier) *Gateway {
	if notifier == nil {
		notifier = func(context.Context, string, Notice) error { return nil }
	}

	return &Gateway{
		logger:   logger,
		notifier: notifier,
		clients:  goset.NewSet[string](),
		closed:   atomic.NewBool(false),
		notices:  atomic.NewInt64(0),
	}
}

// Connect registers a client
func (g *Gateway) Connect(client string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed.Load() {
		return ErrGatewayClosed
	}
	g.clients.Add(client)
	return nil
}

// Disconnect removes a client
func (g *Gateway) Disconnect(client string) {
	g.clients.Remove(client)
}

// Clients returns the connected clients
func (g *Gateway) Clients() []string {
	return g.clients.ToSlice()
}

// SendStopSendMessages implements host.Gateway
func (g *Gateway) SendStopSendMessages(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.broadcast(ctx, StopSending)
}

// Close refuses new clients and asks the connected ones to reconnect elsewhere
func (g *Gateway) Close(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.closed.CompareAndSwap(false, true) {
		return nil
	}

	err := g.broadcast(ctx, Reconnect)
	g.clients.Clear()
	return err
}

// Closed reports whether the gateway refuses clients
func (g *Gateway) Closed() bool {
	return g.closed.Load()
}

// Notices returns the number of notices sent
func (g *Gateway) Notices() int64 {
	return g.notices.Load()
}

// broadcast sends notice to every client. The caller holds g.mu.
func (g *Gateway) broadcast(ctx context.Context, notice Notice) error {
	var errs error
	for _, client := range g.clients.ToSlice() {
		if err := g.notifier(ctx, client, notice); err != nil {
			g.logger.Warnf("failed to send %s to client %s: %v", notice, client, err)
			errs = multierr.Append(errs, err)
			continue
		}
		g.notices.Inc()
	}
	return errs
}
