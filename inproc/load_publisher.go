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
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/tochemey/nodehost/component"
	"github.com/tochemey/nodehost/host"
	"github.com/tochemey/nodehost/internal/workerpool"
	"github.com/tochemey/nodehost/log"
	"github.com/tochemey/nodehost/membership"
)

// LoadPublisherComponentID is the identifier of the component owned by the LoadPublisher
const LoadPublisherComponentID component.ID = "load/publisher"

// Load is the load snapshot a host publishes to its peers
type Load struct {
	Address     string
	Activations int
	Peers       int
	At          time.Time
}

// Publish sends a load snapshot to the cluster
type Publish func(ctx context.Context, load Load) error

// LoadPublisher publishes the load of the host once started and every time a
// peer joins the cluster. Publications run on its own component.
type LoadPublisher struct {
	mu          sync.Mutex
	address     string
	logger      log.Logger
	component   *component.Component
	activations *Activations
	publish     Publish
	peers       map[string]membership.Status
	started     *atomic.Bool
	published   *atomic.Int64
}

// enforce compilation error
var _ host.LoadPublisher = (*LoadPublisher)(nil)

// NewLoadPublisher creates a LoadPublisher for the host listening on address.
// activations may be nil, a nil publish only counts publications.
func NewLoadPublisher(address string, activations *Activations, publish Publish, pool *workerpool.WorkerPool, logger log.Logger) *LoadPublisher {
	if publish == nil {
		publish = func(context.Context, Load) error { return nil }
	}

	return &LoadPublisher{
		address:     address,
		logger:      logger,
		component:   component.New(LoadPublisherComponentID, pool, component.WithLogger(logger)),
		activations: activations,
		publish:     publish,
		peers:       make(map[string]membership.Status),
		started:     atomic.NewBool(false),
		published:   atomic.NewInt64(0),
	}
}

// Component implements host.LoadPublisher
func (p *LoadPublisher) Component() *component.Component {
	return p.component
}

// Start implements host.LoadPublisher. It publishes the first snapshot.
func (p *LoadPublisher) Start(ctx context.Context) error {
	p.started.Store(true)
	return p.publishLoad(ctx)
}

// Published returns the number of snapshots published
func (p *LoadPublisher) Published() int64 {
	return p.published.Load()
}

// Snapshot returns the current load of the host
func (p *LoadPublisher) Snapshot() Load {
	p.mu.Lock()
	peers := 0
	for _, status := range p.peers {
		if status == membership.StatusActive {
			peers++
		}
	}
	p.mu.Unlock()

	activations := 0
	if p.activations != nil {
		activations = p.activations.Len()
	}

	return Load{
		Address:     p.address,
		Activations: activations,
		Peers:       peers,
		At:          time.Now().UTC(),
	}
}

// OnStatusChange implements membership.Listener
func (p *LoadPublisher) OnStatusChange(address string, status membership.Status) {
	if address == p.address {
		return
	}

	p.mu.Lock()
	if status == membership.StatusDead {
		delete(p.peers, address)
	} else {
		p.peers[address] = status
	}
	p.mu.Unlock()

	if status != membership.StatusActive || !p.started.Load() {
		return
	}

	p.component.QueueAction(func() {
		if err := p.publishLoad(context.Background()); err != nil {
			p.logger.Warnf("failed to publish load after %s joined: %v", address, err)
		}
	})
}

func (p *LoadPublisher) publishLoad(ctx context.Context) error {
	if err := p.publish(ctx, p.Snapshot()); err != nil {
		return err
	}
	p.published.Inc()
	return nil
}
