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

// Package watchdog periodically checks the health of the host participants and
// detects scheduling stalls of the process.
package watchdog

import (
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/tochemey/nodehost/internal/ticker"
	"github.com/tochemey/nodehost/log"
)

// HealthCheckParticipant reports its health to the watchdog
type HealthCheckParticipant interface {
	// CheckHealth returns false and a reason when the participant is unhealthy.
	// lastCheck is the time of the previous check.
	CheckHealth(lastCheck time.Time) (bool, string)
}

// Watchdog ticks at a fixed interval. A tick arriving more than twice the
// interval after the previous one is reported as a stall.
type Watchdog struct {
	mu           sync.Mutex
	interval     time.Duration
	logger       log.Logger
	participants []HealthCheckParticipant

	ticker    *ticker.Ticker
	stopCh    chan struct{}
	doneCh    chan struct{}
	running   bool
	lastCheck *atomic.Time
	stalls    *atomic.Int64
	unhealthy *atomic.Int64
	checks    *atomic.Int64
}

// New creates a Watchdog
func New(interval time.Duration, logger log.Logger, participants ...HealthCheckParticipant) *Watchdog {
	return &Watchdog{
		interval:     interval,
		logger:       logger,
		participants: participants,
		lastCheck:    atomic.NewTime(time.Time{}),
		stalls:       atomic.NewInt64(0),
		unhealthy:    atomic.NewInt64(0),
		checks:       atomic.NewInt64(0),
	}
}

// AddParticipant adds a participant checked from the next tick on
func (w *Watchdog) AddParticipant(participant HealthCheckParticipant) {
	w.mu.Lock()
	w.participants = append(w.participants, participant)
	w.mu.Unlock()
}

// Start starts the watchdog. Starting a running watchdog is a no-op.
func (w *Watchdog) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}

	w.logger.Debugf("starting watchdog with interval %s", w.interval)
	w.ticker = ticker.New(w.interval)
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.lastCheck.Store(time.Now())
	w.running = true
	w.ticker.Start()
	go w.loop(w.ticker, w.stopCh, w.doneCh)
}

// Stop stops the watchdog and waits for the current check to complete
func (w *Watchdog) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	doneCh := w.doneCh
	t := w.ticker
	w.mu.Unlock()

	<-doneCh
	t.Stop()
	w.logger.Debug("watchdog stopped")
}

// Stalls returns the number of detected stalls
func (w *Watchdog) Stalls() int64 {
	return w.stalls.Load()
}

// UnhealthyChecks returns the number of failed participant checks
func (w *Watchdog) UnhealthyChecks() int64 {
	return w.unhealthy.Load()
}

// Checks returns the number of completed ticks
func (w *Watchdog) Checks() int64 {
	return w.checks.Load()
}

func (w *Watchdog) loop(t *ticker.Ticker, stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	for {
		select {
		case <-stopCh:
			return
		case now := <-t.C:
			w.check(now)
		}
	}
}

func (w *Watchdog) check(now time.Time) {
	last := w.lastCheck.Load()
	w.lastCheck.Store(now)
	if gap := now.Sub(last); gap > 2*w.interval {
		w.stalls.Inc()
		w.logger.Warnf("watchdog tick came %s after the previous one, expected %s: the process may be stalled", gap, w.interval)
	}

	w.mu.Lock()
	participants := append([]HealthCheckParticipant(nil), w.participants...)
	w.mu.Unlock()

	for _, participant := range participants {
		if healthy, reason := participant.CheckHealth(last); !healthy {
			w.unhealthy.Inc()
			w.logger.Warnf("health check of %T failed: %s", participant, reason)
		}
	}
	w.checks.Inc()
}
