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

package watchdog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/atomic"
	"go.uber.org/goleak"

	"github.com/tochemey/nodehost/log"
)

type participant struct {
	healthy *atomic.Bool
	checked *atomic.Int32
}

func (p participant) CheckHealth(time.Time) (bool, string) {
	p.checked.Inc()
	return p.healthy.Load(), "queue is stuck"
}

func TestWatchdog(t *testing.T) {
	t.Run("With healthy and unhealthy participants", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		healthy := participant{healthy: atomic.NewBool(true), checked: atomic.NewInt32(0)}
		sick := participant{healthy: atomic.NewBool(false), checked: atomic.NewInt32(0)}

		dog := New(10*time.Millisecond, log.DiscardLogger, healthy)
		dog.AddParticipant(sick)
		dog.Start()
		dog.Start()

		assert.Eventually(t, func() bool { return dog.Checks() >= 3 }, time.Second, 5*time.Millisecond)
		dog.Stop()
		dog.Stop()

		assert.GreaterOrEqual(t, healthy.checked.Load(), int32(3))
		assert.GreaterOrEqual(t, sick.checked.Load(), int32(3))
		assert.EqualValues(t, dog.Checks(), dog.UnhealthyChecks())
	})
	t.Run("With stall detection", func(t *testing.T) {
		dog := New(10*time.Millisecond, log.DiscardLogger)
		dog.lastCheck.Store(time.Now().Add(-time.Second))
		dog.check(time.Now())
		assert.EqualValues(t, 1, dog.Stalls())

		dog.check(time.Now())
		assert.EqualValues(t, 1, dog.Stalls())
	})
	t.Run("With restart", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		dog := New(5*time.Millisecond, log.DiscardLogger)
		dog.Start()
		dog.Stop()
		dog.Start()
		assert.Eventually(t, func() bool { return dog.Checks() >= 1 }, time.Second, 5*time.Millisecond)
		dog.Stop()
	})
}
