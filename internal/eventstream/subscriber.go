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

package eventstream

import (
	goset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/tochemey/nodehost/internal/queue"
)

// Subscriber buffers the messages published on the topics it subscribed to
type Subscriber struct {
	id     string
	inbox  *queue.MPSC[*Message]
	topics goset.Set[string]
	active *atomic.Bool
}

func newSubscriber() *Subscriber {
	return &Subscriber{
		id:     uuid.NewString(),
		inbox:  queue.NewMPSC[*Message](),
		topics: goset.NewSet[string](),
		active: atomic.NewBool(true),
	}
}

// ID returns the subscriber id
func (x *Subscriber) ID() string {
	return x.id
}

// Active reports whether the subscriber still receives messages
func (x *Subscriber) Active() bool {
	return x.active.Load()
}

// Topics returns the topics the subscriber is subscribed to
func (x *Subscriber) Topics() []string {
	return x.topics.ToSlice()
}

// Shutdown stops the delivery of new messages. Pending ones can still be drained.
func (x *Subscriber) Shutdown() {
	x.active.Store(false)
}

// Iterator drains the pending messages into a closed buffered channel.
// It must be called from a single goroutine.
func (x *Subscriber) Iterator() chan *Message {
	out := make(chan *Message, x.inbox.Len())
	for len(out) < cap(out) {
		message, ok := x.inbox.Pop()
		if !ok {
			break
		}
		out <- message
	}
	close(out)
	return out
}

func (x *Subscriber) deliver(message *Message) {
	if x.active.Load() {
		x.inbox.Push(message)
	}
}
