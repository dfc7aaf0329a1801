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

// Package eventstream is an in-process topic broker. Publication is
// synchronous so the subscribers of a topic see its messages in order.
package eventstream

import (
	"sync"
	"time"

	goset "github.com/deckarep/golang-set/v2"
)

// Message is a payload published on a topic
type Message struct {
	topic   string
	payload any
	at      time.Time
}

// Topic returns the message topic
func (m *Message) Topic() string {
	return m.topic
}

// Payload returns the message payload
func (m *Message) Payload() any {
	return m.payload
}

// PublishedAt returns the publication time
func (m *Message) PublishedAt() time.Time {
	return m.at
}

// Broker routes the messages published on a topic to its subscribers
type Broker struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber
	topics      map[string]goset.Set[string]
}

// New creates an empty Broker
func New() *Broker {
	return &Broker{
		subscribers: make(map[string]*Subscriber),
		topics:      make(map[string]goset.Set[string]),
	}
}

// AddSubscriber creates a subscriber not yet subscribed to any topic
func (b *Broker) AddSubscriber() *Subscriber {
	sub := newSubscriber()
	b.mu.Lock()
	b.subscribers[sub.ID()] = sub
	b.mu.Unlock()
	return sub
}

// RemoveSubscriber unsubscribes sub from every topic and shuts it down
func (b *Broker) RemoveSubscriber(sub *Subscriber) {
	b.mu.Lock()
	for _, topic := range sub.Topics() {
		b.detach(sub, topic)
	}
	delete(b.subscribers, sub.ID())
	b.mu.Unlock()
	sub.Shutdown()
}

// SubscribersCount returns the number of subscribers of topic
func (b *Broker) SubscribersCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if ids, ok := b.topics[topic]; ok {
		return ids.Cardinality()
	}
	return 0
}

// Subscribe subscribes sub to topic. Inactive subscribers are ignored.
func (b *Broker) Subscribe(sub *Subscriber, topic string) {
	if !sub.Active() {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	ids, ok := b.topics[topic]
	if !ok {
		ids = goset.NewThreadUnsafeSet[string]()
		b.topics[topic] = ids
	}
	ids.Add(sub.ID())
	sub.topics.Add(topic)
}

// Unsubscribe removes sub from topic
func (b *Broker) Unsubscribe(sub *Subscriber, topic string) {
	b.mu.Lock()
	b.detach(sub, topic)
	b.mu.Unlock()
}

// Publish delivers payload to every active subscriber of topic
func (b *Broker) Publish(topic string, payload any) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids, ok := b.topics[topic]
	if !ok || ids.Cardinality() == 0 {
		return
	}

	message := &Message{topic: topic, payload: payload, at: time.Now()}
	ids.Each(func(id string) bool {
		if sub, ok := b.subscribers[id]; ok {
			sub.deliver(message)
		}
		return false
	})
}

// Close shuts down every subscriber and forgets every topic
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subscribers {
		sub.Shutdown()
	}
	clear(b.subscribers)
	clear(b.topics)
}

// detach must be called with the lock held
func (b *Broker) detach(sub *Subscriber, topic string) {
	sub.topics.Remove(topic)
	ids, ok := b.topics[topic]
	if !ok {
		return
	}

	ids.Remove(sub.ID())
	if ids.Cardinality() == 0 {
		delete(b.topics, topic)
	}
}
