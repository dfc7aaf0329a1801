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

package lifecycle

import (
	"context"
	"time"
)

// Callback is a start or stop callback of a participant
type Callback func(ctx context.Context) error

// Participant subscribes its own callbacks to a Subject
type Participant interface {
	Participate(subject *Subject)
}

// ParticipantFunc adapts a function to the Participant interface
type ParticipantFunc func(subject *Subject)

// Participate implements Participant
func (f ParticipantFunc) Participate(subject *Subject) {
	f(subject)
}

// Phase tells whether a stage is being started or stopped
type Phase int

const (
	PhaseStart Phase = iota
	PhaseStop
)

// String implements fmt.Stringer
func (p Phase) String() string {
	if p == PhaseStop {
		return "stop"
	}
	return "start"
}

// Observer is notified every time a stage completed, successfully or not
type Observer interface {
	ObserveStage(stage Stage, phase Phase, elapsed time.Duration, err error)
}

type participant struct {
	name    string
	stage   Stage
	onStart Callback
	onStop  Callback
}
