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

package chain

import (
	"context"

	"go.uber.org/multierr"
)

// Chain runs a sequence of steps in insertion order and collects their errors.
// In fail-fast mode the first error short-circuits every following step.
// In run-all mode every step runs and all errors are aggregated.
type Chain struct {
	failFast bool
	ctx      context.Context
	err      error
}

// Option configures a Chain at creation time.
type Option func(*Chain)

// WithFailFast makes the chain skip the remaining steps after the first error.
func WithFailFast() Option {
	return func(c *Chain) { c.failFast = true }
}

// WithRunAll makes the chain run every step and return all errors.
func WithRunAll() Option {
	return func(c *Chain) { c.failFast = false }
}

// WithContext sets the context handed to context runners
func WithContext(ctx context.Context) Option {
	return func(c *Chain) { c.ctx = ctx }
}

// New creates a Chain. The default mode is run-all.
func New(opts ...Option) *Chain {
	c := &Chain{ctx: context.Background()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddRunner adds a step to the chain
func (c *Chain) AddRunner(fn func() error) *Chain {
	return c.AddContextRunner(func(context.Context) error { return fn() })
}

// AddRunnerIf adds a step only when condition holds
func (c *Chain) AddRunnerIf(condition bool, fn func() error) *Chain {
	if condition {
		c.AddRunner(fn)
	}
	return c
}

// AddContextRunner adds a step receiving the chain context
func (c *Chain) AddContextRunner(fn func(ctx context.Context) error) *Chain {
	if c.failFast && c.err != nil {
		return c
	}
	c.err = multierr.Append(c.err, fn(c.ctx))
	return c
}

// AddContextRunnerIf adds a context step only when condition holds
func (c *Chain) AddContextRunnerIf(condition bool, fn func(ctx context.Context) error) *Chain {
	if condition {
		c.AddContextRunner(fn)
	}
	return c
}

// Run returns the outcome of the chain
func (c *Chain) Run() error {
	return c.err
}
