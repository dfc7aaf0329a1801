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

package component

import (
	"fmt"

	gerrors "github.com/tochemey/nodehost/errors"
	"github.com/tochemey/nodehost/internal/xsync"
)

// Catalog keeps track of the components owned by a host
type Catalog struct {
	components *xsync.Map[ID, *Component]
}

// NewCatalog creates an empty Catalog
func NewCatalog() *Catalog {
	return &Catalog{components: xsync.NewMap[ID, *Component]()}
}

// Register adds c to the catalog.
// It returns ErrComponentExists when another component uses the same ID.
func (x *Catalog) Register(c *Component) error {
	if !x.components.SetIfAbsent(c.ID(), c) {
		return fmt.Errorf("component %s: %w", c.ID(), gerrors.ErrComponentExists)
	}
	return nil
}

// Unregister stops and removes the component with the given ID
func (x *Catalog) Unregister(id ID) {
	if c, ok := x.components.Get(id); ok {
		c.Stop()
		x.components.Delete(id)
	}
}

// Get returns the component with the given ID
func (x *Catalog) Get(id ID) (*Component, error) {
	c, ok := x.components.Get(id)
	if !ok {
		return nil, fmt.Errorf("component %s: %w", id, gerrors.ErrComponentNotFound)
	}
	return c, nil
}

// Len returns the number of registered components
func (x *Catalog) Len() int {
	return x.components.Len()
}

// Components returns a snapshot of the registered components
func (x *Catalog) Components() []*Component {
	return x.components.Values()
}

// StopAll stops and forgets every registered component
func (x *Catalog) StopAll() {
	for _, c := range x.components.Values() {
		c.Stop()
	}
	x.components.Reset()
}
