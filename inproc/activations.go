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
	"fmt"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	gerrors "github.com/tochemey/nodehost/errors"
	"github.com/tochemey/nodehost/future"
	"github.com/tochemey/nodehost/host"
	"github.com/tochemey/nodehost/internal/types"
	"github.com/tochemey/nodehost/internal/xsync"
	"github.com/tochemey/nodehost/log"
)

// Deactivator releases an activation
type Deactivator func(ctx context.Context) error

// Activations is an in-process registry of the actors activated on a host.
// It implements host.Catalog.
type Activations struct {
	logger      log.Logger
	activations *xsync.Map[string, Deactivator]
}

// enforce compilation error
var _ host.Catalog = (*Activations)(nil)

// NewActivations creates an empty Activations registry
func NewActivations(logger log.Logger) *Activations {
	return &Activations{
		logger:      logger,
		activations: xsync.NewMap[string, Deactivator](),
	}
}

// Activate records an activation. deactivate is called when the host drains.
func (a *Activations) Activate(id string, deactivate Deactivator) bool {
	return a.activations.SetIfAbsent(id, deactivate)
}

// Deactivate releases a single activation
func (a *Activations) Deactivate(ctx context.Context, id string) error {
	deactivate, ok := a.activations.Get(id)
	if !ok {
		return nil
	}
	a.activations.Delete(id)
	return invokeDeactivator(ctx, deactivate)
}

// Len returns the number of activations
func (a *Activations) Len() int {
	return a.activations.Len()
}

// DeactivateAllActivations implements host.Catalog.
// Activations are released concurrently. Those still running when ctx is done
// are abandoned and reported as cancelled.
func (a *Activations) DeactivateAllActivations(ctx context.Context) error {
	ids := a.activations.Keys()
	if len(ids) == 0 {
		return nil
	}

	a.logger.Infof("deactivating %d activations", len(ids))
	begin := time.Now()
	done := future.New(func() (types.Unit, error) {
		errs := make([]error, len(ids))
		var group errgroup.Group
		for index, id := range ids {
			group.Go(func() error {
				if err := a.Deactivate(ctx, id); err != nil {
					errs[index] = fmt.Errorf("activation %s: %w", id, err)
				}
				return nil
			})
		}
		_ = group.Wait()
		return types.Unit{}, multierr.Combine(errs...)
	})

	if _, err := future.AwaitCancellation(ctx, done, "deactivation of all activations"); err != nil {
		return err
	}

	a.logger.Infof("%d activations deactivated in %s", len(ids), time.Since(begin))
	return nil
}

func invokeDeactivator(ctx context.Context, deactivate Deactivator) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = gerrors.Recovered(r)
		}
	}()
	return deactivate(ctx)
}
