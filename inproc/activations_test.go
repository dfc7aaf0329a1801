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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/nodehost/errors"
	"github.com/tochemey/nodehost/log"
)

func TestActivations(t *testing.T) {
	t.Run("With every activation released", func(t *testing.T) {
		activations := NewActivations(log.DiscardLogger)
		released := atomic.NewInt32(0)
		for _, id := range []string{"a", "b", "c"} {
			require.True(t, activations.Activate(id, func(context.Context) error {
				released.Inc()
				return nil
			}))
		}
		require.False(t, activations.Activate("a", nil))
		assert.Equal(t, 3, activations.Len())

		require.NoError(t, activations.DeactivateAllActivations(context.Background()))
		assert.EqualValues(t, 3, released.Load())
		assert.Zero(t, activations.Len())

		// nothing left to release
		require.NoError(t, activations.DeactivateAllActivations(context.Background()))
	})
	t.Run("With failures aggregated", func(t *testing.T) {
		activations := NewActivations(log.DiscardLogger)
		cause := errors.New("cannot persist state")
		activations.Activate("ok", func(context.Context) error { return nil })
		activations.Activate("failing", func(context.Context) error { return cause })
		activations.Activate("panicking", func(context.Context) error { panic("boom") })

		err := activations.DeactivateAllActivations(context.Background())
		require.ErrorIs(t, err, cause)
		var panicErr *gerrors.PanicError
		require.ErrorAs(t, err, &panicErr)
		assert.Zero(t, activations.Len())
	})
	t.Run("With slow activations abandoned when the context is done", func(t *testing.T) {
		activations := NewActivations(log.DiscardLogger)
		release := make(chan struct{})
		defer close(release)
		activations.Activate("slow", func(context.Context) error {
			<-release
			return nil
		})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		err := activations.DeactivateAllActivations(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
	t.Run("With a single activation released", func(t *testing.T) {
		activations := NewActivations(log.DiscardLogger)
		activations.Activate("a", func(context.Context) error { return nil })
		require.NoError(t, activations.Deactivate(context.Background(), "a"))
		require.NoError(t, activations.Deactivate(context.Background(), "a"))
		assert.Zero(t, activations.Len())
	})
}
