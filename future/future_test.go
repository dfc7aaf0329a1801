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

package future

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	gerrors "github.com/tochemey/nodehost/errors"
	"github.com/tochemey/nodehost/internal/pause"
)

func TestFuture(t *testing.T) {
	t.Run("With success", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		f := New(func() (int, error) {
			pause.For(10 * time.Millisecond)
			return 42, nil
		})

		value, err := f.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 42, value)
		assert.True(t, f.IsCompleted())
	})
	t.Run("With failure", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		cause := errors.New("failed")
		f := New(func() (string, error) {
			return "", cause
		})

		_, err := f.Await(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, cause)
	})
	t.Run("With panic", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		f := New(func() (string, error) {
			panic("boom")
		})

		_, err := f.Await(context.Background())
		require.Error(t, err)
		var panicErr *gerrors.PanicError
		assert.ErrorAs(t, err, &panicErr)
	})
	t.Run("With context cancellation", func(t *testing.T) {
		promise := NewPromise[int]()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := promise.Future().Await(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, promise.Future().IsCompleted())
	})
	t.Run("With completed future and cancelled context", func(t *testing.T) {
		f := Completed(7, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		for range 100 {
			value, err := f.Await(ctx)
			require.NoError(t, err)
			require.Equal(t, 7, value)
		}
	})
	t.Run("With first completion winning", func(t *testing.T) {
		promise := NewPromise[string]()
		assert.True(t, promise.Success("first"))
		assert.False(t, promise.Success("second"))
		assert.False(t, promise.Failure(errors.New("late")))

		value, err := promise.Future().Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "first", value)
	})
	t.Run("With concurrent awaiters", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		promise := NewPromise[int]()

		var wg sync.WaitGroup
		results := make(chan int, 10)
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				value, err := promise.Future().Await(context.Background())
				if err == nil {
					results <- value
				}
			}()
		}

		pause.For(10 * time.Millisecond)
		promise.Success(3)
		wg.Wait()
		close(results)

		count := 0
		for value := range results {
			assert.Equal(t, 3, value)
			count++
		}
		assert.Equal(t, 10, count)
	})
}

func TestAwaitTimeout(t *testing.T) {
	t.Run("With completion before timeout", func(t *testing.T) {
		f := New(func() (int, error) { return 1, nil })
		value, err := AwaitTimeout(context.Background(), f, time.Second, "compute")
		require.NoError(t, err)
		assert.Equal(t, 1, value)
	})
	t.Run("With timeout", func(t *testing.T) {
		promise := NewPromise[int]()
		_, err := AwaitTimeout(context.Background(), promise.Future(), 20*time.Millisecond, "starting service cache")
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrTimeout)
		assert.EqualError(t, err, "starting service cache failed due to timeout 20ms")

		// the underlying work is abandoned, not cancelled
		assert.True(t, promise.Success(5))
	})
	t.Run("With context cancellation", func(t *testing.T) {
		promise := NewPromise[int]()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := AwaitTimeout(ctx, promise.Future(), time.Second, "compute")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestAwaitCancellation(t *testing.T) {
	t.Run("With completion", func(t *testing.T) {
		f := New(func() (int, error) { return 1, nil })
		value, err := AwaitCancellation(context.Background(), f, "drain")
		require.NoError(t, err)
		assert.Equal(t, 1, value)
	})
	t.Run("With cancellation", func(t *testing.T) {
		promise := NewPromise[int]()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := AwaitCancellation(ctx, promise.Future(), "drain")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Contains(t, err.Error(), "drain failed because the task was cancelled")
	})
}
