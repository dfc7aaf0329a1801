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

package errors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	stateErr := NewInvalidStateError("StopAsync", "Starting", "Running")
	require.EqualError(t, stateErr, "StopAsync: host must be in the Running state, it is in the Starting state")
	assert.ErrorIs(t, stateErr, ErrInvalidHostState)

	timeoutErr := NewTimeoutError("starting service cache", time.Second)
	require.EqualError(t, timeoutErr, "starting service cache failed due to timeout 1s")
	assert.ErrorIs(t, timeoutErr, ErrTimeout)

	cause := errors.New("something went wrong")
	stageErr := NewStageError("Active", cause)
	require.EqualError(t, stageErr, "lifecycle start failed in stage Active: something went wrong")
	assert.ErrorIs(t, stageErr, ErrStageStartFailed)
	assert.ErrorIs(t, stageErr, cause)

	panicErr := NewPanicError(cause)
	require.EqualError(t, panicErr, "panic: something went wrong")
	assert.ErrorIs(t, panicErr.Unwrap(), cause)

	hookErr := NewErrShutdownHookFailed(cause)
	assert.ErrorIs(t, hookErr, ErrShutdownHookFailed)
	assert.ErrorIs(t, hookErr, cause)
}

func TestRecovered(t *testing.T) {
	t.Run("With error value", func(t *testing.T) {
		cause := errors.New("boom")
		err := Recovered(cause)
		assert.ErrorIs(t, err, cause)
	})
	t.Run("With panic error value", func(t *testing.T) {
		original := NewPanicError(errors.New("boom"))
		assert.Same(t, original, Recovered(original))
	})
	t.Run("With any value", func(t *testing.T) {
		err := Recovered("boom")
		assert.EqualError(t, err, `panic: "boom"`)
	})
}
