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

package statistics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/tochemey/nodehost/lifecycle"
	"github.com/tochemey/nodehost/log"
)

func TestManager(t *testing.T) {
	t.Run("With observable instruments", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

		manager, err := NewManager("node-1", WithMeterProvider(provider), WithLogger(log.DiscardLogger))
		require.NoError(t, err)
		manager.TrackState(func() int64 { return 3 })

		require.NoError(t, manager.Start())
		require.NoError(t, manager.Start())

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))

		state, ok := findMetric(rm, "host.state")
		require.True(t, ok)
		gauge, ok := state.Data.(metricdata.Gauge[int64])
		require.True(t, ok)
		require.Len(t, gauge.DataPoints, 1)
		assert.EqualValues(t, 3, gauge.DataPoints[0].Value)

		_, ok = findMetric(rm, "host.uptime")
		assert.True(t, ok)

		manager.Stop()
		manager.Stop()

		rm = metricdata.ResourceMetrics{}
		require.NoError(t, reader.Collect(context.Background(), &rm))
		_, ok = findMetric(rm, "host.state")
		assert.False(t, ok)
	})
	t.Run("With stage durations", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

		manager, err := NewManager("node-1", WithMeterProvider(provider), WithLogger(log.DiscardLogger))
		require.NoError(t, err)

		manager.ObserveStage(lifecycle.StageActive, lifecycle.PhaseStart, 15*time.Millisecond, nil)
		manager.ObserveStage(lifecycle.StageActive, lifecycle.PhaseStop, 5*time.Millisecond, errors.New("failed"))

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))

		durations, ok := findMetric(rm, "host.stage.duration")
		require.True(t, ok)
		histogram, ok := durations.Data.(metricdata.Histogram[float64])
		require.True(t, ok)
		assert.Len(t, histogram.DataPoints, 2)
		assert.Equal(t, "ms", durations.Unit)
	})
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}
