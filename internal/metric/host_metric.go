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

package metric

import "go.opentelemetry.io/otel/metric"

// HostMetric groups the OpenTelemetry instruments describing a host lifecycle.
//
// Instruments:
//   - host.stage.duration (Float64Histogram, unit: ms)
//   - host.uptime         (Int64ObservableCounter, unit: s)
//   - host.state          (Int64ObservableGauge)
type HostMetric struct {
	stageDuration metric.Float64Histogram
	uptime        metric.Int64ObservableCounter
	state         metric.Int64ObservableGauge
}

// NewHostMetric creates the host instruments using the provided Meter.
// It returns an error if any instrument cannot be created.
func NewHostMetric(meter metric.Meter) (*HostMetric, error) {
	var instruments HostMetric
	var err error

	if instruments.stageDuration, err = meter.Float64Histogram(
		"host.stage.duration",
		metric.WithDescription("Time spent running the participants of a lifecycle stage"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	if instruments.uptime, err = meter.Int64ObservableCounter(
		"host.uptime",
		metric.WithDescription("Uptime of the host in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if instruments.state, err = meter.Int64ObservableGauge(
		"host.state",
		metric.WithDescription("Current lifecycle state of the host"),
	); err != nil {
		return nil, err
	}

	return &instruments, nil
}

// StageDuration returns the histogram recording stage durations
func (x *HostMetric) StageDuration() metric.Float64Histogram {
	return x.stageDuration
}

// Uptime returns the observable counter reporting the host uptime.
// Use with Meter.RegisterCallback.
func (x *HostMetric) Uptime() metric.Int64ObservableCounter {
	return x.uptime
}

// State returns the observable gauge reporting the host state ordinal.
// Use with Meter.RegisterCallback.
func (x *HostMetric) State() metric.Int64ObservableGauge {
	return x.state
}
