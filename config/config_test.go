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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	gerrors "github.com/tochemey/nodehost/errors"
	"github.com/tochemey/nodehost/host"
	"github.com/tochemey/nodehost/inproc"
	"github.com/tochemey/nodehost/log"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "host.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("With a complete file", func(t *testing.T) {
		path := writeConfig(t, `
name: node-1
address: 127.0.0.1:30000
log_level: debug
init_timeout: 10s
stop_timeout: 20s
outbound_flush_window: 2s
stop_poll_interval: 250ms
reverse_service_stop_order: true
messaging:
  drain_interval: 5ms
workers:
  shards: 4
  passivate_after: 2s
watchdog:
  enabled: false
reminders:
  enabled: false
statistics:
  enabled: false
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "node-1", cfg.Name)
		assert.Equal(t, "127.0.0.1:30000", cfg.Address)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, 10*time.Second, cfg.InitTimeout)
		assert.Equal(t, 20*time.Second, cfg.StopTimeout)
		assert.Equal(t, 2*time.Second, cfg.OutboundFlushWindow)
		assert.Equal(t, 250*time.Millisecond, cfg.StopPollInterval)
		assert.True(t, cfg.ReverseServiceStopOrder)
		assert.Equal(t, 5*time.Millisecond, cfg.Messaging.DrainInterval)
		assert.Equal(t, 4, cfg.Workers.Shards)
		assert.Equal(t, 2*time.Second, cfg.Workers.PassivateAfter)
		assert.False(t, cfg.Watchdog.Enabled)
		assert.False(t, cfg.Reminders.Enabled)
		assert.False(t, cfg.Statistics.Enabled)
	})
	t.Run("With defaults for omitted keys", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "name: node-1\n"))
		require.NoError(t, err)
		assert.Equal(t, host.DefaultAddress, cfg.Address)
		assert.Equal(t, host.DefaultInitTimeout, cfg.InitTimeout)
		assert.Equal(t, host.DefaultStopTimeout, cfg.StopTimeout)
		assert.Equal(t, host.DefaultOutboundFlushWindow, cfg.OutboundFlushWindow)
		assert.Equal(t, host.DefaultStopPollInterval, cfg.StopPollInterval)
		assert.Equal(t, inproc.DefaultDrainInterval, cfg.Messaging.DrainInterval)
		assert.True(t, cfg.Watchdog.Enabled)
		assert.Equal(t, host.DefaultWatchdogInterval, cfg.Watchdog.Interval)
		assert.True(t, cfg.Reminders.Enabled)
		assert.True(t, cfg.Statistics.Enabled)
		assert.False(t, cfg.ReverseServiceStopOrder)
	})
	t.Run("With a missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})
	t.Run("With malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "name: [node"))
		require.Error(t, err)
	})
	t.Run("With an invalid file", func(t *testing.T) {
		_, err := Load(writeConfig(t, "address: 127.0.0.1:30000\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "the [name] is required")
	})
	t.Run("With a blank name", func(t *testing.T) {
		_, err := Load(writeConfig(t, "name: \"  \"\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "the [name] is required")
	})
}

func TestValidate(t *testing.T) {
	t.Run("With a valid configuration", func(t *testing.T) {
		cfg := Default()
		cfg.Name = "node-1"
		require.NoError(t, cfg.Validate())
	})
	t.Run("With every violation reported", func(t *testing.T) {
		cfg := Default()
		cfg.Address = "invalid"
		cfg.LogLevel = "verbose"
		cfg.InitTimeout = 0
		cfg.StopTimeout = -time.Second
		cfg.Workers.Shards = -1

		err := cfg.Validate()
		require.Error(t, err)
		assert.Len(t, multierr.Errors(err), 6)
		assert.ErrorIs(t, err, gerrors.ErrInvalidTimeout)
	})
	t.Run("With a disabled watchdog", func(t *testing.T) {
		cfg := Default()
		cfg.Name = "node-1"
		cfg.Watchdog = Watchdog{Enabled: false}
		require.NoError(t, cfg.Validate())

		cfg.Watchdog.Enabled = true
		require.ErrorIs(t, cfg.Validate(), gerrors.ErrInvalidTimeout)
	})
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.Name = "node-1"
	cfg.Address = "127.0.0.1:30000"
	cfg.LogLevel = "unknown"

	logger := cfg.Logger(os.Stdout)
	assert.Equal(t, log.InfoLevel, logger.LogLevel())

	h, err := host.New(cfg.Name, cfg.Options(log.DiscardLogger)...)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:30000", h.Address())
	assert.Equal(t, host.Created, h.State())
}
