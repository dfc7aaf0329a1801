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

// Package config loads the host configuration from a YAML file.
package config

import (
	"fmt"
	"io"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	gerrors "github.com/tochemey/nodehost/errors"
	"github.com/tochemey/nodehost/host"
	"github.com/tochemey/nodehost/inproc"
	"github.com/tochemey/nodehost/internal/validation"
	"github.com/tochemey/nodehost/log"
)

// Config represents the host configuration
type Config struct {
	// Specifies the host name
	Name string `yaml:"name"`
	// Specifies the host and port the host is reachable at
	// example: 127.0.0.1:11111
	Address string `yaml:"address"`
	// Specifies the log level: debug, info, warn or error
	LogLevel string `yaml:"log_level"`
	// Specifies how long each service init, start and stop may take
	InitTimeout time.Duration `yaml:"init_timeout"`
	// Specifies the deadline of a graceful shutdown
	StopTimeout time.Duration `yaml:"stop_timeout"`
	// Specifies how long a graceful stop waits for in flight messages
	OutboundFlushWindow time.Duration `yaml:"outbound_flush_window"`
	// Specifies how often concurrent stop callers check for termination
	StopPollInterval time.Duration `yaml:"stop_poll_interval"`
	// Stops the services in reverse registration order when set
	ReverseServiceStopOrder bool `yaml:"reverse_service_stop_order"`

	Messaging  Messaging  `yaml:"messaging"`
	Workers    Workers    `yaml:"workers"`
	Watchdog   Watchdog   `yaml:"watchdog"`
	Reminders  Reminders  `yaml:"reminders"`
	Statistics Statistics `yaml:"statistics"`
}

// Messaging configures the in-process message center
type Messaging struct {
	DrainInterval time.Duration `yaml:"drain_interval"`
}

// Workers configures the worker pool running the host components
type Workers struct {
	Shards         int           `yaml:"shards"`
	PassivateAfter time.Duration `yaml:"passivate_after"`
}

// Watchdog configures the platform watchdog
type Watchdog struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// Reminders configures the local reminder service
type Reminders struct {
	Enabled bool `yaml:"enabled"`
}

// Statistics configures the metrics collector
type Statistics struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used for every key a file omits
func Default() *Config {
	return &Config{
		Address:             host.DefaultAddress,
		LogLevel:            "info",
		InitTimeout:         host.DefaultInitTimeout,
		StopTimeout:         host.DefaultStopTimeout,
		OutboundFlushWindow: host.DefaultOutboundFlushWindow,
		StopPollInterval:    host.DefaultStopPollInterval,
		Messaging:           Messaging{DrainInterval: inproc.DefaultDrainInterval},
		Workers:             Workers{PassivateAfter: time.Second},
		Watchdog:            Watchdog{Enabled: true, Interval: host.DefaultWatchdogInterval},
		Reminders:           Reminders{Enabled: true},
		Statistics:          Statistics{Enabled: true},
	}
}

// Load reads the YAML file at path on top of the defaults and validates the outcome
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid field
func (c *Config) Validate() error {
	chain := validation.New(validation.AllErrors()).
		AddValidator(validation.NewEmptyStringValidator("name", c.Name)).
		AddValidator(validation.NewTCPAddressValidator(c.Address)).
		AddAssertion(log.ParseLevel(c.LogLevel) != log.InvalidLevel, fmt.Sprintf("invalid log_level=(%s)", c.LogLevel)).
		AddValidator(validation.NewPositiveDurationValidator("init_timeout", c.InitTimeout, gerrors.ErrInvalidTimeout)).
		AddValidator(validation.NewPositiveDurationValidator("stop_timeout", c.StopTimeout, gerrors.ErrInvalidTimeout)).
		AddValidator(validation.NewPositiveDurationValidator("outbound_flush_window", c.OutboundFlushWindow, gerrors.ErrInvalidTimeout)).
		AddValidator(validation.NewPositiveDurationValidator("stop_poll_interval", c.StopPollInterval, gerrors.ErrInvalidTimeout)).
		AddValidator(validation.NewPositiveDurationValidator("messaging.drain_interval", c.Messaging.DrainInterval, gerrors.ErrInvalidTimeout)).
		AddAssertion(c.Workers.Shards >= 0, fmt.Sprintf("invalid workers.shards=(%d)", c.Workers.Shards))

	if c.Watchdog.Enabled {
		chain.AddValidator(validation.NewPositiveDurationValidator("watchdog.interval", c.Watchdog.Interval, gerrors.ErrInvalidTimeout))
	}
	return chain.Validate()
}

// Logger creates the zap logger writing at the configured level
func (c *Config) Logger(writers ...io.Writer) log.Logger {
	level := log.ParseLevel(c.LogLevel)
	if level == log.InvalidLevel {
		level = log.InfoLevel
	}
	return log.NewZap(level, writers...)
}

// Options converts the configuration into host options
func (c *Config) Options(logger log.Logger) []host.Option {
	return []host.Option{
		host.WithLogger(logger),
		host.WithAddress(c.Address),
		host.WithInitTimeout(c.InitTimeout),
		host.WithStopTimeout(c.StopTimeout),
		host.WithOutboundFlushWindow(c.OutboundFlushWindow),
		host.WithStopPollInterval(c.StopPollInterval),
		host.WithReverseServiceStopOrder(c.ReverseServiceStopOrder),
	}
}
