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

package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tochemey/nodehost/config"
	"github.com/tochemey/nodehost/host"
	"github.com/tochemey/nodehost/inproc"
	"github.com/tochemey/nodehost/internal/oslib"
	"github.com/tochemey/nodehost/internal/types"
	"github.com/tochemey/nodehost/internal/workerpool"
	"github.com/tochemey/nodehost/log"
	"github.com/tochemey/nodehost/membership"
	"github.com/tochemey/nodehost/reminder"
	"github.com/tochemey/nodehost/statistics"
	"github.com/tochemey/nodehost/watchdog"
)

func newRunCommand() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the host and run it until SIGINT or SIGTERM",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cfg.Logger(os.Stdout))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hostd.yaml", "path to the host configuration file")
	return cmd
}

func newValidateCommand() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a host configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "configuration of host %s at %s is valid\n", cfg.Name, cfg.Address)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hostd.yaml", "path to the host configuration file")
	return cmd
}

// run starts the host and blocks until it terminated
func run(ctx context.Context, cfg *config.Config, logger log.Logger) error {
	h, err := newHost(cfg, logger)
	if err != nil {
		return err
	}

	if err := h.StartAsync(ctx); err != nil {
		if abortErr := h.Abort(context.Background()); abortErr != nil {
			logger.Warnf("failed to abort host %s: %v", h.Name(), abortErr)
		}
		return err
	}

	oslib.RegisterShutdownHook(h.Shutdown)
	cancel := make(chan types.Unit)
	interrupted := oslib.HandleInterrupts(logger, cancel)

	_, err = h.Terminated().Await(context.Background())
	close(cancel)
	<-interrupted
	return err
}

// newHost composes a host and its in-process collaborators from cfg
func newHost(cfg *config.Config, logger log.Logger) (*host.Host, error) {
	poolOpts := []workerpool.Option{workerpool.WithPassivateAfter(cfg.Workers.PassivateAfter)}
	if cfg.Workers.Shards > 0 {
		poolOpts = append(poolOpts, workerpool.WithNumShards(cfg.Workers.Shards))
	}
	pool := workerpool.New(poolOpts...)

	gateway := inproc.NewGateway(logger, nil)
	messageCenter := inproc.NewMessageCenter(logger,
		inproc.WithGateway(gateway),
		inproc.WithDrainInterval(cfg.Messaging.DrainInterval))

	activations := inproc.NewActivations(logger)
	publish := func(_ context.Context, load inproc.Load) error {
		logger.Debugf("host %s load: %d activations, %d peers", load.Address, load.Activations, load.Peers)
		return nil
	}

	opts := append(cfg.Options(logger),
		host.WithWorkerPool(pool),
		host.WithStatusOracle(membership.NewLocalOracle(logger)),
		host.WithMessageCenter(messageCenter),
		host.WithDirectory(inproc.NewDirectory(pool, logger)),
		host.WithCatalog(activations),
		host.WithLoadPublisher(inproc.NewLoadPublisher(cfg.Address, activations, publish, pool, logger)),
	)

	if cfg.Reminders.Enabled {
		opts = append(opts, host.WithReminderService(reminder.NewLocalService(pool, logger)))
	}

	if cfg.Statistics.Enabled {
		manager, err := statistics.NewManager(cfg.Name, statistics.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create the statistics collector: %w", err)
		}
		opts = append(opts, host.WithStatistics(manager))
	}

	if cfg.Watchdog.Enabled {
		opts = append(opts, host.WithWatchdog(watchdog.New(cfg.Watchdog.Interval, logger, messageCenter)))
	}

	return host.New(cfg.Name, opts...)
}
