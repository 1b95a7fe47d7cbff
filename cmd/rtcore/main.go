// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-kit/kit/metrics/provider"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xmidt-org/rtcore/logging"
	"github.com/xmidt-org/rtcore/peripheral/sim"
	"github.com/xmidt-org/rtcore/taskset"
	"github.com/xmidt-org/rtcore/xmetrics"
	"github.com/xmidt-org/rtcore/xviper"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const (
	applicationName = "rtcore"

	// MetricsKey is the Viper key under which the xmetrics.Options are stored
	MetricsKey = "metrics"
)

func newFlagSet() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(applicationName, pflag.ContinueOnError)
	flagSet.StringP(xviper.DefaultFileFlag, "f", "", "the fully qualified path to the configuration file")
	flagSet.StringP(xviper.DefaultNameFlag, "n", "", "the name of the configuration file searched for in the standard locations")
	return flagSet
}

func newViper(arguments []string) (*viper.Viper, error) {
	flagSet := newFlagSet()
	if err := flagSet.Parse(arguments); err != nil {
		return nil, err
	}

	v, err := xviper.New(xviper.StdOptions(applicationName, flagSet))
	if err != nil {
		return nil, err
	}

	if _, err := xviper.ReadInConfig(v); err != nil {
		return nil, err
	}

	return v, nil
}

func newRegistry(v *viper.Viper) (xmetrics.Registry, provider.Provider, error) {
	var o xmetrics.Options
	if v.IsSet(MetricsKey) {
		if err := xviper.UnmarshalKey(v, MetricsKey, &o); err != nil {
			return nil, nil, err
		}
	}

	r, err := xmetrics.NewRegistry(&o, taskset.Metrics)
	return r, r, err
}

func newBoard(o taskset.Options, logger *zap.Logger) (*sim.Board, error) {
	return taskset.NewBoard(o.Board, logger.Named("board"), nil)
}

func newPeripherals(b *sim.Board) taskset.Peripherals {
	return taskset.SimulatedPeripherals(b, os.Stdin, os.Stdout)
}

// logSnapshot writes the final value of every task set counter and gauge
func logSnapshot(logger *zap.Logger, r xmetrics.Registry) {
	samples, err := xmetrics.Snapshot(r, xmetrics.DefaultNamespace)
	if err != nil {
		logger.Error("unable to gather metrics", zap.Error(err))
		return
	}

	fields := make([]zap.Field, 0, len(samples))
	for _, s := range samples {
		fields = append(fields, zap.Float64(s.Name, s.Value))
	}

	logger.Info("final metrics", fields...)
}

func rtcore(arguments []string) int {
	v, err := newViper(arguments)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to configure: %s\n", err)
		return 1
	}

	logOptions, err := logging.FromViper(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to read logging options: %s\n", err)
		return 1
	}

	var (
		logger   = logging.New(logOptions)
		registry xmetrics.Registry
	)

	defer logger.Sync()

	app := fx.New(
		fx.Supply(v, logger),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l}
		}),
		fx.Provide(
			newRegistry,
			newBoard,
			newPeripherals,
		),
		taskset.Module(),
		fx.Populate(&registry),
	)

	if err := app.Err(); err != nil {
		logger.Error("unable to assemble application", zap.Error(err))
		return 1
	}

	startCtx, cancel := context.WithTimeout(context.Background(), app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		logger.Error("unable to start", zap.Error(err))
		return 1
	}

	signal := <-app.Done()
	logger.Info("stopping", zap.Stringer("signal", signal))

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	err = app.Stop(stopCtx)
	logSnapshot(logger, registry)

	if err != nil {
		logger.Error("unclean shutdown", zap.Error(err))
		return 2
	}

	return 0
}

func main() {
	os.Exit(rtcore(os.Args[1:]))
}
